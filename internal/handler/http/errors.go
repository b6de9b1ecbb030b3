package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/divyansh1004/Manthan/internal/service"
)

// HandleServiceError maps business errors onto the API's response surface.
// Not-found, conflict and not-authorized all share 400; the body message is
// what distinguishes them. Anything unmapped is logged and surfaced as an
// opaque 500.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassroomNotFound),
		errors.Is(err, service.ErrAlreadyJoined),
		errors.Is(err, service.ErrNotAuthorized),
		errors.Is(err, service.ErrRegistrationFailed):
		MsgResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		MsgResponse(c, http.StatusUnauthorized, err.Error())
	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		MsgResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// HandleBindError turns gin binding failures into the structured per-field
// error list, so malformed bodies never reach the service layer.
func HandleBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fieldErrors := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			msg := fe.Field() + " is invalid"
			if fe.Tag() == "required" {
				msg = fe.Field() + " is required"
			}
			fieldErrors = append(fieldErrors, gin.H{"field": fe.Field(), "msg": msg})
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}
	MsgResponse(c, http.StatusBadRequest, "Invalid request body")
}

// CallerID extracts the authenticated user ID the auth middleware stored in
// the gin context. The second return is false when the middleware did not
// run or stored an unexpected type.
func CallerID(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get("user_id")
	if !exists {
		logrus.Warn("Handler: user ID not found in context, middleware missing or failed?")
		MsgResponse(c, http.StatusUnauthorized, "User not authenticated")
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	if !ok {
		logrus.Error("Handler: user ID in context is not uint")
		MsgResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
		return 0, false
	}
	return userID, true
}
