package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/divyansh1004/Manthan/internal/domain"
	"github.com/divyansh1004/Manthan/internal/hub"
	"github.com/divyansh1004/Manthan/internal/service"
)

// ClassroomHandler exposes the classroom lifecycle and membership routes.
// Mutations push an event through the hub so connected dashboards refresh.
type ClassroomHandler struct {
	classroomService *service.ClassroomService
	hub              *hub.Hub
}

func NewClassroomHandler(classroomService *service.ClassroomService, eventHub *hub.Hub) *ClassroomHandler {
	if classroomService == nil {
		panic("ClassroomService cannot be nil for ClassroomHandler")
	}
	if eventHub == nil {
		panic("Hub cannot be nil for ClassroomHandler")
	}
	return &ClassroomHandler{classroomService: classroomService, hub: eventHub}
}

// List handles GET /api/classroom/.
func (h *ClassroomHandler) List(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		return
	}

	classrooms, err := h.classroomService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if classrooms == nil {
		// Empty list instead of null for JSON consistency.
		c.JSON(http.StatusOK, []domain.Classroom{})
		return
	}
	c.JSON(http.StatusOK, classrooms)
}

type CreateClassroomRequest struct {
	Title   string `json:"title" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	SubCode string `json:"subCode" binding:"required"`
	Cover   string `json:"cover"`
}

// Create handles POST /api/classroom/.
func (h *ClassroomHandler) Create(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		return
	}

	var req CreateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Create: invalid input format")
		HandleBindError(c, err)
		return
	}

	classroom, err := h.classroomService.Create(c.Request.Context(), userID, req.Title, req.Subject, req.SubCode, req.Cover)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classroom)
}

// Get handles GET /api/classroom/:code. Non-members are told the classroom
// does not exist.
func (h *ClassroomHandler) Get(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		return
	}

	classroom, err := h.classroomService.GetByCode(c.Request.Context(), userID, c.Param("code"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classroom)
}

// Join handles POST /api/classroom/:code.
func (h *ClassroomHandler) Join(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		return
	}
	code := c.Param("code")

	classroom, err := h.classroomService.Join(c.Request.Context(), userID, code)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	h.hub.Broadcast(hub.Event{Type: hub.EventMemberJoined, Code: code, Payload: gin.H{"user_id": userID}})
	c.JSON(http.StatusOK, classroom)
}

type UpdateClassroomRequest struct {
	Title   string `json:"title" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	SubCode string `json:"subcode" binding:"required"`
}

// Update handles PATCH /api/classroom/:code. Author-only.
func (h *ClassroomHandler) Update(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		return
	}
	code := c.Param("code")

	var req UpdateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Update: invalid input format")
		HandleBindError(c, err)
		return
	}

	classroom, err := h.classroomService.Update(c.Request.Context(), userID, code, req.Title, req.Subject, req.SubCode)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	h.hub.Broadcast(hub.Event{Type: hub.EventClassroomUpdated, Code: code})
	c.JSON(http.StatusOK, classroom)
}

// DeleteOrLeave handles DELETE /api/classroom/:code. The author deletes the
// classroom outright; any other member leaves it.
func (h *ClassroomHandler) DeleteOrLeave(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		return
	}
	code := c.Param("code")

	deleted, err := h.classroomService.DeleteOrLeave(c.Request.Context(), userID, code)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	if deleted {
		h.hub.Broadcast(hub.Event{Type: hub.EventClassroomDeleted, Code: code})
		MsgResponse(c, http.StatusOK, "Classroom deleted")
		return
	}
	h.hub.Broadcast(hub.Event{Type: hub.EventMemberLeft, Code: code, Payload: gin.H{"user_id": userID}})
	MsgResponse(c, http.StatusOK, "Left classroom")
}

// RemoveMember handles DELETE /api/classroom/:code/:user. Author-only.
func (h *ClassroomHandler) RemoveMember(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		return
	}
	code := c.Param("code")

	targetID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		MsgResponse(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	targetID := uint(targetID64)

	if err := h.classroomService.RemoveMember(c.Request.Context(), userID, code, targetID); err != nil {
		HandleServiceError(c, err)
		return
	}

	h.hub.Broadcast(hub.Event{Type: hub.EventMemberRemoved, Code: code, Payload: gin.H{"user_id": targetID}})
	MsgResponse(c, http.StatusOK, "Member removed")
}

// Members handles GET /api/classroom/:code/users.
func (h *ClassroomHandler) Members(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		return
	}

	members, err := h.classroomService.Members(c.Request.Context(), userID, c.Param("code"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}
