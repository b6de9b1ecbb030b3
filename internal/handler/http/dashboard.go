package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divyansh1004/Manthan/internal/domain"
	"github.com/divyansh1004/Manthan/internal/service"
)

// DashboardHandler renders the server-side dashboard: the caller's
// classrooms as a card grid, or an empty-state panel.
type DashboardHandler struct {
	classroomService *service.ClassroomService
}

func NewDashboardHandler(classroomService *service.ClassroomService) *DashboardHandler {
	if classroomService == nil {
		panic("ClassroomService cannot be nil for DashboardHandler")
	}
	return &DashboardHandler{classroomService: classroomService}
}

// DashboardView is the view model handed to the template. It is assembled
// once per request and the template only reads from it.
type DashboardView struct {
	Classrooms []domain.Classroom
	Theme      string
}

// Render handles GET /dashboard.
func (h *DashboardHandler) Render(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		return
	}

	classrooms, err := h.classroomService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	theme, err := c.Cookie("theme")
	if err != nil || (theme != "dark" && theme != "light") {
		theme = "light"
	}

	c.HTML(http.StatusOK, "dashboard.html", DashboardView{
		Classrooms: classrooms,
		Theme:      theme,
	})
}
