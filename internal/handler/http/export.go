package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/divyansh1004/Manthan/internal/service"
	"github.com/xuri/excelize/v2"
)

// ExportRoster handles GET /api/classroom/:code/export. The author gets the
// membership list as an .xlsx download.
func (h *ClassroomHandler) ExportRoster(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		return
	}
	code := c.Param("code")

	classroom, err := h.classroomService.GetByCode(c.Request.Context(), userID, code)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if !classroom.IsAuthor(userID) {
		HandleServiceError(c, service.ErrNotAuthorized)
		return
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Warn("Handler.ExportRoster: failed to close workbook")
		}
	}()

	const sheet = "Roster"
	index, err := f.NewSheet(sheet)
	if err != nil {
		logrus.WithError(err).Error("Handler.ExportRoster: failed to create sheet")
		MsgResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []interface{}{"ID", "Username", "Email", "Role"}
	_ = f.SetSheetRow(sheet, "A1", &headers)
	for i, member := range classroom.JoinedUsers {
		role := "member"
		if classroom.IsAuthor(member.ID) {
			role = "author"
		}
		row := []interface{}{member.ID, member.Username, member.Email, role}
		cell := fmt.Sprintf("A%d", i+2)
		_ = f.SetSheetRow(sheet, cell, &row)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="roster-%s.xlsx"`, classroom.Code))
	if err := f.Write(c.Writer); err != nil {
		// Headers are already out; all we can do is log.
		logrus.WithError(err).WithField("code", code).Error("Handler.ExportRoster: failed to stream workbook")
	}
}
