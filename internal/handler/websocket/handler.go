package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	httphandler "github.com/divyansh1004/Manthan/internal/handler/http"
	"github.com/divyansh1004/Manthan/internal/hub"
	"github.com/divyansh1004/Manthan/internal/service"
)

// WebSocketHandler upgrades members onto a classroom's event stream.
type WebSocketHandler struct {
	upgrader         websocket.Upgrader
	hub              *hub.Hub
	classroomService *service.ClassroomService
}

func NewWebSocketHandler(eventHub *hub.Hub, classroomService *service.ClassroomService) *WebSocketHandler {
	if eventHub == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	if classroomService == nil {
		panic("ClassroomService cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// TODO: restrict origins once the frontend host is fixed.
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return &WebSocketHandler{
		upgrader:         upgrader,
		hub:              eventHub,
		classroomService: classroomService,
	}
}

// HandleConnection handles GET /ws/classroom/:code. Only members may
// subscribe; the membership gate reuses the same does-not-exist answer as
// the REST lookup.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	userID, ok := httphandler.CallerID(c)
	if !ok {
		return
	}
	code := c.Param("code")
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "code": code})

	if _, err := h.classroomService.GetByCode(c.Request.Context(), userID, code); err != nil {
		logCtx.WithError(err).Warn("WS Handler: classroom lookup failed")
		httphandler.HandleServiceError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade writes its own HTTP error response.
		logCtx.WithError(err).Error("WS Handler: failed to upgrade connection")
		return
	}
	logCtx.Info("WS Handler: connection upgraded")

	client := hub.NewClient(h.hub, conn, code, userID)
	registerMsg := hub.HubMessage{Type: "register", Code: code, Client: client}
	if !h.hub.QueueMessage(registerMsg) {
		logCtx.Error("WS Handler: hub message channel full, failed to register client")
		client.CloseConn()
		return
	}

	client.Run()
}
