package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/natannielz/Ticket-Bus-sub000/internal/http/middleware"
	"github.com/natannielz/Ticket-Bus-sub000/internal/services"
)

type chatPayload struct {
	SessionKey string `json:"sessionKey" binding:"required"`
	SenderRole string `json:"senderRole" binding:"required"`
	SenderName string `json:"senderName"`
	Body       string `json:"body" binding:"required"`
}

// POST /api/chat/messages
func SendChatMessage(c *gin.Context) {
	var payload chatPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	svc := services.ChatService{RequestID: middleware.GetRequestID(c)}
	m, err := svc.Send(payload.SessionKey, strings.ToLower(payload.SenderRole), payload.SenderName, payload.Body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// GET /api/chat/messages?session=&since_id=
func GetChatMessages(c *gin.Context) {
	session := strings.TrimSpace(c.Query("session"))
	sinceID, _ := strconv.ParseInt(strings.TrimSpace(c.Query("since_id")), 10, 64)

	svc := services.ChatService{RequestID: middleware.GetRequestID(c)}
	list, err := svc.ListBySession(session, sinceID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/chat/sessions (admin)
func GetChatSessions(c *gin.Context) {
	svc := services.ChatService{RequestID: middleware.GetRequestID(c)}
	list, err := svc.ListSessions()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
