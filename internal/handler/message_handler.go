package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
	"github.com/AmanShaikh33/HUDDLENEW/internal/service"
)

// UserIDKey is the gin context key the auth middleware sets.
const UserIDKey = "userId"

type MessageHandler interface {
	GetHistory(c *gin.Context)
	SendMessage(c *gin.Context)
	MarkRead(c *gin.Context)
	GetUnreadCounts(c *gin.Context)
	GetOnlineUsers(c *gin.Context)
}

type messageHandler struct {
	service service.MessageService
}

func NewMessageHandler(service service.MessageService) MessageHandler {
	return &messageHandler{
		service: service,
	}
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// GetHistory returns the conversation with the named counterpart, oldest
// first.
func (h *messageHandler) GetHistory(c *gin.Context) {
	selfID := c.GetString(UserIDKey)
	otherID := c.Param("userId")

	messages, err := h.service.History(c.Request.Context(), selfID, otherID)
	if err != nil {
		respondError(c, err)
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage is the request/response fallback to the live channel. It
// runs the same delivery pipeline.
func (h *messageHandler) SendMessage(c *gin.Context) {
	selfID := c.GetString(UserIDKey)

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Receiver and content are required"})
		return
	}

	msg, err := h.service.Send(c.Request.Context(), selfID, req.ReceiverID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Message sent", "data": msg})
}

// MarkRead marks all messages from the named counterpart as read.
func (h *messageHandler) MarkRead(c *gin.Context) {
	selfID := c.GetString(UserIDKey)
	otherID := c.Param("userId")

	if _, err := h.service.MarkRead(c.Request.Context(), selfID, otherID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Messages marked as read"})
}

// GetUnreadCounts returns unseen-message counts keyed by counterpart.
func (h *messageHandler) GetUnreadCounts(c *gin.Context) {
	selfID := c.GetString(UserIDKey)

	counts, err := h.service.UnreadCounts(c.Request.Context(), selfID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

// GetOnlineUsers returns the presence snapshot so a reconnecting client
// can seed its initial state.
func (h *messageHandler) GetOnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": h.service.Online()})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, model.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
