package handler

import (
	"errors"
	"net/http"

	"github.com/Mantuja-khan/ChatApplication/internal/repo"
	"github.com/Mantuja-khan/ChatApplication/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler interface {
	GetMessages(c *gin.Context)
	SendMessage(c *gin.Context)
	DeleteMessage(c *gin.Context)
	DeleteChat(c *gin.Context)
	React(c *gin.Context)
	MarkSeen(c *gin.Context)
	LatestMessages(c *gin.Context)
	UnreadCount(c *gin.Context)
}

type chatHandler struct {
	service service.ChatService
}

func NewChatHandler(service service.ChatService) ChatHandler {
	return &chatHandler{
		service: service,
	}
}

type sendMessageRequest struct {
	ReceiverID string  `json:"receiverId" binding:"required"`
	Content    string  `json:"content"`
	Kind       string  `json:"kind"`
	ImageURL   *string `json:"imageUrl"`
}

type markSeenRequest struct {
	MessageIDs []string `json:"messageIds" binding:"required"`
}

type reactRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

func (h *chatHandler) GetMessages(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	peerID := c.Param("peerId")

	msgs, err := h.service.GetMessages(c.Request.Context(), userID, peerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get messages",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": msgs,
	})
}

func (h *chatHandler) SendMessage(c *gin.Context) {
	userID := c.GetString(ContextUserID)

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), userID, req.ReceiverID, req.Content, req.Kind, req.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBlocked), errors.Is(err, service.ErrNotFriends):
			c.JSON(http.StatusForbidden, gin.H{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to send message",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": msg,
	})
}

func (h *chatHandler) DeleteMessage(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	messageID := c.Param("messageId")
	scope := c.DefaultQuery("scope", "everyone")

	if err := h.service.DeleteMessage(c.Request.Context(), messageID, userID, scope); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotSender):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only the sender can delete for everyone",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete message",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": messageID,
	})
}

func (h *chatHandler) DeleteChat(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	peerID := c.Param("peerId")

	if err := h.service.DeleteChat(c.Request.Context(), userID, peerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete chat",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": peerID,
	})
}

func (h *chatHandler) React(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	messageID := c.Param("messageId")

	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	if err := h.service.React(c.Request.Context(), messageID, userID, req.Emoji); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageDeleted):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Cannot react to a deleted message",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to set reaction",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reacted": messageID,
	})
}

func (h *chatHandler) MarkSeen(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	peerID := c.Param("peerId")

	var req markSeenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	if err := h.service.MarkSeen(c.Request.Context(), userID, peerID, req.MessageIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to mark messages seen",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"seen": len(req.MessageIDs),
	})
}

func (h *chatHandler) LatestMessages(c *gin.Context) {
	userID := c.GetString(ContextUserID)

	msgs, err := h.service.LatestMessages(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get latest messages",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": msgs,
	})
}

func (h *chatHandler) UnreadCount(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	peerID := c.Param("peerId")

	count, err := h.service.UnreadCount(c.Request.Context(), userID, peerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count unread messages",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unread": count,
	})
}
