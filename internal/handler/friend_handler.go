package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Mantuja-khan/ChatApplication/internal/model"
	"github.com/Mantuja-khan/ChatApplication/internal/repo"
	"github.com/Mantuja-khan/ChatApplication/internal/service"

	"github.com/gin-gonic/gin"
)

type FriendHandler interface {
	SendRequest(c *gin.Context)
	Accept(c *gin.Context)
	Reject(c *gin.Context)
	Status(c *gin.Context)
	Pending(c *gin.Context)
	Contacts(c *gin.Context)
	Block(c *gin.Context)
	Unblock(c *gin.Context)
}

type friendHandler struct {
	service service.FriendService
}

func NewFriendHandler(service service.FriendService) FriendHandler {
	return &friendHandler{
		service: service,
	}
}

type friendRequestBody struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}

func (h *friendHandler) SendRequest(c *gin.Context) {
	userID := c.GetString(ContextUserID)

	var req friendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	friendship, err := h.service.SendRequest(c.Request.Context(), userID, req.ReceiverID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfRequest):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrBlocked):
			c.JSON(http.StatusForbidden, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to send friend request",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"friendship": friendship,
	})
}

func (h *friendHandler) Accept(c *gin.Context) {
	h.setStatus(c, h.service.Accept)
}

func (h *friendHandler) Reject(c *gin.Context) {
	h.setStatus(c, h.service.Reject)
}

func (h *friendHandler) Status(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	peerID := c.Param("peerId")

	friendship, err := h.service.Status(c.Request.Context(), userID, peerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get friendship status",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"friendship": friendship,
	})
}

func (h *friendHandler) Pending(c *gin.Context) {
	userID := c.GetString(ContextUserID)

	requests, err := h.service.Pending(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get pending requests",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
	})
}

func (h *friendHandler) Contacts(c *gin.Context) {
	userID := c.GetString(ContextUserID)

	contacts, err := h.service.Contacts(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get contacts",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contacts": contacts,
	})
}

func (h *friendHandler) Block(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	blockedID := c.Param("userId")

	if err := h.service.Block(c.Request.Context(), userID, blockedID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to block user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"blocked": blockedID,
	})
}

func (h *friendHandler) Unblock(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	blockedID := c.Param("userId")

	if err := h.service.Unblock(c.Request.Context(), userID, blockedID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to unblock user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unblocked": blockedID,
	})
}

func (h *friendHandler) setStatus(c *gin.Context, apply func(ctx context.Context, requestID string) (*model.Friendship, error)) {
	requestID := c.Param("requestId")

	friendship, err := apply(c.Request.Context(), requestID)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Friend request not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update friend request",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"friendship": friendship,
	})
}
