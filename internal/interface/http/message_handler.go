package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/messagely/internal/application"
	"github.com/oksasatya/messagely/internal/interface/middleware"
	"github.com/oksasatya/messagely/pkg/apperror"
	"github.com/oksasatya/messagely/pkg/response"
)

type MessageHandler struct {
	Gateway *application.Gateway
	Logger  *logrus.Logger
}

func NewMessageHandler(gw *application.Gateway, logger *logrus.Logger) *MessageHandler {
	return &MessageHandler{Gateway: gw, Logger: logger}
}

type sendRequest struct {
	To   string `json:"to_username"`
	Body string `json:"body"`
}

// a malformed id cannot name a message
func messageID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.NotFound("No such message")
	}
	return id, nil
}

// Get GET /api/messages/:id
func (h *MessageHandler) Get(c *gin.Context) {
	id, err := messageID(c)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	m, err := h.Gateway.GetMessage(c.Request.Context(), middleware.Username(c), id)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": m}, "message", nil)
}

// Send POST /api/messages; the sender is the verified caller.
func (h *MessageHandler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		badPayload(c, err)
		return
	}
	m, err := h.Gateway.SendMessage(c.Request.Context(), middleware.Username(c), req.To, req.Body)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": m}, "message sent", nil)
}

// MarkRead POST /api/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, err := messageID(c)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	r, err := h.Gateway.MarkRead(c.Request.Context(), middleware.Username(c), id)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": r}, "message read", nil)
}
