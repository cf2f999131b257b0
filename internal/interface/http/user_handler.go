package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/messagely/internal/application"
	"github.com/oksasatya/messagely/internal/interface/middleware"
	"github.com/oksasatya/messagely/pkg/response"
)

type UserHandler struct {
	Gateway *application.Gateway
	Logger  *logrus.Logger
}

func NewUserHandler(gw *application.Gateway, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Gateway: gw, Logger: logger}
}

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Gateway.ListUsers(c.Request.Context(), middleware.Username(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users}, "users", nil)
}

// Search GET /api/users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	users, err := h.Gateway.SearchUsers(c.Request.Context(), middleware.Username(c), c.Query("q"), size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users}, "users", nil)
}

// Get GET /api/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Gateway.GetUser(c.Request.Context(), middleware.Username(c), c.Param("username"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "user", nil)
}

// MessagesTo GET /api/users/:username/to
func (h *UserHandler) MessagesTo(c *gin.Context) {
	msgs, err := h.Gateway.MessagesTo(c.Request.Context(), middleware.Username(c), c.Param("username"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": msgs}, "messages", nil)
}

// MessagesFrom GET /api/users/:username/from
func (h *UserHandler) MessagesFrom(c *gin.Context) {
	msgs, err := h.Gateway.MessagesFrom(c.Request.Context(), middleware.Username(c), c.Param("username"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": msgs}, "messages", nil)
}
