package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/messagely/internal/application"
	"github.com/oksasatya/messagely/pkg/response"
)

type AuthHandler struct {
	Gateway *application.Gateway
	Logger  *logrus.Logger
	// CookieTTL bounds the access_token cookie; zero means a session cookie.
	CookieTTL    time.Duration
	CookieSecure bool
}

func NewAuthHandler(gw *application.Gateway, logger *logrus.Logger, cookieTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Gateway: gw, Logger: logger, CookieTTL: cookieTTL, CookieSecure: cookieSecure}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req application.RegisterInput
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		badPayload(c, err)
		return
	}
	res, err := h.Gateway.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.setCookie(c, res.Token)
	response.Success(c, http.StatusCreated, res, res.Message, nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		badPayload(c, err)
		return
	}
	res, err := h.Gateway.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.setCookie(c, res.Token)
	response.Success(c, http.StatusOK, res, res.Message, nil)
}

func (h *AuthHandler) setCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", token, int(h.CookieTTL/time.Second), "/", "", h.CookieSecure, true)
}
