package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/messagely/internal/interface/http"
)

type MessageModule struct {
	Handler    *handlers.MessageHandler
	Middleware []gin.HandlerFunc
}

func NewMessageModule(h *handlers.MessageHandler, mw ...gin.HandlerFunc) *MessageModule {
	return &MessageModule{Handler: h, Middleware: mw}
}

func (m *MessageModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/messages", m.Middleware...)
	g.POST("", m.Handler.Send)
	g.GET("/:id", m.Handler.Get)
	g.POST("/:id/read", m.Handler.MarkRead)
}
