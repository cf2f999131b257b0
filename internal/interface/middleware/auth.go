package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/oksasatya/messagely/pkg/response"
)

const (
	CtxUsernameKey = "username"
	tokenCookie    = "access_token"
	tokenField     = "_token"
)

// Identifier resolves a token to the username it was issued for.
// *application.Gateway implements it.
type Identifier interface {
	Identify(token string) (string, error)
}

type tokenBody struct {
	Token string `json:"_token"`
}

// ExtractToken looks for a token in the Authorization header, the JSON
// body field _token, the _token query parameter and the access_token
// cookie, in that order. The body is cached so handlers can bind it again
// with ShouldBindBodyWith.
func ExtractToken(c *gin.Context) string {
	tok, _ := extractToken(c)
	return tok
}

// extractToken also reports whether the token came from the cookie.
func extractToken(c *gin.Context) (string, bool) {
	if h := c.GetHeader("Authorization"); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok), false
		}
	}
	if c.Request.Body != nil && c.Request.Method != http.MethodGet &&
		strings.HasPrefix(c.ContentType(), binding.MIMEJSON) {
		var b tokenBody
		if err := c.ShouldBindBodyWith(&b, binding.JSON); err == nil && b.Token != "" {
			return b.Token, false
		}
	}
	if tok := c.Query(tokenField); tok != "" {
		return tok, false
	}
	if tok, err := c.Cookie(tokenCookie); err == nil && tok != "" {
		return tok, true
	}
	return "", false
}

// Identify verifies any presented token and stores the username under
// CtxUsernameKey. Requests without a token continue anonymously. An explicit
// token that fails verification is rejected with 401; a stale access_token
// cookie is cleared and the request continues anonymously.
func Identify(ids Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, fromCookie := extractToken(c)
		if tok == "" {
			c.Next()
			return
		}
		username, err := ids.Identify(tok)
		switch {
		case err == nil:
			c.Set(CtxUsernameKey, username)
		case fromCookie:
			c.SetCookie(tokenCookie, "", -1, "/", "", false, true)
		default:
			response.Error[any](c, http.StatusUnauthorized, "invalid token", nil)
			return
		}
		c.Next()
	}
}

// Username returns the verified username, or "" for anonymous requests.
func Username(c *gin.Context) string {
	return c.GetString(CtxUsernameKey)
}
