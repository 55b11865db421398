package httpx

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon/internal/user"
)

const principalKey = "principal"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.Principal, error)
}

// tokenFromHeader accepts "Token <t>" and "Bearer <t>".
func tokenFromHeader(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		tok = strings.TrimSpace(tok)
		return tok, tok != ""
	}
	return "", false
}

// Authenticate resolves the caller when an Authorization header is present.
// Requests without credentials continue anonymously; bad credentials are 401.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.Next()
			return
		}
		tok, ok := tokenFromHeader(h)
		if !ok {
			Unauthorized(c, "invalid authorization header")
			return
		}
		p, err := auth.Authenticate(c.Request.Context(), tok)
		if err != nil {
			if errors.Is(err, user.ErrInvalidToken) {
				Unauthorized(c, "invalid token")
				return
			}
			Internal(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// CurrentUser returns the authenticated principal or nil.
func CurrentUser(c *gin.Context) *user.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*user.Principal)
	return p
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			Unauthorized(c, "authentication credentials were not provided")
			return
		}
		c.Next()
	}
}

// RequireManager admits managers and superusers.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentUser(c)
		if p == nil {
			Unauthorized(c, "authentication credentials were not provided")
			return
		}
		if !p.IsManager() {
			Forbidden(c)
			return
		}
		c.Next()
	}
}

// ManagerForWrites leaves safe methods open and requires a manager otherwise.
func ManagerForWrites() gin.HandlerFunc {
	manager := RequireManager()
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "GET", "HEAD", "OPTIONS":
			c.Next()
		default:
			manager(c)
		}
	}
}
