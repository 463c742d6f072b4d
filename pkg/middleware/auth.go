package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Audience context labels. They name which verifier configuration a request
// was authenticated under and gate endpoint reachability.
const (
	AudienceExternal = "external"
	AudienceInternal = "internal"
)

const identityKey = "identity"

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// Identity is the typed caller identity extracted from verified claims. It is
// the only thing handler logic sees of the token.
type Identity struct {
	Subject  string // maps to User.ExternalID
	Username string // preferred_username claim
	Email    string
	Audience string
}

// SetIdentity stores the caller identity on the context. Exposed for tests
// and for AuthMiddleware itself.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the caller identity set by AuthMiddleware.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the
// provided verifier and stores the caller Identity on the context under the
// given audience label.
func AuthMiddleware(ver Verifier, audience string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		idToken, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		var claims struct {
			Subject  string `json:"sub"`
			Username string `json:"preferred_username"`
			Email    string `json:"email"`
		}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}
		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		SetIdentity(c, Identity{
			Subject:  claims.Subject,
			Username: claims.Username,
			Email:    claims.Email,
			Audience: audience,
		})
		c.Next()
	}
}
