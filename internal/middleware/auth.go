package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/harvestlink/harvest-market/internal/models"
)

// Auth verifies bearer tokens issued by the identity provider and exposes the
// caller as a typed principal. Token issuance lives elsewhere; this only
// checks the signature and lifts {user_id, role} out of the claims.
type Auth struct {
	secret []byte
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

func (a *Auth) parseToken(tokenString string) (models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Principal{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, fmt.Errorf("invalid claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return models.Principal{}, fmt.Errorf("user_id missing from claims")
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = models.RoleGuest
	}

	return models.Principal{ID: userID, Role: role}, nil
}

func bearerToken(c *gin.Context) string {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Required rejects requests without a valid token.
func (a *Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}

		principal, err := a.parseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", principal.ID)
		c.Set("role", principal.Role)
		c.Next()
	}
}

// Optional attaches a principal when a valid token rides along, and lets the
// request through either way. Used by public intake endpoints.
func (a *Auth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if principal, err := a.parseToken(token); err == nil {
				c.Set("user_id", principal.ID)
				c.Set("role", principal.Role)
			}
		}
		c.Next()
	}
}

// RequireRoles allows only callers holding one of the given roles. Must run
// after Required.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		c.Abort()
	}
}

// Principal rebuilds the typed caller from the request context. Handlers pass
// it explicitly into every service call.
func Principal(c *gin.Context) models.Principal {
	return models.Principal{
		ID:   c.GetString("user_id"),
		Role: c.GetString("role"),
	}
}
