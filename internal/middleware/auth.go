package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/services"
)

// Claims represents the JWT claims structure
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionValidator checks that the session behind a token is still active
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID uuid.UUID) error
}

// Actor attaches the caller's IP address and user agent to the request context
// so that audit and security logs can record them on public routes too.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := services.WithActor(c.Request.Context(), services.Actor{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Auth returns a middleware that validates JWT tokens and the session they belong to
func Auth(jwtSecret string, sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""

		if authHeader == "" {
			// Download links carry the token as a query param
			tokenString = c.Query("token")
			if tokenString == "" {
				abortUnauthorized(c, "Authorization header is required")
				return
			}
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				abortUnauthorized(c, "Invalid authorization header format")
				return
			}
			tokenString = parts[1]
		}

		claims, err := validateToken(tokenString, jwtSecret)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abortUnauthorized(c, "invalid token claims")
			return
		}
		sessionID, err := uuid.Parse(claims.SessionID)
		if err != nil {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		if sessions != nil {
			if err := sessions.ValidateSession(c.Request.Context(), sessionID); err != nil {
				if errors.Is(err, services.ErrSessionRevoked) {
					abortUnauthorized(c, err.Error())
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "could not validate session",
				})
				return
			}
		}

		c.Set("userID", userID)
		c.Set("sessionID", sessionID)
		c.Set("userEmail", claims.Email)
		c.Set("userRole", claims.Role)
		c.Set("claims", claims)

		actor := services.ActorFromContext(c.Request.Context())
		if actor.IPAddress == "" {
			actor.IPAddress = c.ClientIP()
			actor.UserAgent = c.Request.UserAgent()
		}
		actor.UserID = &userID
		actor.SessionID = &sessionID
		c.Request = c.Request.WithContext(services.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}

// validateToken parses and validates a JWT token string
func validateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) uuid.UUID {
	userID, exists := c.Get("userID")
	if !exists {
		return uuid.Nil
	}
	return userID.(uuid.UUID)
}

// GetSessionID extracts the session ID from the Gin context
func GetSessionID(c *gin.Context) uuid.UUID {
	sessionID, exists := c.Get("sessionID")
	if !exists {
		return uuid.Nil
	}
	return sessionID.(uuid.UUID)
}

// GetUserRole extracts the user role from the Gin context
func GetUserRole(c *gin.Context) string {
	role, exists := c.Get("userRole")
	if !exists {
		return ""
	}
	return role.(string)
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *gin.Context) bool {
	return GetUserRole(c) == models.RoleAdmin
}

// RequireAdmin returns a middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// RequireRole returns a middleware that requires specific roles
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := GetUserRole(c)
		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "You do not have access to this resource",
		})
	}
}

// RequireAdminOrOwner returns a middleware that requires admin role OR the resource owner
// (the user_id or id param matches the current user).
func RequireAdminOrOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAdmin(c) {
			c.Next()
			return
		}
		idParam := c.Param("user_id")
		if idParam == "" {
			idParam = c.Param("id")
		}
		if targetID, err := uuid.Parse(idParam); err == nil && targetID == GetUserID(c) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "You do not have access to this resource",
		})
	}
}
