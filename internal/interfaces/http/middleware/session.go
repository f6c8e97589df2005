package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yatube/backend/internal/infrastructure/auth"
	"github.com/yatube/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Session context keys
const (
	SessionClaimsKey = "session_claims"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
	NextParam        = "next"
)

// SessionConfig holds configuration for the session middleware
type SessionConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional for checking revoked tokens
	TokenBlacklist auth.TokenBlacklist
	// CookieName is the session cookie; the Authorization header is also read
	CookieName string
	// Logger for middleware logging
	Logger *zap.Logger
}

// Session identifies the user behind the request, if any.
// It never rejects a request: pages that need a user add RequireLogin.
func Session(cfg SessionConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		tokenString := extractToken(c, cfg.CookieName)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			log.Debug("Ignoring invalid session token",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path))
			c.Next()
			return
		}

		if cfg.TokenBlacklist != nil && isRevoked(c, cfg.TokenBlacklist, claims, log) {
			c.Next()
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

// isRevoked checks the blacklist. Lookup failures are logged and the
// session is kept.
func isRevoked(c *gin.Context, blacklist auth.TokenBlacklist, claims *auth.Claims, log *zap.Logger) bool {
	ctx := c.Request.Context()

	if claims.ID != "" {
		revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			log.Error("Failed to check token blacklist",
				zap.String("jti", claims.ID),
				zap.Error(err))
		} else if revoked {
			return true
		}
	}

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		log.Error("Failed to check user token invalidation",
			zap.String("user_id", claims.UserID),
			zap.Error(err))
		return false
	}
	return invalidated
}

// extractToken reads the session cookie, then the Bearer header
func extractToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			return token
		}
	}
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
}

// RequireLogin sends anonymous visitors to loginURL, remembering where they were going
func RequireLogin(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetSessionClaims(c); ok {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, LoginRedirectURL(loginURL, c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// LoginRedirectURL returns loginURL with next set to the page to come back to
func LoginRedirectURL(loginURL, next string) string {
	return loginURL + "?" + NextParam + "=" + url.QueryEscape(next)
}

// SafeNext returns next if it is a path on this site, otherwise "".
// Absolute and protocol-relative URLs are refused.
func SafeNext(next string) string {
	if next == "" || next[0] != '/' {
		return ""
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}

// GetSessionClaims returns the claims of the logged in user
func GetSessionClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(SessionClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok && claims != nil
}

// GetSessionUserID returns the ID of the logged in user
func GetSessionUserID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := GetSessionClaims(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := claims.GetUserUUID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetSessionUsername returns the username of the logged in user, or ""
func GetSessionUsername(c *gin.Context) string {
	if claims, ok := GetSessionClaims(c); ok {
		return claims.Username
	}
	return ""
}
