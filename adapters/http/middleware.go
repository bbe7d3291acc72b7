package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

const (
	GinContextKeySession = "session"
	GinContextKeyLocale  = "locale"

	HeaderTimezone = "X-Timezone"
)

// AuthMiddleware validates the bearer token and stores the caller's
// SessionContext for handlers.
func AuthMiddleware(jwtSvc *auth.JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			log.Debug("Rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(GinContextKeySession, auth.SessionContext{UserID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session not found"})
			return
		}
		if session.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "this endpoint requires the " + string(role) + " role"})
			return
		}
		c.Next()
	}
}

// LocaleMiddleware resolves Accept-Language and X-Timezone once per request.
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(GinContextKeyLocale, auth.ParseLocale(c.GetHeader("Accept-Language"), c.GetHeader(HeaderTimezone)))
		c.Next()
	}
}

// ErrorMiddleware renders the last error attached with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperror.ToHTTPStatus(err)

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.NewInternal("unexpected error", err)
		}
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err, zap.String("path", c.FullPath()), zap.Int("status", status))
		}

		body := appErr.ToJSON()
		if status < http.StatusInternalServerError && appErr.Details != "" {
			body["details"] = appErr.Details
		}
		c.JSON(status, body)
	}
}

func GetSession(c *gin.Context) (auth.SessionContext, bool) {
	v, ok := c.Get(GinContextKeySession)
	if !ok {
		return auth.SessionContext{}, false
	}
	session, ok := v.(auth.SessionContext)
	return session, ok
}

func GetLocale(c *gin.Context) auth.LocaleContext {
	if v, ok := c.Get(GinContextKeyLocale); ok {
		if loc, ok := v.(auth.LocaleContext); ok {
			return loc
		}
	}
	return auth.DefaultLocale()
}

// mustSession is used behind AuthMiddleware where the session is always set.
func mustSession(c *gin.Context) (auth.SessionContext, bool) {
	session, ok := GetSession(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("session not found", nil))
	}
	return session, ok
}
