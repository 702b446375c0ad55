package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"taskflow/logutils"
	"taskflow/response"
	"taskflow/util"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ContextUserIDKey    = "userID"
	ContextRequestIDKey = "requestID"
	RequestIDHeader     = "X-Request-ID"
)

// RequestLogger tags each request with an id and logs it once it is served.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		entry := logutils.Log.WithFields(logutils.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		})
		if uid, ok := c.Get(ContextUserIDKey); ok {
			entry = entry.WithField("user", uid)
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request served")
		default:
			entry.Debug("request served")
		}
	}
}

// AuthMiddleware accepts "Authorization: Bearer <token>" and stores the
// caller's id on the context.
func AuthMiddleware(tokens *util.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "authorization token is required", response.Unauthenticated)
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abortUnauthorized(c, "authorization header format must be Bearer {token}", response.InvalidToken)
			return
		}

		msg, err := tokens.CheckToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortUnauthorized(c, "token expired", response.TokenExpired)
				return
			}
			abortUnauthorized(c, "invalid token", response.InvalidToken)
			return
		}
		c.Set(ContextUserIDKey, msg.UserID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string, code response.ErrorCode) {
	response.HTTPError(c, http.StatusUnauthorized, msg, code)
	c.Abort()
}

// CurrentUserID returns the id placed by AuthMiddleware.
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(ContextUserIDKey)
}
