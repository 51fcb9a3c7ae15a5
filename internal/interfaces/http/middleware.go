package http

import (
	"strconv"
	"strings"
	"time"

	"ebridge-portal/internal/domain/entity/session"
	"ebridge-portal/internal/infrastructure/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const sessionKey = "session"

// authenticate resolves the bearer token into a session stored on the gin context.
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			writeError(c, statusFor(auth.ErrMissingToken), auth.ErrMissingToken)
			c.Abort()
			return
		}
		sess, err := h.tokens.Parse(token)
		if err != nil {
			writeError(c, statusFor(err), err)
			c.Abort()
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func (h *Handler) requireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessionFrom(c).IsStaff() {
			writeError(c, statusFor(errStaffOnly), errStaffOnly)
			c.Abort()
			return
		}
		c.Next()
	}
}

// requestLogger logs every request through logrus and feeds the request metrics.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		if h.observer != nil {
			h.observer.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), elapsed.Seconds())
		}

		entry := h.logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"route":    route,
			"status":   status,
			"duration": elapsed.String(),
		})
		if sess, ok := c.Get(sessionKey); ok {
			entry = entry.WithField("user_id", sess.(session.Session).UserID)
		}
		if status >= 500 {
			entry.Warn("request served with error")
			return
		}
		entry.Debug("request served")
	}
}

func sessionFrom(c *gin.Context) session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return session.Session{}
	}
	sess, _ := v.(session.Session)
	return sess
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
