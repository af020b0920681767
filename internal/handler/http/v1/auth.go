package v1

import (
	"crypto/subtle"
	"net/http"

	"github.com/aksbond/Emergency-SOS/internal/audit"
	"github.com/aksbond/Emergency-SOS/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "emsos_session"
	ctxSessionKey = "session"
)

// sessionAuth - middleware аутентификации конечного пользователя.
// Аутентифицирован = подписанный токен сессии указывает на живую запись
// с телефоном и id пользователя.
func (h *Handler) sessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		sess, err := h.sessions.Get(c.Request.Context(), token)
		if err != nil {
			h.logger.WithField("method", "sessionAuth").Warn("Rejected request with invalid session token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Set(ctxSessionKey, sess)
		c.Next()
	}
}

// currentSession возвращает сессию, положенную sessionAuth в контекст
func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(ctxSessionKey).(*session.Session)
}

// adminAuth - middleware консоли оператора. Порядок проверок закреплен:
// учетные данные, затем лимитер по IP, затем список разрешенных IP.
// Отказ по учетным данным не съедает слот лимитера; отказ по IP съедает.
func (h *Handler) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := h.logger.WithField("method", "adminAuth")
		ip := c.ClientIP()

		username, password, ok := c.Request.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.cfg.AdminUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.AdminPassword)) == 1
		if !ok || !userOK || !passOK {
			log.WithFields(map[string]any{"username": username, "source_ip": ip}).
				Warn("Failed admin login attempt")
			h.publishAudit(c, audit.Event{
				Type:     audit.EventAdminAuthFailure,
				Username: username,
				SourceIP: ip,
			})
			c.Header("WWW-Authenticate", `Basic realm="restricted"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
			return
		}

		if !h.adminLimiter.Allow(ip) {
			log.WithField("source_ip", ip).Warn("Admin rate limit exceeded")
			h.publishAudit(c, audit.Event{
				Type:     audit.EventRateLimited,
				Username: username,
				SourceIP: ip,
			})
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Try again later."})
			return
		}

		if !h.ipAllowed(ip) {
			log.WithFields(map[string]any{"username": username, "source_ip": ip}).
				Warn("Admin access denied by IP allowlist")
			h.publishAudit(c, audit.Event{
				Type:     audit.EventAdminIPRejected,
				Username: username,
				SourceIP: ip,
			})
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied from this IP."})
			return
		}

		c.Next()
	}
}

func (h *Handler) ipAllowed(ip string) bool {
	for _, allowed := range h.cfg.AdminAllowedIPs {
		if allowed == ip {
			return true
		}
	}
	return false
}

// publishAudit отправляет событие аудита best-effort
func (h *Handler) publishAudit(c *gin.Context, event audit.Event) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(c.Request.Context(), event); err != nil {
		h.logger.WithError(err).Warn("Failed to publish audit event")
	}
}

// setSessionCookie ставит или сбрасывает cookie сессии
func (h *Handler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetCookie(sessionCookie, token, maxAge, "/", "", false, true)
}
