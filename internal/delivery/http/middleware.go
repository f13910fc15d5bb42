package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Requested-With"
	corsMaxAge       = "3600"
)

// originRule matches one configured origin. A trailing * turns the rule
// into a prefix match, so "http://localhost:*" accepts any local port.
type originRule struct {
	value  string
	prefix bool
}

func compileOrigins(allowedOrigins []string) []originRule {
	rules := make([]originRule, 0, len(allowedOrigins))
	for _, allowed := range allowedOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == "" {
			continue
		}
		if strings.HasSuffix(allowed, "*") {
			rules = append(rules, originRule{value: strings.TrimSuffix(allowed, "*"), prefix: true})
			continue
		}
		rules = append(rules, originRule{value: allowed})
	}
	return rules
}

func (r originRule) matches(origin string) bool {
	if r.prefix {
		return strings.HasPrefix(origin, r.value)
	}
	return origin == r.value
}

// isAllowedOrigin reports whether a non-empty origin matches one of the rules
func isAllowedOrigin(origin string, rules []originRule) bool {
	if origin == "" {
		return false
	}
	for _, rule := range rules {
		if rule.matches(origin) {
			return true
		}
	}
	return false
}

// CORSMiddleware echoes allowed origins back for the web and Capacitor
// clients and answers preflight requests.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	rules := compileOrigins(allowedOrigins)

	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Add("Vary", "Origin")

		if origin := c.GetHeader("Origin"); isAllowedOrigin(origin, rules) {
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Set("Access-Control-Allow-Methods", corsAllowMethods)
			header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			header.Set("Access-Control-Max-Age", corsMaxAge)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// BodyLimitMiddleware caps the request body at limit bytes. Zero disables it.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// LoggerMiddleware logs requests
func LoggerMiddleware() gin.HandlerFunc {
	return gin.Logger()
}

// RecoveryMiddleware turns panics into a 500
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
