package middleware

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderClientID lets a caller present a stable identity (e.g., a browser
// install ID) instead of being keyed by IP. It scopes idempotency records and
// rate-limit buckets; it is not authentication.
const HeaderClientID = "X-Client-ID"

var clientIDRE = regexp.MustCompile(`^[A-Za-z0-9._~\-:]{1,128}$`)

// ClientID returns "client:<X-Client-ID>" when the header carries a
// well-formed token and "ip:<addr>" otherwise.
func ClientID(c *gin.Context) string {
	if c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader(HeaderClientID)); h != "" && clientIDRE.MatchString(h) {
			return "client:" + h
		}
	}
	return "ip:" + c.ClientIP()
}
