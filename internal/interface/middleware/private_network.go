package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/mexyapp-accounts/pkg/response"
)

func isPrivate(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && (parsed.IsLoopback() || parsed.IsPrivate())
}

// AllowPrivateIP lets internal callers bypass the rate limiter.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		return isPrivate(c.ClientIP())
	}
}

// PrivateNetworkOnly rejects callers outside loopback and RFC 1918 ranges.
// It relies on gin's ClientIP, which only honours forwarding headers from
// trusted proxies.
func PrivateNetworkOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isPrivate(c.ClientIP()) {
			response.Abort(c, http.StatusForbidden, "forbidden", nil)
			return
		}
		c.Next()
	}
}
