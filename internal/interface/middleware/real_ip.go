package middleware

import (
	"github.com/gin-gonic/gin"
)

// ClientIPHeaders are read, in order, only when the direct peer is a trusted proxy.
var ClientIPHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// TrustProxies limits forwarding headers to requests arriving from the given
// addresses or CIDRs. With none, c.ClientIP() is always the TCP peer.
func TrustProxies(r *gin.Engine, proxies []string) error {
	r.RemoteIPHeaders = ClientIPHeaders
	if len(proxies) == 0 {
		return r.SetTrustedProxies(nil)
	}
	return r.SetTrustedProxies(proxies)
}

// RealIP stores c.ClientIP() under "real_ip" for the limiter and access log.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}
