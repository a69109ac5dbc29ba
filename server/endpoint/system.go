// Package endpoint holds the handlers every host serves regardless of the
// hosted application.
package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/apphost/observability"
	"github.com/kbukum/apphost/version"
)

// Ping answers as soon as a listener serves requests.
func Ping() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	}
}

// Health aggregates component health. Any unhealthy component makes it 503.
func Health(serviceName, ver string, src observability.HealthSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.Collect(c.Request.Context(), serviceName, ver, src)
		code := http.StatusOK
		if !sh.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":     sh.Status,
			"service":    sh.Service,
			"version":    sh.Version,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": sh.Components,
		})
	}
}

// Version reports the build and how long the host has been up.
func Version(started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"build":          version.GetVersionInfo(),
			"started":        started.UTC().Format(time.RFC3339),
			"uptime_seconds": int64(time.Since(started).Seconds()),
		})
	}
}
