package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows every origin when allowedOrigins is empty (development) and the
// comma separated list otherwise.
func CORS(allowedOrigins string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if strings.TrimSpace(allowedOrigins) == "" {
		cfg.AllowAllOrigins = true
	} else {
		for _, o := range strings.Split(allowedOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, o)
			}
		}
		cfg.AllowCredentials = true
	}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", RequestIDHeader}
	cfg.ExposeHeaders = []string{RequestIDHeader, "Content-Disposition"}
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}
