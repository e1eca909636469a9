package middlewares

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSAllowedHeaders are the request headers browsers may send cross-origin
var CORSAllowedHeaders = []string{
	"Origin", "Content-Type", "Content-Length", "Accept", "Accept-Encoding",
	"Authorization", "X-Requested-With", "Cache-Control", "Range",
}

// CORSMiddleware allows credentialed browser requests from the listed origins. A "*" entry
// allows every origin; the request origin is echoed back instead of "*" since credentials are
// allowed. Requests from any other origin are rejected with 403.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := slices.Contains(allowedOrigins, "*")

	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowAll || slices.Contains(allowedOrigins, origin)
		},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders:     CORSAllowedHeaders,
		ExposeHeaders:    []string{"Content-Disposition", "Content-Length", HeaderRetryAfter},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	})
}
