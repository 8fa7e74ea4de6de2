package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

func NewServer(handler *Handler, cronSecret string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	tmpl := template.Must(template.ParseFS(templatesFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	setupRoutes(r, handler, cronSecret)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, cronSecret string) {
	r.GET("/", handler.Index)
	r.POST("/subscribe", handler.Subscribe)
	r.GET("/details", handler.DetailsRedirect)
	r.GET("/details/:number", handler.Details)

	r.GET("/health", handler.Health)

	protected := r.Group("/")
	protected.Use(authMiddleware(cronSecret))
	{
		protected.GET("/cron/check", handler.RunCheck)
		protected.POST("/admin/run", handler.RunCheck)
		protected.POST("/admin/broadcast", handler.Broadcast)
		protected.POST("/admin/clear", handler.Clear)
	}

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware guards the cron and admin endpoints with a bearer token.
// The token is compared exactly; an unset secret rejects every request.
func authMiddleware(cronSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var providedKey string
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			providedKey = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if cronSecret == "" || providedKey == "" || providedKey != cronSecret {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "unauthorized"})
			c.Abort()
			return
		}

		c.Next()
	}
}
