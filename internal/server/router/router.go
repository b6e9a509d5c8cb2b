package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gagesampsonn/barbershop/internal/config"
	"github.com/gagesampsonn/barbershop/internal/server/handlers"
	"github.com/gagesampsonn/barbershop/internal/server/middleware"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Hours     *handlers.HoursHandler
	Catalog   *handlers.CatalogHandler
	Reports   *handlers.ReportsHandler
	Snapshots *handlers.SnapshotsHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, auth *middleware.Authenticator, cfg config.ServerConfig, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/hours", h.Hours.PublicHours)
		api.GET("/hours/status", h.Hours.Status)
		api.GET("/services", h.Catalog.Active)
	}

	admin := api.Group("/admin")
	admin.Use(auth.RequireAdmin())
	{
		admin.GET("/hours", h.Hours.AdminWeekly)
		admin.PUT("/hours", h.Hours.SaveWeekly)
		admin.GET("/exceptions", h.Hours.ListExceptions)
		admin.POST("/exceptions", h.Hours.CreateException)
		admin.PUT("/exceptions/:id", h.Hours.UpdateException)
		admin.DELETE("/exceptions/:id", h.Hours.DeleteException)

		admin.GET("/services", h.Catalog.All)
		admin.PUT("/services/:id", h.Catalog.Update)

		admin.GET("/snapshots", h.Snapshots.List)

		reports := admin.Group("/reports")
		reports.Use(h.Reports.RequireSquare())
		{
			reports.GET("/summary", h.Reports.Summary)
			reports.GET("/sales", h.Reports.Sales)
			reports.GET("/daily", h.Reports.Daily)
			reports.GET("/busiest", h.Reports.Busiest)
			reports.GET("/customers", h.Reports.Customers)
			reports.GET("/calendar", h.Reports.Calendar)
			reports.GET("/calendar.xlsx", h.Reports.CalendarExport)
			reports.GET("/hourly", h.Reports.Hourly)
			reports.POST("/notify", h.Reports.Notify)
		}
	}

	logger.Info("router initialized")
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
