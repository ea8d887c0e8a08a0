package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/povertyhq/poverty_backend/attachments"
	"github.com/povertyhq/poverty_backend/config"
	"github.com/povertyhq/poverty_backend/gdrive"
	"github.com/povertyhq/poverty_backend/jsonapi"
	"github.com/povertyhq/poverty_backend/middlewares"
	"github.com/povertyhq/poverty_backend/models"
	"github.com/sirupsen/logrus"
)

// application bundles the long-lived collaborators the handlers share.
type application struct {
	logger      *logrus.Logger
	registry    *jsonapi.Registry
	attachments *attachments.Service
	drive       *gdrive.Client
}

func main() {
	_ = godotenv.Load()

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	drive := gdrive.NewClient(gdrive.NewDriveAPI(), gdrive.NewRefresher(), gdrive.NewTokenStore())
	app := &application{
		logger:   logger,
		registry: models.BuildRegistry(),
		attachments: attachments.NewService(
			attachments.NewStore(),
			attachments.NewScantClient(config.ScantAddress()),
			attachments.NewPreviewer(),
			drive,
		),
		drive: drive,
	}

	r := setupRouter(app)

	srv := &http.Server{
		Addr:    ":" + config.ListenPort(),
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedis()
	models.MigrateTable()

	logger.WithFields(logrus.Fields{
		"port": config.ListenPort(),
	}).Info("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
	if db := config.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// setupRouter wires the middleware chain and every route. The readiness
// gate answers 503 for app endpoints until the database is connected,
// which lets the server open its port before its dependencies are up.
func setupRouter(app *application) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("previewable", func(fl validator.FieldLevel) bool {
			contentType := fl.Field().String()
			return contentType == "application/pdf" || strings.HasPrefix(contentType, "image/")
		})
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "X-Correlation-Id")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	registerAuthRoutes(r, app)

	api := r.Group("/api", middlewares.AuthMiddleware())
	registerResource[models.Supplier](api, app, "supplier", models.SupplierHooks{})
	registerResource[models.PurchaseOrder](api, app, "purchaseOrder",
		attachmentCommitHooks{inner: models.PurchaseOrderHooks{}, attachments: app.attachments})
	registerResource[models.Payment](api, app, "payment",
		attachmentCommitHooks{inner: models.NoopHooks{}, attachments: app.attachments})
	registerResource[models.Category](api, app, "category", models.CategoryHooks{})
	api.POST("/attachments", stageAttachmentHandler(app))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	})

	return r
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
