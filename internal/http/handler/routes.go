package handler

import (
	"database/sql"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"metrodoc/docs"
	"metrodoc/internal/http/middleware"
	"metrodoc/internal/service"
)

// Deps are the collaborators the routes need. Metrics is optional.
type Deps struct {
	DB            *sql.DB
	Documents     service.DocumentService
	Notifications service.NotificationService
	Auth          service.AuthService
	Tokens        middleware.TokenValidator
	Metrics       prometheus.Gatherer
	Clock         func() time.Time
}

// RegisterRoutes attaches the probes, metrics, Swagger UI and the /api surface.
// Every /api route except login and register requires a bearer token.
func RegisterRoutes(app *fiber.App, d Deps) {
	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Metrics != nil {
		app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}
	app.Get("/swagger/*", swaggerUI)

	api := app.Group("/api")
	requireAuth := middleware.Auth(d.Tokens)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", Login(d.Auth))
	authRoutes.Post("/register", Register(d.Auth))
	authRoutes.Get("/me", requireAuth, Me(d.Auth))

	documents := api.Group("/documents", requireAuth)
	documents.Get("/", ListDocuments(d.Documents))
	documents.Get("/search", SearchDocuments(d.Documents))
	documents.Post("/upload", UploadDocument(d.Documents))
	documents.Get("/:id", GetDocument(d.Documents))
	documents.Put("/:id", UpdateDocument(d.Documents))
	documents.Delete("/:id", DeleteDocument(d.Documents))
	documents.Get("/:id/summary", DocumentSummary(d.Documents))
	documents.Get("/:id/download", DownloadDocument(d.Documents))

	notifications := api.Group("/notifications", requireAuth)
	notifications.Get("/", ListNotifications(d.Notifications))
	notifications.Get("/current", CurrentNotifications(d.Notifications, clock))
	notifications.Get("/past", PastNotifications(d.Notifications, clock))
	notifications.Get("/unread-count", UnreadCount(d.Notifications))
	notifications.Patch("/read-all", MarkAllNotificationsRead(d.Notifications))
	notifications.Patch("/:id/read", MarkNotificationRead(d.Notifications))
	notifications.Delete("/:id", DeleteNotification(d.Notifications))
}

// swaggerUI serves the generated docs with the host and scheme the caller used.
func swaggerUI(c *fiber.Ctx) error {
	scheme := c.Protocol()
	if proto := c.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	docs.SwaggerInfo.Host = c.Get("Host")
	docs.SwaggerInfo.Schemes = []string{scheme}

	return swagger.HandlerDefault(c)
}
