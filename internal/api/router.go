package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goatkit/incidentquery/internal/apierrors"
	"github.com/goatkit/incidentquery/internal/auth"
	"github.com/goatkit/incidentquery/internal/middleware"
)

// RouterConfig holds what NewRouter wires together.
type RouterConfig struct {
	Queries        IncidentQueries
	Decoder        middleware.ClaimsDecoder
	Logger         *slog.Logger
	Impl           string
	AllowedOrigins []string
	// Registry, when set, receives HTTP metrics and is served on /metrics.
	Registry *prometheus.Registry
}

// NewRouter builds the gin engine serving the incident query API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	registerValidation()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered",
			slog.String("path", c.Request.URL.Path),
			slog.Any("panic", recovered))
		apierrors.Abort(c, apierrors.CodeInternalError, "")
	}))
	r.Use(middleware.RequestLogger(logger))
	if cfg.Registry != nil {
		r.Use(middleware.NewHTTPMetrics(cfg.Registry).Handler())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{Registry: cfg.Registry})))
	}
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Authenticate(cfg.Decoder))

	r.NoRoute(func(c *gin.Context) {
		apierrors.Abort(c, apierrors.CodeRouteNotFound, c.Request.URL.Path)
	})

	h := NewIncidentHandler(cfg.Queries, logger, cfg.Impl)

	manager := middleware.RequirePolicy(auth.ClassManager)
	company := middleware.RequirePolicy(auth.ClassCompany)
	user := middleware.RequirePolicy(auth.ClassUser)

	q := r.Group("/incident-query")
	q.GET("/health", h.Health)
	q.POST("/user-company", middleware.RequirePolicy(auth.ClassSelfLookup), h.UserCompany)
	q.GET("/all-incidents", manager, h.AllIncidents)
	q.GET("/call-volume", company, h.CallVolume)
	q.GET("/dashboard-stats", company, h.DashboardStats)
	q.GET("/company-incidents", company, h.CompanyIncidents)
	q.GET("/incidents-user", user, h.UserIncidents)
	q.GET("/:incident_id", manager, h.IncidentByID)

	m := q.Group("/manager", manager)
	m.GET("/assigned-incidents", h.AssignedIncidents)
	m.GET("/daily-stats", h.DailyStats)
	m.GET("/high-priority-assigned-incidents", h.HighPriorityAssigned)

	return r
}
