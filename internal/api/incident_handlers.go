package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/goatkit/incidentquery/internal/apierrors"
	"github.com/goatkit/incidentquery/internal/auth"
	"github.com/goatkit/incidentquery/internal/middleware"
	"github.com/goatkit/incidentquery/internal/models"
)

// IncidentQueries is the query surface the handlers need.
type IncidentQueries interface {
	UserCompanyIncidents(ctx context.Context, userID, companyID uuid.UUID) ([]models.Incident, error)
	AllIncidents(ctx context.Context) ([]models.Incident, error)
	IncidentWithHistory(ctx context.Context, id uuid.UUID) (*models.IncidentWithHistory, error)
	AssignedIncidents(ctx context.Context, managerID uuid.UUID) ([]models.Incident, error)
	HighPriorityAssigned(ctx context.Context, managerID uuid.UUID) ([]models.IncidentWithHistory, error)
	CompanyIncidents(ctx context.Context, companyID uuid.UUID) ([]models.Incident, error)
	UserIncidents(ctx context.Context, userID uuid.UUID) ([]models.Incident, error)
	CallVolume(ctx context.Context, companyID uuid.UUID) (*models.CallVolume, error)
	DashboardStats(ctx context.Context, companyID uuid.UUID) (*models.DashboardStats, error)
	ManagerDailyStats(ctx context.Context, managerID uuid.UUID) (*models.ManagerDailyStats, error)
}

// IncidentHandler serves the /incident-query endpoints.
type IncidentHandler struct {
	queries IncidentQueries
	logger  *slog.Logger
	impl    string
}

// NewIncidentHandler creates a new incident handler. impl is reported by the
// health endpoint.
func NewIncidentHandler(queries IncidentQueries, logger *slog.Logger, impl string) *IncidentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IncidentHandler{queries: queries, logger: logger, impl: impl}
}

type userCompanyRequest struct {
	UserID    string `json:"user_id" binding:"required,uuidstr"`
	CompanyID string `json:"company_id" binding:"required,uuidstr"`
}

// subject returns the caller's subject. Routes are guarded by
// RequirePolicy, so claims are always present here.
func subject(c *gin.Context) uuid.UUID {
	claims, _ := middleware.ClaimsFromContext(c)
	return claims.Subject
}

// Health handles GET /incident-query/health.
func (h *IncidentHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK " + h.impl})
}

// UserCompany handles POST /incident-query/user-company.
//
//	@Summary	List a user's incidents with a company
//	@Tags		Incident
//	@Accept		json
//	@Produce	json
//	@Success	200	{array}		models.IncidentSummary
//	@Failure	400	{object}	apierrors.ValidationError
//	@Failure	401	{object}	apierrors.APIError
//	@Failure	403	{object}	apierrors.APIError
//	@Router		/incident-query/user-company [post]
func (h *IncidentHandler) UserCompany(c *gin.Context) {
	var req userCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.AbortValidation(c, bindingErrors(err))
		return
	}
	userID := uuid.MustParse(req.UserID)
	companyID := uuid.MustParse(req.CompanyID)

	claims, _ := middleware.ClaimsFromContext(c)
	if err := auth.Policies[auth.ClassSelfLookup].AuthorizeOwner(claims, userID); err != nil {
		middleware.AbortAuth(c, err)
		return
	}

	incidents, err := h.queries.UserCompanyIncidents(c.Request.Context(), userID, companyID)
	if err != nil {
		respondError(c, h.logger, err, false)
		return
	}
	c.JSON(http.StatusOK, models.SummaryList(incidents))
}

// AllIncidents handles GET /incident-query/all-incidents.
func (h *IncidentHandler) AllIncidents(c *gin.Context) {
	incidents, err := h.queries.AllIncidents(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, false)
		return
	}
	c.JSON(http.StatusOK, models.DetailList(incidents))
}

// IncidentByID handles GET /incident-query/:incident_id.
//
//	@Summary	Get an incident with its history
//	@Tags		Incident
//	@Produce	json
//	@Param		incident_id	path		string	true	"Incident ID"
//	@Success	200			{object}	models.IncidentDetailWithHistory
//	@Failure	404			{object}	apierrors.APIError
//	@Router		/incident-query/{incident_id} [get]
func (h *IncidentHandler) IncidentByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("incident_id"))
	if err != nil {
		apierrors.AbortValidation(c, []apierrors.FieldError{fieldError([]string{"path", "incident_id"}, "uuidstr")})
		return
	}

	item, err := h.queries.IncidentWithHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, false)
		return
	}
	c.JSON(http.StatusOK, models.NewIncidentDetailWithHistory(*item))
}

// CallVolume handles GET /incident-query/call-volume.
func (h *IncidentHandler) CallVolume(c *gin.Context) {
	volume, err := h.queries.CallVolume(c.Request.Context(), subject(c))
	if err != nil {
		respondError(c, h.logger, err, true)
		return
	}
	c.JSON(http.StatusOK, volume)
}

// DashboardStats handles GET /incident-query/dashboard-stats.
func (h *IncidentHandler) DashboardStats(c *gin.Context) {
	stats, err := h.queries.DashboardStats(c.Request.Context(), subject(c))
	if err != nil {
		respondError(c, h.logger, err, true)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CompanyIncidents handles GET /incident-query/company-incidents.
func (h *IncidentHandler) CompanyIncidents(c *gin.Context) {
	incidents, err := h.queries.CompanyIncidents(c.Request.Context(), subject(c))
	if err != nil {
		respondError(c, h.logger, err, false)
		return
	}
	c.JSON(http.StatusOK, models.DetailList(incidents))
}

// UserIncidents handles GET /incident-query/incidents-user.
func (h *IncidentHandler) UserIncidents(c *gin.Context) {
	incidents, err := h.queries.UserIncidents(c.Request.Context(), subject(c))
	if err != nil {
		respondError(c, h.logger, err, false)
		return
	}
	c.JSON(http.StatusOK, models.UserIncidents{Incidents: models.UserIncidentList(incidents)})
}

// AssignedIncidents handles GET /incident-query/manager/assigned-incidents.
func (h *IncidentHandler) AssignedIncidents(c *gin.Context) {
	incidents, err := h.queries.AssignedIncidents(c.Request.Context(), subject(c))
	if err != nil {
		respondError(c, h.logger, err, false)
		return
	}
	c.JSON(http.StatusOK, models.DetailList(incidents))
}

// DailyStats handles GET /incident-query/manager/daily-stats.
func (h *IncidentHandler) DailyStats(c *gin.Context) {
	stats, err := h.queries.ManagerDailyStats(c.Request.Context(), subject(c))
	if err != nil {
		respondError(c, h.logger, err, true)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// HighPriorityAssigned handles
// GET /incident-query/manager/high-priority-assigned-incidents.
func (h *IncidentHandler) HighPriorityAssigned(c *gin.Context) {
	items, err := h.queries.HighPriorityAssigned(c.Request.Context(), subject(c))
	if err != nil {
		respondError(c, h.logger, err, false)
		return
	}
	c.JSON(http.StatusOK, models.DetailWithHistoryList(items))
}
