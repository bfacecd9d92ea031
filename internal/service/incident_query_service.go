package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/goatkit/incidentquery/internal/models"
	"github.com/goatkit/incidentquery/internal/repository"
)

const (
	// UserCompanyLimit caps the user+company listing.
	UserCompanyLimit = 20
	// CompanyIncidentsLimit caps the company listing.
	CompanyIncidentsLimit = 10

	CallVolumeBuckets = 8
	CallVolumeBucket  = 3 * time.Hour

	// Placeholder figures reported by the manager daily stats. They are not
	// derived from data.
	PlaceholderAvgResolutionTime    = "15 mins"
	PlaceholderCustomerSatisfaction = 4.8
)

// IncidentQueryService answers the read-only incident queries. It performs
// no authorization; callers must admit the request first.
type IncidentQueryService struct {
	repo   repository.IncidentRepository
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an IncidentQueryService.
type Option func(*IncidentQueryService)

// WithClock overrides the clock used to determine "today".
func WithClock(now func() time.Time) Option {
	return func(s *IncidentQueryService) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *IncidentQueryService) { s.logger = logger }
}

// NewIncidentQueryService creates a new incident query service.
func NewIncidentQueryService(repo repository.IncidentRepository, opts ...Option) *IncidentQueryService {
	s := &IncidentQueryService{repo: repo, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserCompanyIncidents returns the newest incidents a user filed with a
// company.
func (s *IncidentQueryService) UserCompanyIncidents(ctx context.Context, userID, companyID uuid.UUID) ([]models.Incident, error) {
	return s.repo.List(ctx, repository.IncidentFilter{UserID: &userID, CompanyID: &companyID}, UserCompanyLimit)
}

// AllIncidents returns every incident, newest first.
func (s *IncidentQueryService) AllIncidents(ctx context.Context) ([]models.Incident, error) {
	return s.repo.List(ctx, repository.IncidentFilter{}, 0)
}

// IncidentWithHistory returns an incident and its history. It returns
// repository.ErrNotFound when the incident does not exist.
func (s *IncidentQueryService) IncidentWithHistory(ctx context.Context, id uuid.UUID) (*models.IncidentWithHistory, error) {
	inc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.IncidentWithHistory{Incident: *inc, History: history}, nil
}

// AssignedIncidents returns the incidents assigned to a manager.
func (s *IncidentQueryService) AssignedIncidents(ctx context.Context, managerID uuid.UUID) ([]models.Incident, error) {
	return s.repo.List(ctx, repository.IncidentFilter{ManagerID: &managerID}, 0)
}

// HighPriorityAssigned returns a manager's high priority incidents, each
// with its history. History is fetched once per incident.
func (s *IncidentQueryService) HighPriorityAssigned(ctx context.Context, managerID uuid.UUID) ([]models.IncidentWithHistory, error) {
	high := models.PriorityHigh
	incidents, err := s.repo.List(ctx, repository.IncidentFilter{ManagerID: &managerID, Priority: &high}, 0)
	if err != nil {
		return nil, err
	}

	out := make([]models.IncidentWithHistory, 0, len(incidents))
	for _, inc := range incidents {
		history, err := s.repo.ListHistory(ctx, inc.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.IncidentWithHistory{Incident: inc, History: history})
	}
	return out, nil
}

// CompanyIncidents returns a company's newest incidents.
func (s *IncidentQueryService) CompanyIncidents(ctx context.Context, companyID uuid.UUID) ([]models.Incident, error) {
	return s.repo.List(ctx, repository.IncidentFilter{CompanyID: &companyID}, CompanyIncidentsLimit)
}

// UserIncidents returns every incident filed by a user, newest first.
func (s *IncidentQueryService) UserIncidents(ctx context.Context, userID uuid.UUID) ([]models.Incident, error) {
	return s.repo.List(ctx, repository.IncidentFilter{UserID: &userID}, 0)
}

// CallVolume counts a company's phone incidents in each 3-hour bucket of the
// current UTC day. Buckets are half-open.
func (s *IncidentQueryService) CallVolume(ctx context.Context, companyID uuid.UUID) (*models.CallVolume, error) {
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	phone := models.ChannelPhone

	counts := make([]int, CallVolumeBuckets)
	for i := range counts {
		from := midnight.Add(time.Duration(i) * CallVolumeBucket)
		before := from.Add(CallVolumeBucket)
		n, err := s.repo.Count(ctx, repository.IncidentFilter{
			CompanyID:     &companyID,
			Channel:       &phone,
			CreatedFrom:   &from,
			CreatedBefore: &before,
		})
		if err != nil {
			return nil, fmt.Errorf("call volume bucket %d: %w", i, err)
		}
		counts[i] = n
	}

	s.logger.Debug("call volume computed",
		slog.String("company_id", companyID.String()),
		slog.Time("day", midnight))

	return &models.CallVolume{HourlyCounts: counts}, nil
}

// DashboardStats returns a company's total phone incidents and total open
// incidents. The two counts are independent.
func (s *IncidentQueryService) DashboardStats(ctx context.Context, companyID uuid.UUID) (*models.DashboardStats, error) {
	phone := models.ChannelPhone
	open := models.StateOpen

	calls, err := s.repo.Count(ctx, repository.IncidentFilter{CompanyID: &companyID, Channel: &phone})
	if err != nil {
		return nil, err
	}
	openTickets, err := s.repo.Count(ctx, repository.IncidentFilter{CompanyID: &companyID, State: &open})
	if err != nil {
		return nil, err
	}
	return &models.DashboardStats{TotalCalls: calls, OpenTickets: openTickets}, nil
}

// ManagerDailyStats counts every closed incident assigned to a manager. The
// count is not limited to the current day.
func (s *IncidentQueryService) ManagerDailyStats(ctx context.Context, managerID uuid.UUID) (*models.ManagerDailyStats, error) {
	closed := models.StateClosed
	handled, err := s.repo.Count(ctx, repository.IncidentFilter{ManagerID: &managerID, State: &closed})
	if err != nil {
		return nil, err
	}
	return &models.ManagerDailyStats{
		IncidentsHandled:     handled,
		AvgResolutionTime:    PlaceholderAvgResolutionTime,
		CustomerSatisfaction: PlaceholderCustomerSatisfaction,
	}, nil
}
