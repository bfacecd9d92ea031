package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/goatkit/incidentquery/internal/database"
	"github.com/goatkit/incidentquery/internal/models"
)

// ErrNotFound is returned when a requested incident does not exist.
var ErrNotFound = errors.New("incident not found")

// incidentColumns never includes file_data; attachments are not served.
const incidentColumns = `id, description, state, channel, priority, creation_date,
	user_id, company_id, manager_id, file_name`

// IncidentRepository defines the read operations over incidents and their
// history.
type IncidentRepository interface {
	List(ctx context.Context, filter IncidentFilter, limit int) ([]models.Incident, error)
	Count(ctx context.Context, filter IncidentFilter) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListHistory(ctx context.Context, incidentID uuid.UUID) ([]models.IncidentHistory, error)
}

// IncidentFilter narrows incident lookups. Nil fields are not filtered on;
// set fields are combined with AND. CreatedFrom is inclusive and
// CreatedBefore exclusive.
type IncidentFilter struct {
	UserID        *uuid.UUID
	CompanyID     *uuid.UUID
	ManagerID     *uuid.UUID
	State         *models.State
	Channel       *models.Channel
	Priority      *models.Priority
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
}

// creationDate is the SQL expression incidents are ordered and windowed by.
// SQLite keeps timestamps as text, and a stored value without an offset sorts
// below the same instant bound with one, so it compares on julianday there.
type creationDate struct {
	column string
	bind   string
}

func creationDateFor(driver string) creationDate {
	if driver == database.DriverSQLite {
		return creationDate{column: "julianday(creation_date)", bind: "julianday(?)"}
	}
	return creationDate{column: "creation_date", bind: "?"}
}

func (f IncidentFilter) whereClause(date creationDate) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if f.UserID != nil {
		add("user_id = ?", *f.UserID)
	}
	if f.CompanyID != nil {
		add("company_id = ?", *f.CompanyID)
	}
	if f.ManagerID != nil {
		add("manager_id = ?", *f.ManagerID)
	}
	if f.State != nil {
		add("state = ?", *f.State)
	}
	if f.Channel != nil {
		add("channel = ?", *f.Channel)
	}
	if f.Priority != nil {
		add("priority = ?", *f.Priority)
	}
	if f.CreatedFrom != nil {
		add(date.column+" >= "+date.bind, f.CreatedFrom.UTC())
	}
	if f.CreatedBefore != nil {
		add(date.column+" < "+date.bind, f.CreatedBefore.UTC())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// IncidentSQLRepository reads the incidents and incident_history tables.
type IncidentSQLRepository struct {
	db      *sqlx.DB
	date    creationDate
	metrics *database.QueryMetrics
}

// NewIncidentRepository creates a new incident repository. metrics may be nil.
func NewIncidentRepository(db *sqlx.DB, metrics *database.QueryMetrics) *IncidentSQLRepository {
	return &IncidentSQLRepository{db: db, date: creationDateFor(db.DriverName()), metrics: metrics}
}

// List returns incidents matching filter, newest first. A limit of zero or
// less returns every match.
func (r *IncidentSQLRepository) List(ctx context.Context, filter IncidentFilter, limit int) (incidents []models.Incident, err error) {
	start := time.Now()
	defer func() { r.metrics.Observe("incidents.list", start, err) }()

	where, args := filter.whereClause(r.date)
	query := "SELECT " + incidentColumns + " FROM incidents" + where + " ORDER BY " + r.date.column + " DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	incidents = []models.Incident{}
	if err = r.db.SelectContext(ctx, &incidents, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	return incidents, nil
}

// Count returns the number of incidents matching filter.
func (r *IncidentSQLRepository) Count(ctx context.Context, filter IncidentFilter) (count int, err error) {
	start := time.Now()
	defer func() { r.metrics.Observe("incidents.count", start, err) }()

	where, args := filter.whereClause(r.date)
	query := "SELECT COUNT(*) FROM incidents" + where

	if err = r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count incidents: %w", err)
	}
	return count, nil
}

// GetByID returns the incident with the given id, or ErrNotFound.
func (r *IncidentSQLRepository) GetByID(ctx context.Context, id uuid.UUID) (inc *models.Incident, err error) {
	start := time.Now()
	defer func() {
		observed := err
		if errors.Is(err, ErrNotFound) {
			observed = nil
		}
		r.metrics.Observe("incidents.get", start, observed)
	}()

	query := r.db.Rebind("SELECT " + incidentColumns + " FROM incidents WHERE id = ?")

	var row models.Incident
	if err = r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}
	return &row, nil
}

// ListHistory returns the history of an incident, oldest first.
func (r *IncidentSQLRepository) ListHistory(ctx context.Context, incidentID uuid.UUID) (history []models.IncidentHistory, err error) {
	start := time.Now()
	defer func() { r.metrics.Observe("incident_history.list", start, err) }()

	query := r.db.Rebind(`
		SELECT id, incident_id, description, created_at
		FROM incident_history
		WHERE incident_id = ?
		ORDER BY created_at ASC`)

	history = []models.IncidentHistory{}
	if err = r.db.SelectContext(ctx, &history, query, incidentID); err != nil {
		return nil, fmt.Errorf("failed to list incident history: %w", err)
	}
	return history, nil
}
