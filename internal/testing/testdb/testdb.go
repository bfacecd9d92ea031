// Package testdb provides a migrated in-memory SQLite database and fixture
// helpers for tests.
package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/goatkit/incidentquery/internal/config"
	"github.com/goatkit/incidentquery/internal/database"
	"github.com/goatkit/incidentquery/internal/logging"
	"github.com/goatkit/incidentquery/internal/models"
)

// New opens a private in-memory database with all migrations applied. It is
// closed when the test ends.
func New(t testing.TB) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.DatabaseConfig{Driver: database.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(ctx, db, logging.Discard()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// Incident returns a phone, open, medium priority incident for the given
// user and company created at createdAt. Callers adjust fields as needed.
func Incident(userID, companyID uuid.UUID, createdAt time.Time) models.Incident {
	inc, err := models.NewIncident(uuid.New(), "Caller reports an outage",
		string(models.StateOpen), string(models.ChannelPhone), string(models.PriorityMedium),
		createdAt.UTC(), userID, companyID, nil)
	if err != nil {
		panic(err)
	}
	return *inc
}

// InsertIncident stores inc.
func InsertIncident(t testing.TB, db *sqlx.DB, inc models.Incident) {
	t.Helper()
	_, err := db.NamedExec(`
		INSERT INTO incidents (id, description, state, channel, priority, creation_date,
			user_id, company_id, manager_id, file_data, file_name)
		VALUES (:id, :description, :state, :channel, :priority, :creation_date,
			:user_id, :company_id, :manager_id, :file_data, :file_name)`, inc)
	if err != nil {
		t.Fatalf("failed to insert incident: %v", err)
	}
}

// InsertHistory appends a history entry to an incident and returns it.
func InsertHistory(t testing.TB, db *sqlx.DB, incidentID uuid.UUID, description string, createdAt time.Time) models.IncidentHistory {
	t.Helper()
	h := models.IncidentHistory{
		ID:          uuid.New(),
		IncidentID:  incidentID,
		Description: description,
		CreatedAt:   createdAt.UTC(),
	}
	_, err := db.NamedExec(`
		INSERT INTO incident_history (id, incident_id, description, created_at)
		VALUES (:id, :incident_id, :description, :created_at)`, h)
	if err != nil {
		t.Fatalf("failed to insert incident history: %v", err)
	}
	return h
}
