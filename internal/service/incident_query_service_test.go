package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/incidentquery/internal/logging"
	"github.com/goatkit/incidentquery/internal/models"
	"github.com/goatkit/incidentquery/internal/repository"
	"github.com/goatkit/incidentquery/internal/testing/testdb"
)

type listCall struct {
	filter repository.IncidentFilter
	limit  int
}

type fakeRepository struct {
	incidents    []models.Incident
	history      map[uuid.UUID][]models.IncidentHistory
	count        int
	err          error
	lists        []listCall
	counts       []repository.IncidentFilter
	historyCalls []uuid.UUID
}

func (f *fakeRepository) List(_ context.Context, filter repository.IncidentFilter, limit int) ([]models.Incident, error) {
	f.lists = append(f.lists, listCall{filter: filter, limit: limit})
	if f.err != nil {
		return nil, f.err
	}
	return f.incidents, nil
}

func (f *fakeRepository) Count(_ context.Context, filter repository.IncidentFilter) (int, error) {
	f.counts = append(f.counts, filter)
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Incident, error) {
	for _, inc := range f.incidents {
		if inc.ID == id {
			return &inc, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepository) ListHistory(_ context.Context, incidentID uuid.UUID) ([]models.IncidentHistory, error) {
	f.historyCalls = append(f.historyCalls, incidentID)
	if h, ok := f.history[incidentID]; ok {
		return h, nil
	}
	return []models.IncidentHistory{}, nil
}

func TestIncidentQueryService_Listings(t *testing.T) {
	userID, companyID, managerID := uuid.New(), uuid.New(), uuid.New()

	t.Run("UserCompanyIncidents", func(t *testing.T) {
		repo := &fakeRepository{}
		_, err := NewIncidentQueryService(repo).UserCompanyIncidents(context.Background(), userID, companyID)
		require.NoError(t, err)
		require.Len(t, repo.lists, 1)
		assert.Equal(t, userID, *repo.lists[0].filter.UserID)
		assert.Equal(t, companyID, *repo.lists[0].filter.CompanyID)
		assert.Equal(t, 20, repo.lists[0].limit)
	})

	t.Run("AllIncidents", func(t *testing.T) {
		repo := &fakeRepository{}
		_, err := NewIncidentQueryService(repo).AllIncidents(context.Background())
		require.NoError(t, err)
		assert.Equal(t, listCall{}, repo.lists[0])
	})

	t.Run("AssignedIncidents", func(t *testing.T) {
		repo := &fakeRepository{}
		_, err := NewIncidentQueryService(repo).AssignedIncidents(context.Background(), managerID)
		require.NoError(t, err)
		assert.Equal(t, managerID, *repo.lists[0].filter.ManagerID)
		assert.Nil(t, repo.lists[0].filter.Priority)
		assert.Zero(t, repo.lists[0].limit)
	})

	t.Run("CompanyIncidents", func(t *testing.T) {
		repo := &fakeRepository{}
		_, err := NewIncidentQueryService(repo).CompanyIncidents(context.Background(), companyID)
		require.NoError(t, err)
		assert.Equal(t, companyID, *repo.lists[0].filter.CompanyID)
		assert.Equal(t, 10, repo.lists[0].limit)
	})

	t.Run("UserIncidents", func(t *testing.T) {
		repo := &fakeRepository{}
		_, err := NewIncidentQueryService(repo).UserIncidents(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, userID, *repo.lists[0].filter.UserID)
		assert.Nil(t, repo.lists[0].filter.CompanyID)
		assert.Zero(t, repo.lists[0].limit)
	})
}

func TestIncidentQueryService_IncidentWithHistory(t *testing.T) {
	inc := models.Incident{ID: uuid.New(), State: models.StateOpen}
	entry := models.IncidentHistory{ID: uuid.New(), IncidentID: inc.ID, Description: "opened"}
	repo := &fakeRepository{
		incidents: []models.Incident{inc},
		history:   map[uuid.UUID][]models.IncidentHistory{inc.ID: {entry}},
	}
	svc := NewIncidentQueryService(repo)

	got, err := svc.IncidentWithHistory(context.Background(), inc.ID)
	require.NoError(t, err)
	assert.Equal(t, inc.ID, got.Incident.ID)
	assert.Equal(t, []models.IncidentHistory{entry}, got.History)

	_, err = svc.IncidentWithHistory(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIncidentQueryService_HighPriorityAssignedFetchesHistoryPerIncident(t *testing.T) {
	managerID := uuid.New()
	first := models.Incident{ID: uuid.New(), Priority: models.PriorityHigh}
	second := models.Incident{ID: uuid.New(), Priority: models.PriorityHigh}
	repo := &fakeRepository{
		incidents: []models.Incident{first, second},
		history: map[uuid.UUID][]models.IncidentHistory{
			second.ID: {{ID: uuid.New(), IncidentID: second.ID}},
		},
	}

	got, err := NewIncidentQueryService(repo).HighPriorityAssigned(context.Background(), managerID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, models.PriorityHigh, *repo.lists[0].filter.Priority)
	assert.Equal(t, managerID, *repo.lists[0].filter.ManagerID)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, repo.historyCalls)
	assert.NotNil(t, got[0].History)
	assert.Empty(t, got[0].History)
	assert.Len(t, got[1].History, 1)
}

func TestIncidentQueryService_CallVolumeBuckets(t *testing.T) {
	now := time.Date(2024, time.March, 4, 15, 30, 0, 0, time.UTC)
	repo := &fakeRepository{count: 1}
	svc := NewIncidentQueryService(repo, WithClock(func() time.Time { return now }), WithLogger(logging.Discard()))
	companyID := uuid.New()

	got, err := svc.CallVolume(context.Background(), companyID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 1, 1}, got.HourlyCounts)

	require.Len(t, repo.counts, 8)
	midnight := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	for i, f := range repo.counts {
		assert.Equal(t, models.ChannelPhone, *f.Channel)
		assert.Equal(t, companyID, *f.CompanyID)
		assert.True(t, f.CreatedFrom.Equal(midnight.Add(time.Duration(3*i)*time.Hour)))
		assert.True(t, f.CreatedBefore.Equal(midnight.Add(time.Duration(3*(i+1))*time.Hour)))
	}
}

func TestIncidentQueryService_CallVolumeUsesUTCDay(t *testing.T) {
	// 01:00 on the 5th in UTC+3 is still the 4th in UTC.
	local := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, time.March, 5, 1, 0, 0, 0, local)
	repo := &fakeRepository{}
	svc := NewIncidentQueryService(repo, WithClock(func() time.Time { return now }))

	_, err := svc.CallVolume(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, repo.counts[0].CreatedFrom.Equal(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)))
}

func TestIncidentQueryService_CallVolumeAgainstStore(t *testing.T) {
	db := testdb.New(t)
	now := time.Date(2024, time.March, 4, 18, 0, 0, 0, time.UTC)
	svc := NewIncidentQueryService(repository.NewIncidentRepository(db, nil), WithClock(func() time.Time { return now }))

	companyID := uuid.New()
	nineAM := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	const n = 4
	for i := 0; i < n; i++ {
		testdb.InsertIncident(t, db, testdb.Incident(uuid.New(), companyID, nineAM.Add(time.Duration(i*7)*time.Minute)))
	}
	chat := testdb.Incident(uuid.New(), companyID, nineAM.Add(10*time.Minute))
	chat.Channel = models.ChannelChat
	testdb.InsertIncident(t, db, chat)
	testdb.InsertIncident(t, db, testdb.Incident(uuid.New(), uuid.New(), nineAM))
	testdb.InsertIncident(t, db, testdb.Incident(uuid.New(), companyID, nineAM.Add(-24*time.Hour)))

	got, err := svc.CallVolume(context.Background(), companyID)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, n, 0, 0, 0, 0}, got.HourlyCounts)
}

func TestIncidentQueryService_DashboardStats(t *testing.T) {
	repo := &fakeRepository{count: 7}
	companyID := uuid.New()

	got, err := NewIncidentQueryService(repo).DashboardStats(context.Background(), companyID)
	require.NoError(t, err)
	assert.Equal(t, &models.DashboardStats{TotalCalls: 7, OpenTickets: 7}, got)

	require.Len(t, repo.counts, 2)
	assert.Equal(t, models.ChannelPhone, *repo.counts[0].Channel)
	assert.Nil(t, repo.counts[0].State)
	assert.Equal(t, models.StateOpen, *repo.counts[1].State)
	assert.Nil(t, repo.counts[1].Channel)
	assert.Nil(t, repo.counts[1].CreatedFrom)
}

func TestIncidentQueryService_ManagerDailyStats(t *testing.T) {
	repo := &fakeRepository{count: 12}
	managerID := uuid.New()

	got, err := NewIncidentQueryService(repo).ManagerDailyStats(context.Background(), managerID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.IncidentsHandled)
	assert.Equal(t, "15 mins", got.AvgResolutionTime)
	assert.Equal(t, 4.8, got.CustomerSatisfaction)

	assert.Equal(t, models.StateClosed, *repo.counts[0].State)
	assert.Equal(t, managerID, *repo.counts[0].ManagerID)
	assert.Nil(t, repo.counts[0].CreatedFrom, "closed count is all-time")
}

func TestIncidentQueryService_StoreErrors(t *testing.T) {
	storeErr := errors.New("relation \"incidents\" does not exist")
	repo := &fakeRepository{err: storeErr}
	svc := NewIncidentQueryService(repo)
	ctx := context.Background()

	_, err := svc.CallVolume(ctx, uuid.New())
	assert.ErrorIs(t, err, storeErr)
	_, err = svc.DashboardStats(ctx, uuid.New())
	assert.ErrorIs(t, err, storeErr)
	_, err = svc.ManagerDailyStats(ctx, uuid.New())
	assert.ErrorIs(t, err, storeErr)
	_, err = svc.HighPriorityAssigned(ctx, uuid.New())
	assert.ErrorIs(t, err, storeErr)
}
