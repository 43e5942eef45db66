package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

type fakeStore struct {
	mu        sync.Mutex
	readings  []domain.Reading
	insertErr error
}

func (f *fakeStore) InsertReading(_ context.Context, rd *domain.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.readings = append(f.readings, *rd)
	return nil
}

func (f *fakeStore) RecentReadings(_ context.Context, homeID string, limit int) ([]domain.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reading
	for _, r := range f.readings {
		if r.HomeID == homeID {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeStore) CountFaults(_ context.Context, homeID string) (int, error) {
	n := 0
	for _, r := range f.readings {
		if r.HomeID == homeID && r.IsFault() {
			n++
		}
	}
	return n, nil
}

type fakeMirror struct {
	got []domain.Reading
	err error
}

func (m *fakeMirror) PutReading(_ context.Context, r domain.Reading) error {
	m.got = append(m.got, r)
	return m.err
}

type fakeAlerter struct {
	faults   []domain.Reading
	subjects []string
}

func (a *fakeAlerter) SendAlert(_ context.Context, subject, _ string) error {
	a.subjects = append(a.subjects, subject)
	return nil
}

func (a *fakeAlerter) SendFaultAlert(_ context.Context, r domain.Reading) error {
	a.faults = append(a.faults, r)
	return nil
}

type fakeReports struct {
	key  string
	data []byte
	keys []string
}

func (f *fakeReports) ListReports(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for _, k := range f.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeReports) UploadReport(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.key, f.data = key, data
	f.keys = append(f.keys, key)
	return "https://example.invalid/" + key, nil
}

func payload(t *testing.T, r domain.Reading) []byte {
	t.Helper()
	b, err := json.Marshal(r)
	require.NoError(t, err)
	return b
}

func at(sec int) time.Time {
	return time.Date(2024, 3, 14, 20, 0, sec, 0, time.UTC)
}

func TestIngest_StoresMirrorsAndAlerts(t *testing.T) {
	store := &fakeStore{}
	mirror := &fakeMirror{err: errors.New("throttled")}
	alerter := &fakeAlerter{}
	svcs := New(store, WithMirror(mirror), WithAlerter(alerter))
	ctx := context.Background()

	normal := domain.Reading{ID: "a", HomeID: "home-001", GeneratedAt: at(0), TotalLoad: 1.9, FaultStatus: domain.StatusNormal}
	fault := domain.Reading{ID: "b", HomeID: "home-001", GeneratedAt: at(2), TotalLoad: 5.9, FaultStatus: domain.StatusFault}

	require.NoError(t, svcs.Readings.Ingest(ctx, "energy/readings", payload(t, normal)))
	require.NoError(t, svcs.Readings.Ingest(ctx, "energy/readings", payload(t, fault)))

	assert.Len(t, store.readings, 2)
	assert.Len(t, mirror.got, 2)
	require.Len(t, alerter.faults, 1)
	assert.Equal(t, "b", alerter.faults[0].ID)
}

func TestIngest_FillsMissingFields(t *testing.T) {
	store := &fakeStore{}
	svcs := New(store)
	svcs.Readings.now = func() time.Time { return at(9) }

	require.NoError(t, svcs.Readings.Ingest(context.Background(), "t", []byte(`{"home_id":"home-001","total_load":0.45}`)))
	require.Len(t, store.readings, 1)
	got := store.readings[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, at(9), got.GeneratedAt)
	assert.Equal(t, "20:00:09", got.Timestamp)
	assert.Equal(t, domain.StatusNormal, got.FaultStatus)
}

func TestIngest_Errors(t *testing.T) {
	svcs := New(&fakeStore{insertErr: errors.New("db down")})
	ctx := context.Background()

	assert.Error(t, svcs.Readings.Ingest(ctx, "t", []byte("{")))
	assert.EqualError(t, svcs.Readings.Ingest(ctx, "t", []byte(`{"id":"x"}`)), "db down")
}

func TestReportGenerate(t *testing.T) {
	store := &fakeStore{}
	uploads := &fakeReports{}
	svcs := New(store, WithReportStore(uploads))
	ctx := context.Background()

	_, err := svcs.Reports.Generate(ctx, "home-001", 10, at(0))
	assert.ErrorIs(t, err, ErrNoReadings)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.InsertReading(ctx, &domain.Reading{ID: string(rune('a' + i)), HomeID: "home-001", GeneratedAt: at(i), FaultStatus: domain.StatusNormal}))
	}
	rep, err := svcs.Reports.Generate(ctx, "home-001", 2, at(30))
	require.NoError(t, err)

	assert.Equal(t, "reports/home-001/2024-03-14/200030.csv", rep.Key)
	assert.Equal(t, 2, rep.Rows)
	assert.True(t, strings.HasSuffix(rep.URL, rep.Key))
	assert.Equal(t, 3, strings.Count(string(uploads.data), "\n"))

	keys, err := svcs.Reports.List(ctx, "home-001")
	require.NoError(t, err)
	assert.Equal(t, []string{rep.Key}, keys)
	keys, err = svcs.Reports.List(ctx, "home-002")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMaintenancePredict(t *testing.T) {
	ctx := context.Background()
	m := NewMaintenanceService(nil)

	_, err := m.Predict(ctx, "home-001", []domain.Reading{{GeneratedAt: at(0)}}, at(0))
	assert.ErrorIs(t, err, ErrNotEnoughHistory)
	_, err = m.Predict(ctx, "home-001", []domain.Reading{{GeneratedAt: at(0)}, {GeneratedAt: at(0)}}, at(0))
	assert.ErrorIs(t, err, ErrNotEnoughHistory)

	healthy := []domain.Reading{
		{GeneratedAt: at(0), FaultStatus: domain.StatusNormal},
		{GeneratedAt: at(2), FaultStatus: domain.StatusNormal},
	}
	p, err := m.Predict(ctx, "home-001", healthy, at(2))
	require.NoError(t, err)
	assert.Zero(t, p.FaultsObserved)
	assert.Zero(t, p.FaultRatePerYear)
	assert.Equal(t, 100.0, p.CurrentHealth)
}

func TestMaintenancePredict_AlertsOnPoorHealth(t *testing.T) {
	alerter := &fakeAlerter{}
	m := NewMaintenanceService(alerter)
	readings := []domain.Reading{
		{GeneratedAt: at(0), FaultStatus: domain.StatusFault},
		{GeneratedAt: at(2), FaultStatus: domain.StatusFault},
		{GeneratedAt: at(4), FaultStatus: domain.StatusNormal},
	}
	p, err := m.Predict(context.Background(), "home-001", readings, at(4))
	require.NoError(t, err)

	assert.Equal(t, 2, p.FaultsObserved)
	assert.InDelta(t, 33.33, p.CurrentHealth, 0.01)
	assert.True(t, strings.HasPrefix(p.Recommendation, "URGENT"))
	assert.Equal(t, []string{"Predictive Maintenance Alert"}, alerter.subjects)
}

func TestRecommendation(t *testing.T) {
	assert.Equal(t, "Appliances operating normally", recommendation(0, 100))
	assert.Equal(t, "Plan maintenance within next 90 days", recommendation(0.2, 100))
	assert.Equal(t, "Schedule maintenance within next 30 days", recommendation(0, 70))
	assert.True(t, strings.HasPrefix(recommendation(0.9, 100), "URGENT"))
}
