package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swedavia-flights-service/internal/domain/entity"
	"swedavia-flights-service/internal/usecase"
	"swedavia-flights-service/pkg/logger"
)

type stubCallLogRepo struct{}

func (stubCallLogRepo) Load(ctx context.Context) ([]int64, error)  { return nil, nil }
func (stubCallLogRepo) Save(ctx context.Context, ts []int64) error { return nil }

type stubBoostRepo struct{}

func (stubBoostRepo) Load(ctx context.Context) (map[string]time.Time, error) { return nil, nil }
func (stubBoostRepo) Save(ctx context.Context, w map[string]time.Time) error { return nil }

type stubFetcher struct {
	flights []entity.Flight
}

func (s *stubFetcher) FlightsByDateRange(ctx context.Context, airport string, direction entity.FlightType, hoursBack, hoursAhead int) ([]entity.Flight, error) {
	return s.flights, nil
}

func (s *stubFetcher) UpdateKeys(primary, secondary string) {}

func (s *stubFetcher) ValidateConnection(ctx context.Context, airport string) error { return nil }

func newTestHandler(t *testing.T) (*Handler, *usecase.PollManager, func()) {
	t.Helper()
	log := logger.NewNopLogger()
	ctx, cancel := context.WithCancel(context.Background())

	ledger := usecase.NewQuotaLedger(ctx, stubCallLogRepo{}, log, nil)
	boost := usecase.NewBoostManager(ctx, stubBoostRepo{}, log, nil)
	scheduler := usecase.NewUpdateScheduler(log)
	fetcher := &stubFetcher{flights: []entity.Flight{
		{FlightID: "SK400", ArrivalTime: entity.FlightTimes{ScheduledUTC: "2026-03-01T14:00:00Z"}},
	}}
	manager := usecase.NewPollManager(fetcher, scheduler, boost, nil, log, nil)
	handler := NewHandler(manager, ledger, boost, usecase.NewKeyRotationChecker(), log)

	return handler, manager, cancel
}

func startManager(t *testing.T, manager *usecase.PollManager) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		manager.Wait()
	})

	subscriber := &entity.Subscriber{
		ID:         "sub-1",
		Airport:    "ARN",
		FlightType: entity.FlightTypeArrivals,
		HoursBack:  entity.DefaultHoursBack,
		HoursAhead: entity.DefaultHoursAhead,
	}
	manager.Start(ctx, []*entity.Subscriber{subscriber})

	require.Eventually(t, func() bool {
		_, ok := manager.Snapshot("ARN")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func newServer(t *testing.T, handler *Handler) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	handler.Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, out any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestGetFlights(t *testing.T) {
	handler, manager, cleanup := newTestHandler(t)
	defer cleanup()
	startManager(t, manager)
	server := newServer(t, handler)

	var snapshot entity.FlightSnapshot
	status := getJSON(t, server.URL+"/api/flights/arn", &snapshot)
	assert.Equal(t, http.StatusOK, status, "airport lookup is case insensitive")
	assert.Equal(t, "ARN", snapshot.Airport)
	assert.Equal(t, 1, snapshot.ArrivalCount)
}

func TestGetFlightsUnknownAirport(t *testing.T) {
	handler, _, cleanup := newTestHandler(t)
	defer cleanup()
	server := newServer(t, handler)

	var body map[string]string
	status := getJSON(t, server.URL+"/api/flights/GOT", &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "GOT")
}

func TestGetQuota(t *testing.T) {
	handler, _, cleanup := newTestHandler(t)
	defer cleanup()
	server := newServer(t, handler)

	var stats usecase.QuotaStats
	status := getJSON(t, server.URL+"/api/quota", &stats)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, usecase.CallLimit, stats.Limit)
	assert.Equal(t, 0, stats.TotalCalls30Days)
	assert.Equal(t, usecase.CallLimit, stats.RemainingCalls)
}

func TestGetSchedule(t *testing.T) {
	handler, manager, cleanup := newTestHandler(t)
	defer cleanup()
	startManager(t, manager)
	server := newServer(t, handler)

	var info usecase.ScheduleInfo
	status := getJSON(t, server.URL+"/api/schedule", &info)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, info.TotalSubscribers)
	assert.GreaterOrEqual(t, info.UpdateIntervalMinutes, 5)
}

func TestEnableBoostValidation(t *testing.T) {
	handler, _, cleanup := newTestHandler(t)
	defer cleanup()
	server := newServer(t, handler)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing airport", `{"duration_hours":2}`, "airport is required"},
		{"duration too long", `{"airport":"ARN","duration_hours":13}`, "between 1 and 12"},
		{"malformed body", `{`, "invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body map[string]string
			status := postJSON(t, server.URL+"/api/boost/enable", tc.body, &body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, body["error"], tc.want)
		})
	}
}

func TestEnableAndDisableBoost(t *testing.T) {
	handler, manager, cleanup := newTestHandler(t)
	defer cleanup()
	startManager(t, manager)
	server := newServer(t, handler)

	var result usecase.BoostResult
	status := postJSON(t, server.URL+"/api/boost/enable", `{"airport":"arn"}`, &result)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, result.DurationHours)

	var boosts map[string]usecase.BoostInfo
	status = getJSON(t, server.URL+"/api/boosts", &boosts)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, boosts, "sub-1")

	var disabled map[string]bool
	status = postJSON(t, server.URL+"/api/boost/disable", `{"airport":"ARN"}`, &disabled)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, disabled["was_active"])
}

func TestEnableBoostUnknownAirport(t *testing.T) {
	handler, manager, cleanup := newTestHandler(t)
	defer cleanup()
	startManager(t, manager)
	server := newServer(t, handler)

	var body map[string]string
	status := postJSON(t, server.URL+"/api/boost/enable", `{"airport":"XXX"}`, &body)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetKeyRotation(t *testing.T) {
	handler, _, cleanup := newTestHandler(t)
	defer cleanup()
	server := newServer(t, handler)

	var info usecase.KeyRotationInfo
	status := getJSON(t, server.URL+"/api/keys/rotation", &info)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, info.PrimaryKey.NextRotation)
	assert.NotEmpty(t, info.SecondaryKey.NextRotation)
}

func TestUpdateKeysRejectsEmptyBody(t *testing.T) {
	handler, _, cleanup := newTestHandler(t)
	defer cleanup()
	server := newServer(t, handler)

	var body map[string]string
	status := postJSON(t, server.URL+"/api/keys", `{}`, &body)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body["error"], "at least one API key")
}
