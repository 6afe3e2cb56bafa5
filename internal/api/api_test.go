package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/api"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/editor"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/metrics"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/notify"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository/memory"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t       *testing.T
	router  *gin.Engine
	metrics *metrics.Manager
	reg     *prometheus.Registry
}

func newTestServer(t *testing.T, limiter api.RequestRateLimiter) *testServer {
	t.Helper()
	store := memory.NewStore()
	m, reg := metrics.NewTestManagerAndRegistry()
	content := service.NewContent(service.ContentParams{
		Repos: service.Repos{
			Tx:        store,
			Programs:  store.Programs(),
			Weeks:     store.Weeks(),
			Workouts:  store.Workouts(),
			Exercises: store.Exercises(),
			Sets:      store.Sets(),
			Circuits:  store.Circuits(),
			Purchases: store.Purchases(),
		},
		Metrics: m,
	})
	svc := api.Services{
		Auth:      service.NewAuthService(store.Profiles(), service.NewMemoryRevocations(), "test-secret", time.Hour),
		Programs:  service.NewProgramService(content),
		Weeks:     service.NewWeekService(content),
		Workouts:  service.NewWorkoutService(content),
		Exercises: service.NewExerciseService(content),
		Sets:      service.NewSetService(content),
		Circuits:  service.NewCircuitService(content),
		Library:   service.NewLibraryService(content),
		Clubs: service.NewClubService(service.ClubRepos{
			Clubs:    store.Clubs(),
			Events:   store.ClubEvents(),
			Content:  store.ClubContent(),
			Commerce: store.ClubCommerce(),
			Shares:   store.ClubShares(),
			Profiles: store.Profiles(),
		}, content, notify.LogSender{}),
		Media:     service.NewMediaService(content, storage.Disabled{}, time.Minute),
		Analytics: service.NewAnalyticsService(content, store.WorkoutLogs()),
	}
	svc.Editor = editor.NewManager(editor.Services{
		Programs:  svc.Programs,
		Weeks:     svc.Weeks,
		Workouts:  svc.Workouts,
		Exercises: svc.Exercises,
		Sets:      svc.Sets,
		Circuits:  svc.Circuits,
		Library:   svc.Library,
	}, m, time.Minute)

	router := gin.New()
	api.SetupRoutes(router, svc, api.RouterOptions{
		Metrics:            m,
		Gatherer:           reg,
		Limiter:            limiter,
		RateLimitPerMinute: 10,
	})
	return &testServer{t: t, router: router, metrics: m, reg: reg}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// do sends a JSON request. body may be nil, a string (sent as is) or any
// value that is marshalled.
func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 && strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr, env
}

// decode unmarshals the data of a successful response.
func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// signUp registers a user and returns a token.
func (s *testServer) signUp(name, email string) string {
	s.t.Helper()
	rr, _ := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "correct-horse",
	})
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())

	rr, env := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "correct-horse",
	})
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[api.LoginResponse](s.t, env).Token
}

func (s *testServer) createProgram(token, name string) domain.WorkoutProgram {
	s.t.Helper()
	rr, env := s.do(http.MethodPost, "/api/v1/programs", token, map[string]string{"name": name})
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[domain.WorkoutProgram](s.t, env)
}

func TestPingAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	rr, _ := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "pong")

	rr, _ = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "fitplan_test_server_request")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CounterRequests.WithLabelValues("GET", "/ping", "200")))
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signUp("Dana", "dana@example.com")

	rr, env := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Dana again", "email": "dana@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.NotEmpty(t, env.Error)

	rr, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "dana@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, env = s.do(http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Dana", decode[domain.Profile](t, env).Name)

	rr, env = s.do(http.MethodPatch, "/api/v1/me", token, map[string]string{"bio": "coach"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "coach", decode[domain.Profile](t, env).Bio)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			s.router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}

	rr, _ = s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr, _ = s.do(http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProgramEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	coach := s.signUp("Coach", "coach@example.com")
	other := s.signUp("Other", "other@example.com")

	program := s.createProgram(coach, "Hypertrophy")
	require.NotEmpty(t, program.Weeks)

	rr, _ := s.do(http.MethodPost, "/api/v1/programs", coach, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.do(http.MethodGet, "/api/v1/programs/"+program.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = s.do(http.MethodGet, "/api/v1/programs/missing", coach, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, env := s.do(http.MethodPost, "/api/v1/programs/"+program.ID+"/weeks", coach, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	week := decode[domain.WorkoutWeek](t, env)

	rr, env = s.do(http.MethodPost, "/api/v1/weeks/"+week.ID+"/workouts", coach, map[string]any{"name": "Pull", "day": 2})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	workout := decode[domain.Workout](t, env)

	rr, env = s.do(http.MethodPost, "/api/v1/workouts/"+workout.ID+"/exercises", coach, domain.NewExercise{Name: "Row"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	ex := decode[domain.Exercise](t, env)
	require.Len(t, ex.Sets, 1)

	// the only set of an exercise cannot be deleted
	rr, _ = s.do(http.MethodDelete, "/api/v1/sets/"+ex.Sets[0].ID, coach, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.do(http.MethodPut, "/api/v1/programs/"+program.ID+"/price", coach, map[string]any{"price": 19.99, "isPurchasable": true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr, _ = s.do(http.MethodPost, "/api/v1/programs/"+program.ID+"/purchase", other, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr, _ = s.do(http.MethodPost, "/api/v1/programs/"+program.ID+"/purchase", other, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, env = s.do(http.MethodGet, "/api/v1/programs/"+program.ID+"/purchase", other, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[api.PurchasedResponse](t, env).Purchased)

	rr, _ = s.do(http.MethodDelete, "/api/v1/programs/"+program.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr, _ = s.do(http.MethodDelete, "/api/v1/programs/"+program.ID, coach, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr, _ = s.do(http.MethodGet, "/api/v1/programs/"+program.ID, coach, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAddWorkoutToProgramEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	coach := s.signUp("Coach", "coach@example.com")
	other := s.signUp("Other", "other@example.com")
	program := s.createProgram(coach, "Hypertrophy")

	rr, _ := s.do(http.MethodDelete, "/api/v1/weeks/"+program.Weeks[0].ID, coach, nil)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	// no body is fine, the workout gets defaults
	rr, env := s.do(http.MethodPost, "/api/v1/programs/"+program.ID+"/workouts", coach, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	workout := decode[domain.Workout](t, env)
	assert.Equal(t, 1, workout.Day)

	rr, env = s.do(http.MethodGet, "/api/v1/programs/"+program.ID, coach, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[domain.WorkoutProgram](t, env)
	require.Len(t, got.Weeks, 1)
	assert.Equal(t, workout.WeekID, got.Weeks[0].ID)
	assert.Equal(t, []string{workout.ID}, got.Weeks[0].Workouts)

	rr, _ = s.do(http.MethodPost, "/api/v1/programs/"+program.ID+"/workouts", other, map[string]any{"name": "Sneaky"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestEditorEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	coach := s.signUp("Coach", "coach@example.com")
	other := s.signUp("Other", "other@example.com")
	program := s.createProgram(coach, "Hypertrophy")
	base := "/api/v1/editor/" + program.ID

	rr, env := s.do(http.MethodGet, base, coach, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	snap := decode[editor.Snapshot](t, env)
	assert.Equal(t, program.Weeks[0].ID, snap.Selection.WeekID)

	rr, _ = s.do(http.MethodGet, base, other, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	workoutID := snap.Program.Workouts[0].ID
	rr, env = s.do(http.MethodPost, base+"/actions", coach, map[string]any{
		"type":      "addExercise",
		"workoutId": workoutID,
		"exercise":  map[string]string{"name": "Squat"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	snap = decode[editor.Snapshot](t, env)
	assert.Equal(t, workoutID, snap.Selection.WorkoutID)
	assert.NotEmpty(t, snap.Selection.ExerciseID)
	assert.Equal(t, domain.PhasePopulated, snap.Phases[workoutID])
	assert.EqualValues(t, 1, snap.Version)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "unknown type", body: map[string]any{"type": "explode"}},
		{name: "missing payload", body: map[string]any{"type": "addExercise", "workoutId": workoutID}},
		{name: "unknown workout", body: map[string]any{"type": "selectWorkout", "workoutId": "nope"}},
		{name: "no type", body: map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := s.do(http.MethodPost, base+"/actions", coach, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.NotEmpty(t, env.Error)
		})
	}

	rr, env = s.do(http.MethodPost, base+"/actions", coach, map[string]any{"type": "deleteWorkout", "workoutId": workoutID})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	snap = decode[editor.Snapshot](t, env)
	assert.Empty(t, snap.Selection.WorkoutID)
	assert.Equal(t, domain.PhaseDeleted, snap.Phases[workoutID])

	rr, _ = s.do(http.MethodDelete, base, coach, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestClubEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	coach := s.signUp("Coach", "coach@example.com")
	member := s.signUp("Member", "member@example.com")
	program := s.createProgram(coach, "Club Block")

	rr, env := s.do(http.MethodPost, "/api/v1/clubs", coach, domain.NewClub{Name: "Early Lifters"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	club := decode[domain.Club](t, env)
	clubPath := "/api/v1/clubs/" + club.ID

	rr, _ = s.do(http.MethodPost, clubPath+"/members", member, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr, env = s.do(http.MethodGet, "/api/v1/clubs/mine", member, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]domain.Club](t, env), 1)

	share := map[string]string{"contentId": program.Workouts[0].ID}
	rr, _ = s.do(http.MethodPost, clubPath+"/shared/workout", coach, share)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr, env = s.do(http.MethodPost, clubPath+"/shared/workout", coach, share)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, env.Error, "already shared")

	rr, _ = s.do(http.MethodPost, clubPath+"/shared/playlist", coach, share)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, env = s.do(http.MethodPost, clubPath+"/messages", member, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	msg := decode[domain.ClubMessage](t, env)

	rr, _ = s.do(http.MethodPut, "/api/v1/messages/"+msg.ID+"/pin", member, map[string]bool{"pinned": true})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr, env = s.do(http.MethodPut, "/api/v1/messages/"+msg.ID+"/pin", coach, map[string]bool{"pinned": true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, decode[domain.ClubMessage](t, env).IsPinned)

	rr, _ = s.do(http.MethodDelete, clubPath+"/members/me", coach, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr, _ = s.do(http.MethodDelete, clubPath+"/members/me", member, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestLibraryImportAndSync(t *testing.T) {
	s := newTestServer(t, nil)
	coach := s.signUp("Coach", "coach@example.com")

	doc := `
name = "Strength Block"
[[week]]
name = "Week 1"
  [[week.workout]]
  name = "Push"
  day = 1
    [[week.workout.exercise]]
    name = "Bench Press"
    sets = 3
    reps = "8"
`
	rr, env := s.do(http.MethodPost, "/api/v1/library/import", coach, doc)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	program := decode[domain.WorkoutProgram](t, env)
	require.Len(t, program.Workouts, 1)
	require.Len(t, program.Workouts[0].Exercises, 1)
	assert.Len(t, program.Workouts[0].Exercises[0].Sets, 3)

	rr, _ = s.do(http.MethodPost, "/api/v1/library/import", coach, "name = ")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	workoutID := program.Workouts[0].ID
	rr, _ = s.do(http.MethodPost, "/api/v1/library/workouts", coach, service.SaveWorkoutRequest{WorkoutID: workoutID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr, env = s.do(http.MethodGet, "/api/v1/library/workouts", coach, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]domain.Workout](t, env), 1)

	completed := time.Now().UTC().Add(-time.Hour)
	rr, _ = s.do(http.MethodPost, "/api/v2/sync/logs", coach, map[string]any{
		"workoutId": workoutID, "durationMinutes": 45, "completedAt": completed,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr, env = s.do(http.MethodGet, "/api/v2/sync/analytics", coach, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	summary := decode[service.Summary](t, env)
	assert.Equal(t, 1, summary.TotalWorkouts)
	assert.Equal(t, 45, summary.TotalMinutes)
	require.NotEmpty(t, summary.MostUsedExercises)
	assert.Equal(t, "Bench Press", summary.MostUsedExercises[0].Name)

	rr, _ = s.do(http.MethodGet, "/api/v2/sync/analytics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMediaWithoutStorage(t *testing.T) {
	s := newTestServer(t, nil)
	coach := s.signUp("Coach", "coach@example.com")
	program := s.createProgram(coach, "Hypertrophy")

	rr, env := s.do(http.MethodPost, "/api/v1/workouts/"+program.Workouts[0].ID+"/exercises", coach, domain.NewExercise{Name: "Row"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	ex := decode[domain.Exercise](t, env)
	path := "/api/v1/exercises/" + ex.ID + "/media"

	rr, _ = s.do(http.MethodPost, path+"/upload-url", coach, map[string]string{"contentType": "image/png"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// storage failures are not leaked to the client
	rr, env = s.do(http.MethodPost, path+"/upload-url", coach, map[string]string{"contentType": "video/mp4"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to create upload URL", env.Error)

	rr, _ = s.do(http.MethodGet, path, coach, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

type fakeLimiter struct {
	allowed bool
	keys    []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	f.keys = append(f.keys, key)
	res := &redis_rate.Result{Limit: limit, RetryAfter: 30 * time.Second}
	if f.allowed {
		res.Allowed = 1
		res.RetryAfter = -1
	}
	return res, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	s := newTestServer(t, limiter)
	token := s.signUp("Dana", "dana@example.com")

	rr, _ := s.do(http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, limiter.keys)
	assert.True(t, strings.HasPrefix(limiter.keys[0], "ip:"))
	assert.True(t, strings.HasPrefix(limiter.keys[len(limiter.keys)-1], "user:"))

	limiter.allowed = false
	rr, env := s.do(http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "31", rr.Header().Get("Retry-After"))
	assert.Contains(t, env.Error, "retry after")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CounterRateLimited))

	// ping is not limited
	rr, _ = s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPanicRecovery(t *testing.T) {
	s := newTestServer(t, nil)
	s.router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	rr, env := s.do(http.MethodGet, "/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", env.Error)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CounterHandleRequestPanic))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CounterRequests.WithLabelValues("GET", "/boom", "500")))
}
