package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pochivni/planner/api"
	"github.com/pochivni/planner/holidays"
	"github.com/pochivni/planner/remote"
	"github.com/pochivni/planner/store/memory"
	"github.com/pochivni/planner/vacation"
)

const secret = "remote-test-secret-0123"

func newServer(t *testing.T) (*httptest.Server, *api.Authenticator, *memory.Records) {
	t.Helper()
	planner, err := holidays.NewPlanner(holidays.NewComputed(), "", nil, nil)
	require.NoError(t, err)
	records := memory.NewRecords()
	auth := api.NewAuthenticator(secret, time.Hour)
	srv := httptest.NewServer(api.NewRouter(api.NewHandler(planner, records, nil), auth, api.RouterOptions{}))
	t.Cleanup(srv.Close)
	return srv, auth, records
}

func clientFor(t *testing.T, srv *httptest.Server, auth *api.Authenticator, user string) *remote.Client {
	t.Helper()
	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	return remote.New(srv.URL, token, nil)
}

func TestClient_LoadMissingIsNil(t *testing.T) {
	srv, auth, _ := newServer(t)

	got, err := clientFor(t, srv, auth, "u1").LoadYear(context.Background(), "u1", 2026)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClient_SaveThenLoad(t *testing.T) {
	srv, auth, records := newServer(t)
	c := clientFor(t, srv, auth, "u1")
	ctx := context.Background()

	// WHEN
	err := c.SaveYear(ctx, "u1", 2026, vacation.Data{Version: 1, TotalDays: 21, VacationDates: []string{"2026-07-02", "2026-07-01"}})
	require.NoError(t, err)

	// THEN
	got, err := c.LoadYear(ctx, "u1", 2026)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 21, got.TotalDays)
	assert.Equal(t, []string{"2026-07-01", "2026-07-02"}, got.VacationDates)
	assert.Equal(t, 1, records.Len())
}

func TestClient_Unauthenticated(t *testing.T) {
	srv, _, _ := newServer(t)
	c := remote.New(srv.URL, "", nil)

	_, err := c.LoadYear(context.Background(), "u1", 2026)

	assert.ErrorIs(t, err, vacation.ErrNotAuthenticated)
	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.NotEmpty(t, se.Message)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := remote.New(srv.URL, "tok", nil)

	_, err := c.LoadYear(context.Background(), "u1", 2026)
	assert.ErrorIs(t, err, remote.ErrUnexpectedStatus)

	err = c.SaveYear(context.Background(), "u1", 2026, vacation.Default())
	assert.ErrorIs(t, err, remote.ErrUnexpectedStatus)
}

func TestClient_CorruptBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{"))
	}))
	defer srv.Close()

	_, err := remote.New(srv.URL, "tok", nil).LoadYear(context.Background(), "u1", 2026)
	assert.True(t, errors.Is(err, vacation.ErrCorruptRecord))
}

func TestClient_DrivesSessionMigration(t *testing.T) {
	// GIVEN: a device record and a server that already knows the user
	srv, auth, records := newServer(t)
	ctx := context.Background()
	require.NoError(t, records.SaveYear(ctx, "u1", 2026, vacation.Data{
		Version: 1, TotalDays: 20, VacationDates: []string{"2026-03-02"},
	}))

	kv := memory.NewKV()
	local := vacation.NewLocalStore(kv)
	require.NoError(t, local.Save(ctx, vacation.Data{Version: 1, TotalDays: 20, VacationDates: []string{"2026-05-04"}}))

	s := vacation.NewSession(ctx, vacation.SessionConfig{
		Local:        local,
		Flags:        vacation.NewFlagStore(kv),
		Cloud:        clientFor(t, srv, auth, "u1"),
		DebounceWait: time.Millisecond,
	}, 2026)
	defer s.Close()

	// WHEN
	result, err := s.SignIn(ctx, "u1")

	// THEN: the two records disagree
	require.NoError(t, err)
	conflict, ok := result.(vacation.Conflict)
	require.True(t, ok, "got %T", result)
	assert.Equal(t, []string{"2026-03-02", "2026-05-04"}, conflict.MergedDates)

	// WHEN: merged
	_, err = s.Resolve(ctx, vacation.ResolveMerge)
	require.NoError(t, err)

	// THEN: the server has the union
	stored, err := records.LoadYear(ctx, "u1", 2026)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-02", "2026-05-04"}, stored.VacationDates)
	assert.Equal(t, vacation.StateReconciled, s.State())
}
