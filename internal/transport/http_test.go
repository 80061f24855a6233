package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vertexhq/vertex/internal/domain/account"
	"github.com/vertexhq/vertex/internal/domain/assignment"
	"github.com/vertexhq/vertex/internal/domain/block"
	"github.com/vertexhq/vertex/internal/snapshot"
	"github.com/vertexhq/vertex/internal/transport"
)

type memAccountRepo struct {
	acct *account.Account
}

func (r *memAccountRepo) Get(_ context.Context) (*account.Account, error) {
	if r.acct == nil {
		return nil, account.ErrNoAccount
	}
	return r.acct, nil
}

func (r *memAccountRepo) Save(_ context.Context, acct *account.Account) error {
	r.acct = acct
	return nil
}

type testServer struct {
	router      http.Handler
	blocks      *block.Store
	assignments *assignment.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	snaps := snapshot.NewMemory()
	blocks := block.NewStore(ctx, snaps, nil, nil)
	assignments := assignment.NewStore(ctx, snaps, blocks, nil, nil)
	accounts := account.NewService(&memAccountRepo{}, nil)

	return &testServer{
		router:      transport.NewRouter(accounts, blocks, assignments, nil, nil),
		blocks:      blocks,
		assignments: assignments,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// signup creates the account and returns the session cookie.
func (ts *testServer) signup(t *testing.T) *http.Cookie {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/signup", map[string]string{
		"email":    "me@example.com",
		"password": "secret",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == transport.SessionCookie {
			require.NotEmpty(t, c.Value)
			return c
		}
	}
	t.Fatal("signup did not set a session cookie")
	return nil
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestSignupStatuses(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/signup", map[string]string{"email": "", "password": ""}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	cookie := ts.signup(t)
	require.NotNil(t, cookie)

	rec = ts.do(t, http.MethodPost, "/api/signup", map[string]string{
		"email":    "other@example.com",
		"password": "secret",
	}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginStatuses(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/login", map[string]string{
		"email":    "me@example.com",
		"password": "secret",
	}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code, "no account yet")

	ts.signup(t)

	rec = ts.do(t, http.MethodPost, "/api/login", map[string]string{
		"email":    "me@example.com",
		"password": "wrong",
	}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/login", map[string]string{
		"email":    "Me@Example.COM",
		"password": "secret",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON[map[string]string](t, rec)
	require.Equal(t, "me@example.com", resp["email"])
}

func TestSessionAndLogout(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.signup(t)

	rec := ts.do(t, http.MethodGet, "/api/session", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	sess := decodeJSON[account.Session](t, rec)
	require.True(t, sess.Authenticated)
	require.Equal(t, "me@example.com", sess.Email)

	rec = ts.do(t, http.MethodPost, "/api/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/session", nil, cookie)
	sess = decodeJSON[account.Session](t, rec)
	require.False(t, sess.Authenticated)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/blocks", "/api/assignments", "/api/calendar"} {
		rec := ts.do(t, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}
}

func TestMCPMountRequiresSession(t *testing.T) {
	ctx := context.Background()
	snaps := snapshot.NewMemory()
	blocks := block.NewStore(ctx, snaps, nil, nil)
	assignments := assignment.NewStore(ctx, snaps, blocks, nil, nil)
	accounts := account.NewService(&memAccountRepo{}, nil)

	var reached bool
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	ts := &testServer{
		router:      transport.NewRouter(accounts, blocks, assignments, mcpHandler, nil),
		blocks:      blocks,
		assignments: assignments,
	}

	// Without a session the MCP endpoint is rejected before the handler,
	// exactly like the REST routes over the same stores.
	for _, path := range []string{"/mcp", "/mcp/"} {
		rec := ts.do(t, http.MethodPost, path, map[string]string{"method": "initialize"}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
		require.False(t, reached)
	}

	cookie := ts.signup(t)
	rec := ts.do(t, http.MethodPost, "/mcp", map[string]string{"method": "initialize"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, reached)
}

func TestBlockLifecycle(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.signup(t)

	rec := ts.do(t, http.MethodPut, "/api/blocks", map[string]any{
		"title":    "Read chapter 3",
		"date":     "2026-09-01",
		"duration": 45,
		"priority": "high",
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeJSON[block.Block](t, rec)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Read chapter 3", created.Title)

	rec = ts.do(t, http.MethodGet, "/api/blocks", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[[]block.Block](t, rec)
	require.Len(t, list, 1)

	rec = ts.do(t, http.MethodPost, "/api/blocks/"+created.ID+"/toggle", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/blocks", nil, cookie)
	list = decodeJSON[[]block.Block](t, rec)
	require.True(t, list[0].Completed)

	rec = ts.do(t, http.MethodDelete, "/api/blocks/"+created.ID, nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/blocks", nil, cookie)
	list = decodeJSON[[]block.Block](t, rec)
	require.Empty(t, list)
}

func TestBlockUpsertResolvesAssignmentReference(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.signup(t)

	rec := ts.do(t, http.MethodPut, "/api/assignments", map[string]any{
		"title": "Essay",
		"hours": 4,
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	a := decodeJSON[assignment.Assignment](t, rec)

	rec = ts.do(t, http.MethodPut, "/api/blocks", map[string]any{
		"title":         "Draft",
		"assignment_id": a.ID,
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	b := decodeJSON[block.Block](t, rec)
	require.Equal(t, a.ID, b.AssignmentID)
	require.Equal(t, "Essay", b.AssignmentTitle)

	// A dangling assignment id is dropped, not stored.
	rec = ts.do(t, http.MethodPut, "/api/blocks", map[string]any{
		"title":         "Orphan",
		"assignment_id": "no-such-assignment",
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	orphan := decodeJSON[block.Block](t, rec)
	require.Empty(t, orphan.AssignmentID)
	require.Empty(t, orphan.AssignmentTitle)
}

func TestAssignmentDeleteCascades(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.signup(t)

	rec := ts.do(t, http.MethodPut, "/api/assignments", map[string]any{"title": "Essay"}, cookie)
	a := decodeJSON[assignment.Assignment](t, rec)

	rec = ts.do(t, http.MethodPut, "/api/blocks", map[string]any{
		"title":         "Draft",
		"assignment_id": a.ID,
	}, cookie)
	b := decodeJSON[block.Block](t, rec)
	require.Equal(t, a.ID, b.AssignmentID)

	rec = ts.do(t, http.MethodDelete, "/api/assignments/"+a.ID, nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/blocks", nil, cookie)
	list := decodeJSON[[]block.Block](t, rec)
	require.Len(t, list, 1)
	require.Empty(t, list[0].AssignmentID)
	require.Empty(t, list[0].AssignmentTitle)
}

func TestProgressEndpoint(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.signup(t)

	rec := ts.do(t, http.MethodGet, "/api/assignments/nope/progress", nil, cookie)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/assignments", map[string]any{
		"title": "Essay",
		"hours": 2,
	}, cookie)
	a := decodeJSON[assignment.Assignment](t, rec)

	rec = ts.do(t, http.MethodPut, "/api/blocks", map[string]any{
		"title":         "Draft",
		"assignment_id": a.ID,
		"duration":      60,
		"completed":     true,
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/assignments/"+a.ID+"/progress", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeJSON[map[string]any](t, rec)
	require.Equal(t, float64(50), report["percent"])
	require.Equal(t, float64(60), report["completed_minutes"])
}

func TestCalendarEndpoint(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.signup(t)

	rec := ts.do(t, http.MethodGet, "/api/calendar?view=decade", nil, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/blocks", map[string]any{
		"title":    "Sunday review",
		"date":     "2026-09-06",
		"priority": "high",
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/calendar?view=week", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var buckets []struct {
		Label  string        `json:"label"`
		Blocks []block.Block `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buckets))
	require.Len(t, buckets, 7)
	require.Equal(t, "Sun", buckets[6].Label)
	require.Len(t, buckets[6].Blocks, 1)
	for _, bucket := range buckets[:6] {
		require.Empty(t, bucket.Blocks)
	}
}

func TestMalformedBodies(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.signup(t)

	req := httptest.NewRequest(http.MethodPut, "/api/blocks", bytes.NewBufferString("{broken"))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/signup", bytes.NewBufferString("{broken"))
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
