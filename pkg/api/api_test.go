package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"shiftdb/pkg/backfill"
	"shiftdb/pkg/blog"
	"shiftdb/pkg/counters"
	"shiftdb/pkg/migrate"
	"shiftdb/pkg/source"
	"shiftdb/pkg/store"
	"shiftdb/pkg/verify"
	"shiftdb/pkg/views"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	open := func(dir string) *store.Pebble {
		p, err := store.Open(dir)
		require.NoError(t, err)
		t.Cleanup(func() { _ = p.Close() })
		return p
	}
	sourceDB := open(t.TempDir())
	targetDB := open(t.TempDir())

	src := source.New(sourceDB)
	reader := views.NewReader(targetDB)
	writer := views.NewWriter(targetDB)
	counts := counters.New(targetDB)
	svc := blog.NewService(migrate.New(migrate.DualWrite), src, reader, writer, counts)
	engine := backfill.New(src, writer, counts, 0)
	verifier := verify.New(src, reader)

	ts := httptest.NewServer(NewServer(svc, engine, verifier).Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestUserLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/users",
		map[string]string{"name": "ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, env.Success)
	user := env.Data.(map[string]interface{})
	id := user["id"].(string)
	require.Len(t, id, 24)

	resp, env = doJSON(t, http.MethodGet, ts.URL+"/api/users/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "source", env.Source)
	got := env.Data.(map[string]interface{})
	require.Contains(t, got, "postsCount", "a zero count still serializes")
	require.EqualValues(t, 0, got["postsCount"])

	resp, env = doJSON(t, http.MethodGet, ts.URL+"/api/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Count)
	require.Equal(t, 1, *env.Count)

	// duplicate email is a client error
	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/users",
		map[string]string{"name": "impostor", "email": "ada@example.com"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, env.Success)

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/users/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/users/"+id, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostsAndCommentsOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	_, env := doJSON(t, http.MethodPost, ts.URL+"/api/users",
		map[string]string{"name": "ada", "email": "ada@example.com"})
	userID := env.Data.(map[string]interface{})["id"].(string)

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/posts",
		map[string]string{"user_id": userID, "content": "hello"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := env.Data.(map[string]interface{})["id"].(string)

	// unknown sort collapses to latest and is echoed back
	resp, env = doJSON(t, http.MethodGet, ts.URL+"/api/posts?sort=bogus", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "latest", env.Sort)
	require.Equal(t, 1, *env.Count)

	// the content field must be present, but may be empty
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/posts",
		map[string]string{"user_id": userID})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/posts",
		map[string]string{"user_id": userID, "content": ""})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/posts/%s/comments", ts.URL, postID),
		map[string]string{"user_id": userID, "content": "nice"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	commentID := env.Data.(map[string]interface{})["id"].(string)

	resp, env = doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/posts/%s/comments", ts.URL, postID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, *env.Count)

	resp, _ = doJSON(t, http.MethodDelete,
		fmt.Sprintf("%s/api/posts/%s/comments/%s", ts.URL, postID, commentID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// malformed identifier is a client error, not a 500
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/posts/not-an-id", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminEndpoints(t *testing.T) {
	ts := newTestServer(t)

	_, env := doJSON(t, http.MethodPost, ts.URL+"/api/users",
		map[string]string{"name": "ada", "email": "ada@example.com"})
	require.True(t, env.Success)

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/admin/backfill", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	resp, env = doJSON(t, http.MethodPost, ts.URL+"/admin/verify", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := env.Data.(map[string]interface{})
	require.Equal(t, true, rep["users_match"])

	resp, env = doJSON(t, http.MethodGet, ts.URL+"/admin/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "dual_write", env.Data.(map[string]interface{})["phase"])
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
