package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestListDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/widgets", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"w1","name":"a"},{"id":"w2","name":"b"}],"total_count":57}`))
	}))
	t.Cleanup(srv.Close)

	q := url.Values{}
	q.Set("page", "2")
	resp, err := List[widget](context.Background(), NewClient(srv.URL), "/api/widgets", q)
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 57, resp.TotalCount)
}

func TestErrorEnvelopeBecomesRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"message":"installment already paid"}}`))
	}))
	t.Cleanup(srv.Close)

	_, err := Get[widget](context.Background(), NewClient(srv.URL), "/api/widgets/w1")
	require.Error(t, err)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusConflict, remote.Status)
	assert.Equal(t, "installment already paid", remote.Message)
}

func TestNonEnvelopeErrorBodyStillSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	t.Cleanup(srv.Close)

	_, err := Get[widget](context.Background(), NewClient(srv.URL), "/x")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "upstream unavailable", remote.Message)
}

func TestTimeoutBecomesTimeoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	t.Setenv("REMOTE_TIMEOUT_SECONDS", "1")
	_, err := Get[widget](context.Background(), NewClient(srv.URL), "/slow")
	require.Error(t, err)

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Contains(t, timeout.Error(), "timed out")
}

func TestMalformedEntityResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(srv.Close)

	_, err := Get[widget](context.Background(), NewClient(srv.URL), "/x")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Contains(t, remote.Message, "malformed")
}
