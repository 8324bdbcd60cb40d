package order

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamms/storefront/internal/domain"
)

func testSnapshot() *domain.OrderSnapshot {
	return domain.NewOrderSnapshot(
		domain.Customer{
			Name:    "Greisy",
			Email:   "greisy@example.com",
			Phone:   "999888777",
			Address: "Av. Principal 123",
			Comment: "entregar en la tarde",
		},
		[]domain.LineItem{
			{ID: "1", Name: "Muñequitos tejidos", Price: 25, Quantity: 2},
			{ID: "2", Name: "Chalinas tejidas", Price: 35, Quantity: 1},
		},
	)
}

type recordedRequest struct {
	contentType string
	body        []byte
}

// recordingRelay captures every request and answers with a fixed status per
// attempt index.
type recordingRelay struct {
	mu       sync.Mutex
	requests []recordedRequest
	statuses []int
}

func (rr *recordingRelay) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		rr.mu.Lock()
		idx := len(rr.requests)
		rr.requests = append(rr.requests, recordedRequest{
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		})
		status := http.StatusOK
		if idx < len(rr.statuses) {
			status = rr.statuses[idx]
		}
		rr.mu.Unlock()

		w.WriteHeader(status)
		if status >= 400 {
			w.Write([]byte(`{"error":"form not found"}`))
		} else {
			w.Write([]byte(`{"ok":true}`))
		}
	}
}

func TestSubmit_JSONSuccess(t *testing.T) {
	relay := &recordingRelay{}
	srv := httptest.NewServer(relay.handler())
	defer srv.Close()

	sut := NewRelaySubmitter(srv.URL, nil)
	res := sut.Submit(context.Background(), testSnapshot())

	assert.True(t, res.OK)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "ok")

	require.Len(t, relay.requests, 1)
	assert.Equal(t, "application/json", relay.requests[0].contentType)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(relay.requests[0].body, &payload))
	assert.Equal(t, "Greisy", payload["Nombre"])
	assert.Equal(t, "greisy@example.com", payload["email"])
	assert.Equal(t, "greisy@example.com", payload["_replyto"])
	assert.Contains(t, payload["Pedido"], "Muñequitos tejidos (x2) - S/ 50.00")
	assert.Contains(t, payload["Pedido"], "Chalinas tejidas (x1) - S/ 35.00")
	assert.Equal(t, "S/ 85.00", payload["Total"])
}

func TestSubmit_FallsBackToFormEncoding(t *testing.T) {
	relay := &recordingRelay{statuses: []int{http.StatusUnprocessableEntity, http.StatusOK}}
	srv := httptest.NewServer(relay.handler())
	defer srv.Close()

	sut := NewRelaySubmitter(srv.URL, nil)
	res := sut.Submit(context.Background(), testSnapshot())

	assert.True(t, res.OK)
	require.Len(t, relay.requests, 2)
	assert.Equal(t, "application/json", relay.requests[0].contentType)
	assert.Equal(t, "application/x-www-form-urlencoded", relay.requests[1].contentType)
	assert.Contains(t, string(relay.requests[1].body), "Nombre=Greisy")
}

func TestSubmit_BothAttemptsRejected(t *testing.T) {
	relay := &recordingRelay{statuses: []int{http.StatusInternalServerError, http.StatusBadGateway}}
	srv := httptest.NewServer(relay.handler())
	defer srv.Close()

	sut := NewRelaySubmitter(srv.URL, nil)
	res := sut.Submit(context.Background(), testSnapshot())

	assert.False(t, res.OK)
	assert.Equal(t, http.StatusBadGateway, res.Status)
	assert.Contains(t, res.Body, "form not found")
	assert.Len(t, relay.requests, 2)
}

func TestSubmit_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listening anymore

	sut := NewRelaySubmitter(srv.URL, nil)
	res := sut.Submit(context.Background(), testSnapshot())

	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Status)
	assert.Equal(t, "network-error", res.Body)
}

func TestSubmit_NoEndpoint(t *testing.T) {
	sut := NewRelaySubmitter("", nil)
	res := sut.Submit(context.Background(), testSnapshot())

	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Status)
}

func TestItemLines(t *testing.T) {
	lines := ItemLines([]domain.LineItem{
		{Name: "Rosas eternas", Price: 18, Quantity: 3},
	})
	require.Len(t, lines, 1)
	assert.Equal(t, "Rosas eternas (x3) - S/ 54.00", lines[0])
}
