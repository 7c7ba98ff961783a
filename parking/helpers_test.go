package parking

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testToken = "token-123"

// fakeResponse is one canned reply; the last queued reply for a route repeats.
type fakeResponse struct {
	status int
	body   string
	header map[string]string
	delay  time.Duration
}

type recordedRequest struct {
	header http.Header
	body   map[string]any
}

// fakeAPI is an httptest server with per-route response queues.
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mu        sync.Mutex
	responses map[string][]fakeResponse
	requests  map[string][]recordedRequest
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		t:         t,
		responses: make(map[string][]fakeResponse),
		requests:  make(map[string][]recordedRequest),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	f.mu.Lock()
	f.requests[key] = append(f.requests[key], recordedRequest{header: r.Header.Clone(), body: body})
	queue := f.responses[key]
	if len(queue) == 0 {
		f.mu.Unlock()
		http.Error(w, "no response registered for "+key, http.StatusNotImplemented)
		return
	}
	resp := queue[0]
	if len(queue) > 1 {
		f.responses[key] = queue[1:]
	}
	f.mu.Unlock()

	if resp.delay > 0 {
		time.Sleep(resp.delay)
	}
	for k, v := range resp.header {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

// on queues a reply. A string body is sent verbatim, anything else as JSON.
func (f *fakeAPI) on(method, path string, status int, body any) *fakeAPI {
	return f.onResponse(method, path, fakeResponse{status: status, body: f.encode(body)})
}

func (f *fakeAPI) onResponse(method, path string, resp fakeResponse) *fakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.responses[key] = append(f.responses[key], resp)
	return f
}

func (f *fakeAPI) encode(body any) string {
	switch b := body.(type) {
	case nil:
		return ""
	case string:
		return b
	default:
		raw, err := json.Marshal(b)
		require.NoError(f.t, err)
		return string(raw)
	}
}

// withLoginTypes registers the permit-media type lookup.
func (f *fakeAPI) withLoginTypes() *fakeAPI {
	return f.on(http.MethodGet, "/login", http.StatusOK, map[string]any{
		"PermitMediaTypes": []any{map[string]any{"ID": 1}},
	})
}

// withLogin registers the permit-media type lookup and a successful login.
func (f *fakeAPI) withLogin() *fakeAPI {
	return f.withLoginTypes().on(http.MethodPost, "/login", http.StatusOK, map[string]any{
		"Token":       testToken,
		"LoginStatus": 0,
	})
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests[method+" "+path])
}

func (f *fakeAPI) request(method, path string, i int) recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := f.requests[method+" "+path]
	require.Greater(f.t, len(reqs), i, "expected request %d to %s %s", i, method, path)
	return reqs[i]
}

func (f *fakeAPI) newClient(opts ...Option) *Client {
	f.t.Helper()
	client, err := New(Config{
		Username: "user",
		Password: "pass",
		BaseURL:  f.server.URL,
	}, opts...)
	require.NoError(f.t, err)
	return client
}

type permitOptions struct {
	reservations []any
	plates       []any
	blockTimes   []any
	code         string
	balance      int
	typeID       int
	zone         string
}

func defaultPermit() permitOptions {
	return permitOptions{
		code:    "32600",
		balance: 6996,
		typeID:  1,
		zone:    "zone 4",
	}
}

func (p permitOptions) media() map[string]any {
	reservations := p.reservations
	if reservations == nil {
		reservations = []any{}
	}
	plates := p.plates
	if plates == nil {
		plates = []any{}
	}
	return map[string]any{
		"TypeID":              p.typeID,
		"Code":                p.code,
		"Balance":             p.balance,
		"ActiveReservations":  reservations,
		"LicensePlates":       plates,
		"RemainingUpgrades":   0,
		"RemainingDowngrades": nil,
	}
}

func (p permitOptions) permit() map[string]any {
	blocks := p.blockTimes
	if blocks == nil {
		blocks = []any{}
	}
	return map[string]any{
		"ZoneCode":     p.zone,
		"PermitMedias": []any{p.media()},
		"BlockTimes":   blocks,
	}
}

// payload is the singular {"Permit": {...}} response shape.
func (p permitOptions) payload() map[string]any {
	return map[string]any{"Permit": p.permit()}
}

func reservationItem() map[string]any {
	return map[string]any{
		"ReservationID": 1844553,
		"ValidFrom":     "2025-12-23T00:47:00",
		"ValidUntil":    "2025-12-23T23:59:00",
		"LicensePlate": map[string]any{
			"DisplayValue": "AA11BB",
			"Value":        "AA11BB",
		},
		"Units":           359,
		"PermitMediaCode": "32600",
	}
}

func favoriteItem() map[string]any {
	return map[string]any{
		"Value":      "AA11BBCC",
		"Name":       "Test",
		"ValidFrom":  "0001-01-01T00:00:00",
		"ValidUntil": "9999-12-31T23:59:59.9999999",
	}
}

func strPtr(s string) *string { return &s }
