package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ville-ideale-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const antonyPage = `<html><body><h1>Antony (92160)</h1><p id="ng">14,2 / 20</p></body></html>`

// startTimes records when each outbound request leaves the client.
type startTimes struct {
	mu    sync.Mutex
	times []time.Time
	next  http.RoundTripper
}

func (s *startTimes) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.times = append(s.times, time.Now())
	s.mu.Unlock()
	return s.next.RoundTrip(req)
}

func newTownServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/antony_92002", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(antonyPage))
	})
	mux.HandleFunc("/saint_etienne_42218", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<h1>Saint-Étienne (42000)</h1><p id="ng">12,9</p>`))
	})
	mux.HandleFunc("/unknown_00000", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Aucun résultat</p></body></html>`))
	})
	mux.HandleFunc("/broken_11111", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_TownURL(t *testing.T) {
	c := NewClient(Options{BaseURL: "https://www.ville-ideale.fr"})
	assert.Equal(t, "https://www.ville-ideale.fr/saint_etienne_42218", c.TownURL("Saint-Étienne", "42218"))
}

func TestClient_FetchTown(t *testing.T) {
	srv := newTownServer(t)
	c := NewClient(Options{BaseURL: srv.URL, RateLimit: time.Millisecond})

	tests := []struct {
		name         string
		town         string
		code         string
		expected     *models.TownRecord
		expectedKind Kind
	}{
		{
			name:     "antony end to end",
			town:     "Antony",
			code:     "92002",
			expected: &models.TownRecord{Name: "Antony", Code: "92002", PostalCode: "92160", Score: 14.2},
		},
		{
			name:     "name keeps original spelling",
			town:     "Saint-Étienne",
			code:     "42218",
			expected: &models.TownRecord{Name: "Saint-Étienne", Code: "42218", PostalCode: "42000", Score: 12.9},
		},
		{name: "page without score element", town: "Unknown", code: "00000", expectedKind: KindMissingElement},
		{name: "server error", town: "Broken", code: "11111", expectedKind: KindNetwork},
		{name: "not found page", town: "Nowhere", code: "99999", expectedKind: KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			town, err := c.FetchTown(context.Background(), tt.town, tt.code)
			if tt.expectedKind != 0 {
				require.Error(t, err)
				assert.Nil(t, town)
				assert.Equal(t, tt.expectedKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, town)
		})
	}
}

func TestClient_FetchTown_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Options{BaseURL: srv.URL, RequestTimeout: 50 * time.Millisecond})

	_, err := c.FetchTown(context.Background(), "Antony", "92002")
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestClient_FetchTown_RateLimit(t *testing.T) {
	srv := newTownServer(t)
	interval := 200 * time.Millisecond
	recorder := &startTimes{next: http.DefaultTransport}
	c := NewClient(Options{BaseURL: srv.URL, RateLimit: interval, Transport: recorder})

	start := time.Now()
	var wg sync.WaitGroup
	for _, q := range [][2]string{{"Antony", "92002"}, {"Saint-Étienne", "42218"}, {"Antony", "92002"}} {
		wg.Add(1)
		go func(name, code string) {
			defer wg.Done()
			_, err := c.FetchTown(context.Background(), name, code)
			assert.NoError(t, err)
		}(q[0], q[1])
	}
	wg.Wait()

	require.Len(t, recorder.times, 3)
	// The third request cannot be issued before two full intervals have passed.
	assert.GreaterOrEqual(t, recorder.times[2].Sub(start), 2*interval)
	assert.GreaterOrEqual(t, time.Since(start), 2*interval)
}

func TestClient_FetchTown_Spans(t *testing.T) {
	srv := newTownServer(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	c := NewClient(Options{BaseURL: srv.URL, RateLimit: time.Millisecond, TracerProvider: tp})

	_, err := c.FetchTown(context.Background(), "Antony", "92002")
	require.NoError(t, err)
	_, err = c.FetchTown(context.Background(), "Broken", "11111")
	require.Error(t, err)
	_, err = c.FetchTown(context.Background(), "Unknown", "00000")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	ok := spans[0]
	assert.Equal(t, "FetchTown", ok.Name())
	assert.Equal(t, codes.Unset, ok.Status().Code)
	assert.Contains(t, ok.Attributes(), attribute.String("url", srv.URL+"/antony_92002"))
	assert.Contains(t, ok.Attributes(), attribute.String("town.code", "92002"))
	assert.Contains(t, ok.Attributes(), attribute.Int("http.status_code", http.StatusOK))
	require.NotEmpty(t, ok.Events())
	assert.Equal(t, "rate gate passed", ok.Events()[0].Name)

	broken := spans[1]
	assert.Equal(t, codes.Error, broken.Status().Code)
	assert.Equal(t, "unexpected status", broken.Status().Description)
	assert.Contains(t, broken.Attributes(), attribute.Int("http.status_code", http.StatusInternalServerError))
	assert.Contains(t, broken.Attributes(), attribute.String("fetch.kind", "network"))

	unknown := spans[2]
	assert.Equal(t, codes.Error, unknown.Status().Code)
	assert.Equal(t, "parse failed", unknown.Status().Description)
	assert.Contains(t, unknown.Attributes(), attribute.String("fetch.kind", "missing_element"))
}

func TestClient_FetchTown_CancelledWhileWaiting(t *testing.T) {
	srv := newTownServer(t)
	c := NewClient(Options{BaseURL: srv.URL, RateLimit: time.Hour})

	_, err := c.FetchTown(context.Background(), "Antony", "92002")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.FetchTown(ctx, "Antony", "92002")
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}
