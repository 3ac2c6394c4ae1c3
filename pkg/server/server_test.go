package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/natalchart/pkg/cache"
	apperr "github.com/matzehuels/natalchart/pkg/errors"
	"github.com/matzehuels/natalchart/pkg/httputil"
	"github.com/matzehuels/natalchart/pkg/integrations/natalcharts"
	"github.com/matzehuels/natalchart/pkg/pipeline"
	"github.com/matzehuels/natalchart/pkg/store"
	"github.com/matzehuels/natalchart/pkg/wheel"
)

const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148"

type testEnv struct {
	handler http.Handler
	store   *store.MemoryStore
	charts  *atomic.Int32
	up      *atomic.Bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	body, err := os.ReadFile("../chart/testdata/chart.json")
	if err != nil {
		t.Fatal(err)
	}

	env := &testEnv{store: store.NewMemoryStore(), charts: &atomic.Int32{}, up: &atomic.Bool{}}
	env.up.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chart", func(w http.ResponseWriter, r *http.Request) {
		env.charts.Add(1)
		if !env.up.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(body)
	})
	mux.HandleFunc("POST /geocode", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("q") == "Berlin" {
			w.Write([]byte(`{"location":"Berlin, Germany","geo":[52.52,13.405],"utc_offset":"1"}`))
			return
		}
		w.Write([]byte(`{}`))
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := natalcharts.NewClient(c, upstream.URL)
	client.SetHTTPClient(upstream.Client())
	client.SetRetryPolicy(httputil.Policy{Attempts: 1})
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(client, c, nil, logger)

	env.handler = New(Config{Logger: logger, Runner: runner, Store: env.store}).Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body %q: %v", rec.Body.String(), err)
	}
	return body
}

const renderBody = `{"place":"Berlin","year":1990,"month":6,"day":15,"hour":14,"minute":30}`

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("request id = %q", rec.Header().Get(RequestIDHeader))
	}

	const id = "0f8fad5b-d9cb-469f-a165-70867728950e"
	rec = env.do(t, http.MethodGet, "/healthz", "", map[string]string{RequestIDHeader: id})
	if got := rec.Header().Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want the caller's %q", got, id)
	}
}

func TestLocate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/locations?q=Berlin", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var loc natalcharts.Location
	if err := json.Unmarshal(rec.Body.Bytes(), &loc); err != nil {
		t.Fatal(err)
	}
	if loc.Name != "Berlin, Germany" || loc.UTCOffset != 1 {
		t.Errorf("location = %+v", loc)
	}

	rec = env.do(t, http.MethodGet, "/v1/locations?q=Atlantis", "", nil)
	if rec.Code != http.StatusNotFound || decodeError(t, rec).Error.Code != apperr.ErrCodeLocationNotFound {
		t.Errorf("unknown place: status = %d body = %s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodGet, "/v1/locations", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d", rec.Code)
	}
}

func TestRenderAndHistory(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/charts/render", renderBody, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("<svg")) {
		t.Errorf("body = %.40q", rec.Body.String())
	}
	if rec.Header().Get(HeaderSunSign) != "Capricorn" || rec.Header().Get(HeaderCache) != "MISS" {
		t.Errorf("headers = %v", rec.Header())
	}

	id := rec.Header().Get(HeaderRenderID)
	rec = env.do(t, http.MethodGet, "/v1/renders/"+id, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get render: status = %d", rec.Code)
	}
	var saved store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatal(err)
	}
	if saved.ID != id || saved.Place != "Berlin, Germany" || saved.Planets != 5 || saved.Compact {
		t.Errorf("record = %+v", saved)
	}
	if saved.Time.Hour() != 14 || saved.Time.Minute() != 30 {
		t.Errorf("record time = %v", saved.Time)
	}

	rec = env.do(t, http.MethodGet, "/v1/renders/"+id+"/artifact?format=json", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("rerender: status = %d type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	var snap struct {
		Layout struct {
			Config wheel.LayoutConfig `json:"config"`
		} `json:"layout"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("rerender body: %v", err)
	}
	if snap.Layout.Config.CanvasSize != wheel.Full.CanvasSize {
		t.Errorf("canvas = %d", snap.Layout.Config.CanvasSize)
	}
	if env.charts.Load() != 1 {
		t.Errorf("chart service calls = %d, want 1 (rerender is served from cache)", env.charts.Load())
	}

	rec = env.do(t, http.MethodGet, "/v1/renders", "", nil)
	var list []store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Errorf("list = %s (%v)", rec.Body, err)
	}
}

func TestRenderCompactSelection(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name   string
		target string
		ua     string
		want   bool
	}{
		{"desktop", "/v1/charts/render?format=json", "Mozilla/5.0 (X11; Linux x86_64)", false},
		{"phone", "/v1/charts/render?format=json", iphoneUA, true},
		{"query wins", "/v1/charts/render?format=json&compact=false", iphoneUA, false},
		{"query forces", "/v1/charts/render?format=json&compact=true", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tt.target, renderBody, map[string]string{"User-Agent": tt.ua})
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			saved, err := env.store.Get(t.Context(), rec.Header().Get(HeaderRenderID))
			if err != nil {
				t.Fatal(err)
			}
			if saved.Compact != tt.want {
				t.Errorf("compact = %v, want %v", saved.Compact, tt.want)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   apperr.Code
	}{
		{"bad json", "/v1/charts/render", `{"place":`, http.StatusBadRequest, apperr.ErrCodeInvalidInput},
		{"unknown field", "/v1/charts/render", `{"planet":"Sun"}`, http.StatusBadRequest, apperr.ErrCodeInvalidInput},
		{"bad date", "/v1/charts/render", `{"place":"Berlin","year":1990,"month":2,"day":30}`, http.StatusBadRequest, apperr.ErrCodeInvalidDate},
		{"bad format", "/v1/charts/render?format=pdf", renderBody, http.StatusBadRequest, apperr.ErrCodeInvalidFormat},
		{"unknown place", "/v1/charts/render", `{"place":"Atlantis","year":1990,"month":6,"day":15}`, http.StatusNotFound, apperr.ErrCodeLocationNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tt.target, tt.body, nil)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
			body := decodeError(t, rec)
			if body.Error.Code != tt.code || body.Error.RequestID == "" {
				t.Errorf("error = %+v, want %s", body.Error, tt.code)
			}
		})
	}

	env.up.Store(false)
	rec := env.do(t, http.MethodPost, "/v1/charts/render", renderBody, nil)
	if rec.Code != http.StatusBadGateway || decodeError(t, rec).Error.Code != apperr.ErrCodeNetwork {
		t.Errorf("upstream down: status = %d body = %s", rec.Code, rec.Body)
	}
}

func TestGetRenderNotFound(t *testing.T) {
	env := newTestEnv(t)
	for _, id := range []string{"nope", uuid.NewString()} {
		rec := env.do(t, http.MethodGet, "/v1/renders/"+id, "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s: status = %d", id, rec.Code)
		}
	}
}

func TestOdds(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/v1/odds", `{"place":"Berlin","year":1990,"month":1,"day":1}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var res pipeline.OddsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Samples) != 13 || len(res.Odds) != 1 || res.Odds[0].Sign != "Capricorn" || res.Odds[0].Percent != 100 {
		t.Errorf("odds = %+v", res)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[apperr.Code]int{
		apperr.ErrCodeInvalidInput:     http.StatusBadRequest,
		apperr.ErrCodeInvalidLocation:  http.StatusBadRequest,
		apperr.ErrCodeLocationNotFound: http.StatusNotFound,
		apperr.ErrCodeTimeout:          http.StatusBadGateway,
		apperr.ErrCodeMalformedChart:   http.StatusBadGateway,
		apperr.ErrCodeInternal:         http.StatusInternalServerError,
		"":                             http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := StatusFor(code); got != want {
			t.Errorf("StatusFor(%q) = %d, want %d", code, got, want)
		}
	}
}

func TestIsPhone(t *testing.T) {
	tests := []struct {
		ua   string
		want bool
	}{
		{iphoneUA, true},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36", true},
		{"Mozilla/5.0 (Linux; Android 14; SM-X710) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", false},
		{"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)", false},
		{"curl/8.4.0", false},
	}
	for _, tt := range tests {
		if got := IsPhone(tt.ua); got != tt.want {
			t.Errorf("IsPhone(%q) = %v, want %v", tt.ua, got, tt.want)
		}
	}
}
