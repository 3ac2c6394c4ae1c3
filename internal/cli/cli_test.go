package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	apperr "github.com/matzehuels/natalchart/pkg/errors"
)

// fakeService serves the chart fixture and geocodes "Berlin".
func fakeService(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	body, err := os.ReadFile("../../pkg/chart/testdata/chart.json")
	if err != nil {
		t.Fatal(err)
	}
	charts := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chart", func(w http.ResponseWriter, r *http.Request) {
		charts.Add(1)
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
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, charts
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `[api]
base_url = "` + baseURL + `"
attempts = 1

[cache]
dir = "` + filepath.ToSlash(filepath.Join(dir, "cache")) + `"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"render", "locate", "odds", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestLoadConfigLowersLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	c.configPath = path
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if got := c.Logger.GetLevel(); got != log.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}

	quiet := New(io.Discard, LogDebug)
	os.WriteFile(path, []byte("[log]\nlevel = \"error\"\n"), 0o644)
	quiet.configPath = path
	if err := quiet.loadConfig(); err != nil {
		t.Fatal(err)
	}
	if got := quiet.Logger.GetLevel(); got != log.DebugLevel {
		t.Errorf("config should not raise the threshold set on the command line, got %v", got)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "missing.toml")
	if err := c.loadConfig(); !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Errorf("loadConfig() error = %v, want INVALID_FORMAT", err)
	}
}

func TestRenderCommand(t *testing.T) {
	srv, charts := fakeService(t)
	cfg := writeConfig(t, srv.URL)
	out := filepath.Join(t.TempDir(), "wheel")

	args := []string{"render", "--config", cfg, "--place", "Berlin", "--date", "1990-01-01", "--time", "08:30", "-f", "svg,json", "-o", out}
	if err := execute(t, args...); err != nil {
		t.Fatalf("render error = %v", err)
	}

	svg, err := os.ReadFile(out + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("svg output should contain an <svg> element")
	}
	scene, err := os.ReadFile(out + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(scene), `"scene"`) {
		t.Error("json output should contain the recorded scene")
	}

	if err := execute(t, args...); err != nil {
		t.Fatalf("second render error = %v", err)
	}
	if n := charts.Load(); n != 1 {
		t.Errorf("chart requests = %d, want 1 (second run cached)", n)
	}
}

func TestRenderCommandSingleFileOutput(t *testing.T) {
	srv, _ := fakeService(t)
	cfg := writeConfig(t, srv.URL)
	out := filepath.Join(t.TempDir(), "graph.dot")

	err := execute(t, "render", "--config", cfg, "--lat", "52.52", "--lon", "13.405", "--utc-offset", "1",
		"--date", "1990-01-01", "-f", "dot", "-o", out)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "graph") {
		t.Errorf("dot output = %q", data)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	srv, charts := fakeService(t)
	cfg := writeConfig(t, srv.URL)

	tests := []struct {
		name string
		args []string
		want apperr.Code
	}{
		{"no place", []string{"--date", "1990-01-01"}, apperr.ErrCodeInvalidInput},
		{"lat without lon", []string{"--lat", "10", "--date", "1990-01-01"}, apperr.ErrCodeInvalidLocation},
		{"bad date", []string{"--place", "Berlin", "--date", "1990-13-01"}, apperr.ErrCodeInvalidDate},
		{"year out of range", []string{"--place", "Berlin", "--date", "1700-01-01"}, apperr.ErrCodeInvalidDate},
		{"bad time", []string{"--place", "Berlin", "--date", "1990-01-01", "--time", "25:00"}, apperr.ErrCodeInvalidDate},
		{"bad format", []string{"--place", "Berlin", "--date", "1990-01-01", "-f", "pdf"}, apperr.ErrCodeInvalidFormat},
		{"unknown place", []string{"--place", "Atlantis", "--date", "1990-01-01"}, apperr.ErrCodeLocationNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"render", "--config", cfg, "-o", filepath.Join(t.TempDir(), "x")}, tt.args...)
			err := execute(t, args...)
			if !apperr.Is(err, tt.want) {
				t.Errorf("error = %v, want code %s", err, tt.want)
			}
		})
	}
	if n := charts.Load(); n != 0 {
		t.Errorf("chart requests = %d, want none for rejected input", n)
	}
}

func TestOddsCommand(t *testing.T) {
	srv, charts := fakeService(t)
	cfg := writeConfig(t, srv.URL)

	if err := execute(t, "odds", "--config", cfg, "--place", "Berlin", "--date", "1990-01-01"); err != nil {
		t.Fatalf("odds error = %v", err)
	}
	if n := charts.Load(); n != 13 {
		t.Errorf("chart requests = %d, want 13", n)
	}
}

func TestLocateCommand(t *testing.T) {
	srv, _ := fakeService(t)
	cfg := writeConfig(t, srv.URL)

	if err := execute(t, "locate", "--config", cfg, "Berlin"); err != nil {
		t.Fatalf("locate error = %v", err)
	}
	err := execute(t, "locate", "--config", cfg, "Atlantis")
	if !apperr.Is(err, apperr.ErrCodeLocationNotFound) {
		t.Errorf("error = %v, want LOCATION_NOT_FOUND", err)
	}
}

func TestCacheClearCommand(t *testing.T) {
	srv, charts := fakeService(t)
	cfg := writeConfig(t, srv.URL)
	render := []string{"render", "--config", cfg, "--place", "Berlin", "--date", "1990-01-01", "-o", filepath.Join(t.TempDir(), "w.svg")}

	if err := execute(t, render...); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "cache", "clear", "--config", cfg); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
	if err := execute(t, render...); err != nil {
		t.Fatal(err)
	}
	if n := charts.Load(); n != 2 {
		t.Errorf("chart requests = %d, want 2 after clearing the cache", n)
	}
}
