package server

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xiaoyuanzhu-com/todos/config"
)

func testConfig(t *testing.T, env string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Port:                 0,
		Host:                 "127.0.0.1",
		Env:                  env,
		DataDir:              dir,
		DatabasePath:         filepath.Join(dir, "sessions.sqlite"),
		DBDriver:             config.DriverPure,
		SessionCookieName:    "sid",
		SessionMaxAge:        time.Hour,
		SessionSweepInterval: time.Hour,
		LogLevel:             "error",
	}
}

func newTestServer(t *testing.T, env string) *Server {
	t.Helper()
	return startTestServer(t, testConfig(t, env))
}

func startTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t, "development")

	tests := []struct {
		name   string
		path   string
		status int
		cookie bool
	}{
		{"root redirects", "/", http.StatusFound, true},
		{"lists page", "/lists", http.StatusOK, true},
		{"stylesheet", "/static/app.css", http.StatusOK, false},
		{"well-known ignored", "/.well-known/security.txt", http.StatusNotFound, false},
		{"unknown list", "/lists/42", http.StatusNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.status {
				t.Fatalf("status: got %d, want %d", w.Code, tt.status)
			}
			hasCookie := false
			for _, c := range w.Result().Cookies() {
				if c.Name == "sid" {
					hasCookie = true
					if c.Secure {
						t.Error("cookie should not be Secure in development")
					}
				}
			}
			if hasCookie != tt.cookie {
				t.Errorf("session cookie set: got %v, want %v", hasCookie, tt.cookie)
			}
		})
	}
}

func TestServer_ProductionHeaders(t *testing.T) {
	srv := newTestServer(t, "production")

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lists", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options: got %q", got)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" && c.Secure {
			t.Error("cookie should not be Secure unless SessionSecure is set")
		}
	}
}

func TestServer_SecureCookieWhenConfigured(t *testing.T) {
	cfg := testConfig(t, "development")
	cfg.SessionSecure = true
	srv := startTestServer(t, cfg)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lists", nil))

	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" {
			found = true
			if !c.Secure {
				t.Error("cookie should be Secure when SessionSecure is set")
			}
		}
	}
	if !found {
		t.Fatal("no session cookie set")
	}
}

func TestServer_SessionSurvivesPlainHTTPInProduction(t *testing.T) {
	srv := newTestServer(t, "production")
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	client := &http.Client{Jar: jar}

	// The redirect to /lists must come back with the same session
	resp, err := client.PostForm(ts.URL+"/lists", url.Values{"todoListTitle": {"Work"}})
	if err != nil {
		t.Fatalf("POST /lists: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	for _, want := range []string{"<h3>Work</h3>", "The todo list has been created."} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}

	resp, err = client.Get(ts.URL + "/lists")
	if err != nil {
		t.Fatalf("GET /lists: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "<h3>Work</h3>") {
		t.Error("list lost on second request")
	}

	n, err := srv.database.CountSessions()
	if err != nil {
		t.Fatalf("CountSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("sessions: got %d, want 1", n)
	}
}

func TestServer_Gzip(t *testing.T) {
	srv := newTestServer(t, "development")

	req := httptest.NewRequest(http.MethodGet, "/lists", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Errorf("Content-Encoding: got %q, want gzip", got)
	}
}
