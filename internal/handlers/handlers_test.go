package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/template/html/v3"

	"fonthunter/internal/hunter"
	"fonthunter/views"
)

type fakeHunter struct {
	outcome hunter.Outcome
	calls   int
}

func (f *fakeHunter) Hunt(_ context.Context, name string) hunter.Outcome {
	f.calls++
	o := f.outcome
	o.FontName = name
	return o
}

func newTestApp() *fiber.App {
	engine := html.NewFileSystem(http.FS(views.FS), ".html")
	return fiber.New(fiber.Config{Views: engine, ViewsLayout: "layouts/main"})
}

func get(t *testing.T, app *fiber.App, target string) (int, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", target, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestHuntPage(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		outcome   hunter.Outcome
		status    int
		contains  string
		wantCalls int
	}{
		{
			name:     "form only",
			target:   "/hunt",
			status:   http.StatusOK,
			contains: `<form method="get" action="/hunt">`,
		},
		{
			name:      "found",
			target:    "/hunt?name=Space+Mono",
			outcome:   hunter.Outcome{Success: true, Strategy: "cdn", FilePaths: []string{"out/space-mono/a.woff2"}, Duration: time.Second},
			status:    http.StatusOK,
			contains:  "Found Space Mono",
			wantCalls: 1,
		},
		{
			name:      "exhausted",
			target:    "/hunt?name=Nope",
			outcome:   hunter.Outcome{LastResortInfo: "Could not automatically find font files for: \"Nope\""},
			status:    http.StatusOK,
			contains:  "Could not find Nope",
			wantCalls: 1,
		},
		{
			name:     "invalid name",
			target:   "/hunt?name=" + strings.Repeat("a", 120),
			status:   http.StatusBadRequest,
			contains: "font name is too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeHunter{outcome: tt.outcome}
			app := newTestApp()
			app.Get("/hunt", NewHuntPageHandler(fake, time.Minute).Show)

			status, body := get(t, app, tt.target)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("body missing %q:\n%s", tt.contains, body)
			}
			if fake.calls != tt.wantCalls {
				t.Errorf("hunt calls = %d, want %d", fake.calls, tt.wantCalls)
			}
		})
	}
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestProbes(t *testing.T) {
	tests := []struct {
		name   string
		pinger Pinger
		status int
	}{
		{"no database", nil, http.StatusOK},
		{"database up", fakePinger{}, http.StatusOK},
		{"database down", fakePinger{err: errors.New("down")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			h := NewProbeHandler(tt.pinger)
			app.Get("/healthz", h.Liveness)
			app.Get("/readyz", h.Readiness)

			if status, _ := get(t, app, "/healthz"); status != http.StatusOK {
				t.Errorf("healthz = %d", status)
			}
			if status, _ := get(t, app, "/readyz"); status != tt.status {
				t.Errorf("readyz = %d, want %d", status, tt.status)
			}
		})
	}
}
