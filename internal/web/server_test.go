package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riazmb01/Audio-Canvas/internal/analyzer"
	"github.com/riazmb01/Audio-Canvas/internal/params"
)

type stubApp struct {
	settings params.Settings
	feat     analyzer.Features
	fps      float64
}

func (s *stubApp) Settings() params.Settings       { return s.settings }
func (s *stubApp) ApplySettings(p params.Settings) { s.settings = p.Clamped() }
func (s *stubApp) Status() (analyzer.Features, float64) {
	return s.feat, s.fps
}

func TestHandleStatus(t *testing.T) {
	app := &stubApp{settings: params.Defaults(), fps: 59.7}
	app.feat.Bass = 0.5
	s := NewServer(app, nil)

	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if resp.FPS != 59.7 {
		t.Fatalf("fps %f want 59.7", resp.FPS)
	}
	if resp.Features.Bass != 0.5 {
		t.Fatalf("bass %f want 0.5", resp.Features.Bass)
	}
	if len(resp.ColorModes) == 0 {
		t.Fatalf("expected color modes in status")
	}
}

func TestHandleUpdatePatchesAndClamps(t *testing.T) {
	app := &stubApp{settings: params.Defaults()}
	s := NewServer(app, nil)

	body := strings.NewReader(`{"particleCount": 99999, "colorMode": "ember"}`)
	rec := httptest.NewRecorder()
	s.handleUpdate(rec, httptest.NewRequest(http.MethodPost, "/api/update", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d want 200", rec.Code)
	}
	if app.settings.ParticleCount != params.MaxParticleCount {
		t.Fatalf("count %d want clamped %d", app.settings.ParticleCount, params.MaxParticleCount)
	}
	if app.settings.ColorMode != "ember" {
		t.Fatalf("color mode %q want ember", app.settings.ColorMode)
	}
	// Untouched fields survive.
	if app.settings.Drag != params.Defaults().Drag {
		t.Fatalf("drag changed unexpectedly: %f", app.settings.Drag)
	}
}

func TestHandleUpdateRejectsGet(t *testing.T) {
	s := NewServer(&stubApp{settings: params.Defaults()}, nil)
	rec := httptest.NewRecorder()
	s.handleUpdate(rec, httptest.NewRequest(http.MethodGet, "/api/update", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d want 405", rec.Code)
	}
}

func TestHandleUpdateRejectsBadJSON(t *testing.T) {
	s := NewServer(&stubApp{settings: params.Defaults()}, nil)
	rec := httptest.NewRecorder()
	s.handleUpdate(rec, httptest.NewRequest(http.MethodPost, "/api/update", strings.NewReader("{nope")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d want 400", rec.Code)
	}
}
