package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	sm "synthmidi/pkg/synthmidi"
)

func newTestServer(t *testing.T) (*server, string) {
	t.Helper()
	root := t.TempDir()
	frames := filepath.Join(root, "frames")
	require.NoError(t, os.Mkdir(frames, 0o755))
	for i := 0; i < 5; i++ {
		f, err := os.Create(filepath.Join(frames, fmt.Sprintf("%04d.png", i)))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 64, 48))))
		require.NoError(t, f.Close())
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0o755))
	broken := filepath.Join(root, "broken")
	require.NoError(t, os.Mkdir(broken, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, "0000.png"), []byte("not a png"), 0o644))
	return &server{mediaDir: root, log: zap.NewNop()}, root
}

func doRequest(s *server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestExtractEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/extract", `{"video":"frames","skip":0,"include_midi":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp extractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert := assert.New(t)
	assert.NotEmpty(resp.ID)
	assert.Empty(resp.Notes)
	assert.Nil(resp.Summary)
	assert.Len(resp.Warnings, 1)
	assert.Equal("MThd", string(resp.MIDI[:4]))
}

func TestExtractEndpointErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		body   string
		code   int
	}{
		{"bad json", http.MethodPost, `{`, http.StatusBadRequest},
		{"missing video", http.MethodPost, `{}`, http.StatusBadRequest},
		{"escapes media dir", http.MethodPost, `{"video":"../etc/passwd"}`, http.StatusBadRequest},
		{"not found", http.MethodPost, `{"video":"nope.mp4"}`, http.StatusNotFound},
		{"too few calibration points", http.MethodPost, `{"video":"frames","calibration":{"c_positions":{"60":10}}}`, http.StatusUnprocessableEntity},
		{"calibration not a C", http.MethodPost, `{"video":"frames","calibration":{"c_positions":{"60":10,"61":20}}}`, http.StatusUnprocessableEntity},
		{"negative skip", http.MethodPost, `{"video":"frames","skip":-1}`, http.StatusUnprocessableEntity},
		{"no frames in directory", http.MethodPost, `{"video":"empty"}`, http.StatusUnprocessableEntity},
		{"undecodable frame", http.MethodPost, `{"video":"broken"}`, http.StatusUnprocessableEntity},
		{"wrong method", http.MethodGet, ``, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, tt.method, "/extract", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestErrorStatus(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(http.StatusUnprocessableEntity, errorStatus(fmt.Errorf("calibration: %w", sm.ErrTooFewCalibrationPoints)))
	assert.Equal(http.StatusUnprocessableEntity, errorStatus(sm.ErrInvalidFrameRate))
	assert.Equal(http.StatusInternalServerError, errorStatus(errors.New("decoder failed")))
}

func TestResolve(t *testing.T) {
	s, root := newTestServer(t)

	got, err := s.resolve("frames")
	require.NoError(t, err)
	abs, _ := filepath.Abs(root)
	assert.Equal(t, filepath.Join(abs, "frames"), got)

	_, err = s.resolve("a/../../b")
	assert.Error(t, err)
}
