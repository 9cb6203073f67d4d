package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	sm "synthmidi/pkg/synthmidi"
)

func getListenAddr() string {
	if addr := os.Getenv("SYNTHMIDI_ADDR"); addr != "" {
		return addr
	}
	return ":8080"
}

func getMediaDir() string {
	if dir := os.Getenv("SYNTHMIDI_MEDIA"); dir != "" {
		return dir
	}
	return "."
}

var (
	serveAddr  string
	serveMedia string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve note extraction over HTTP",
	Long: `Serve note extraction over HTTP. POST /extract takes a JSON body naming a
video (or frame directory) below the media directory and returns the notes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := &server{mediaDir: serveMedia, log: logger}
		logger.Info("serving", zap.String("addr", serveAddr), zap.String("media", serveMedia))
		return http.ListenAndServe(serveAddr, cors.Default().Handler(srv.router()))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", getListenAddr(), "listen address (env SYNTHMIDI_ADDR)")
	serveCmd.Flags().StringVar(&serveMedia, "media", getMediaDir(), "directory videos are resolved against (env SYNTHMIDI_MEDIA)")
	rootCmd.AddCommand(serveCmd)
}

type extractRequest struct {
	Video         string          `json:"video"`
	Skip          *float64        `json:"skip,omitempty"`
	Tempo         float64         `json:"tempo,omitempty"`
	FPS           float64         `json:"fps,omitempty"`
	MinDuration   *float64        `json:"min_duration,omitempty"`
	ReleaseFrames int             `json:"release_frames,omitempty"`
	Calibration   *sm.Calibration `json:"calibration,omitempty"`
	IncludeMIDI   bool            `json:"include_midi,omitempty"`
}

type extractResponse struct {
	ID       string         `json:"id"`
	Notes    []sm.NoteEvent `json:"notes"`
	Summary  *sm.Summary    `json:"summary,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	MIDI     []byte         `json:"midi,omitempty"`
}

type errorResponse struct {
	Error string `json:"detail"`
}

type server struct {
	mediaDir string
	log      *zap.Logger
}

func (s *server) router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/extract", s.handleExtract).Methods(http.MethodPost)
	return router
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolve maps a request path onto the media directory, rejecting escapes.
func (s *server) resolve(name string) (string, error) {
	if name == "" {
		return "", errors.New("video is required")
	}
	root, err := filepath.Abs(s.mediaDir)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.FromSlash(name))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("video %q is outside the media directory", name)
	}
	return full, nil
}

func (s *server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not decode request body: " + err.Error()})
		return
	}
	path, err := s.resolve(req.Video)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cal := sm.DefaultCalibration()
	if req.Calibration != nil {
		cal = *req.Calibration
		if cal.KeyRow == 0 {
			cal.KeyRow = sm.DefaultCalibration().KeyRow
		}
	}
	p := sm.NewExtractParams()
	p.Logger = s.log
	p.ProgressInterval = 0
	if req.Skip != nil {
		p.SkipSeconds = *req.Skip
	}
	if req.MinDuration != nil {
		p.Debounce.MinDuration = *req.MinDuration
	}
	if req.ReleaseFrames > 0 {
		p.Debounce.ReleaseFrames = req.ReleaseFrames
	}
	tempo := sm.DefaultTempo
	if req.Tempo > 0 {
		tempo = req.Tempo
	}
	fps := 30.0
	if req.FPS > 0 {
		fps = req.FPS
	}

	ex, err := sm.NewExtractor(cal, p)
	if err != nil {
		writeJSON(w, errorStatus(err), errorResponse{Error: err.Error()})
		return
	}
	src, err := openSource(path, fps)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	defer src.Close()

	result, err := ex.Extract(r.Context(), src)
	if err != nil {
		writeJSON(w, errorStatus(err), errorResponse{Error: err.Error()})
		return
	}

	resp := extractResponse{
		ID:       result.RunID,
		Notes:    sm.NewTimeline(result.Notes...).Sorted(),
		Summary:  sm.Summarize(result.Notes),
		Warnings: result.Warnings,
	}
	if resp.Notes == nil {
		resp.Notes = []sm.NoteEvent{}
	}
	if req.IncludeMIDI {
		var buf bytes.Buffer
		if err := sm.WriteSMF(&buf, result.Notes, tempo); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		resp.MIDI = buf.Bytes()
	}
	writeJSON(w, http.StatusOK, resp)
}

// errorStatus maps extraction configuration errors to 422 and anything else to 500.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, sm.ErrTooFewCalibrationPoints),
		errors.Is(err, sm.ErrInvalidCalibration),
		errors.Is(err, sm.ErrInvalidParams),
		errors.Is(err, sm.ErrInvalidFrameRate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
