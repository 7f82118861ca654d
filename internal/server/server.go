// Package server provides HTTP and WebSocket access to activity events
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	apperrors "github.com/GriffinCanCode/glimpse/internal/errors"
	"github.com/GriffinCanCode/glimpse/internal/event"
	"github.com/GriffinCanCode/glimpse/internal/segment"
	"github.com/GriffinCanCode/glimpse/internal/store"
	"github.com/GriffinCanCode/glimpse/internal/summarize"
	"github.com/GriffinCanCode/glimpse/internal/trace"
)

// eventJSON is the wire shape of an activity event.
type eventJSON struct {
	ID              string   `json:"id"`
	TsStart         int64    `json:"ts_start"`
	TsEnd           int64    `json:"ts_end"`
	AppBundle       string   `json:"app_bundle"`
	AppName         string   `json:"app_name"`
	WindowTitle     string   `json:"window_title"`
	Summary         string   `json:"summary"`
	Tags            []string `json:"tags"`
	SensitivityFlag string   `json:"sensitivity_flag"`
	ThumbnailPath   string   `json:"thumbnail_path,omitempty"`
	TextSnippet     string   `json:"text_snippet,omitempty"`
}

func toEventJSON(ev event.Event) eventJSON {
	snippet := ev.TextSnippet
	if len(snippet) > TextPreviewLimit {
		snippet = snippet[:TextPreviewLimit] + "..."
	}
	tags := ev.Tags
	if tags == nil {
		tags = []string{}
	}
	return eventJSON{
		ID:              ev.ID,
		TsStart:         ev.Start.Unix(),
		TsEnd:           ev.End.Unix(),
		AppBundle:       ev.BundleID,
		AppName:         ev.AppName,
		WindowTitle:     ev.WindowTitle,
		Summary:         ev.Summary,
		Tags:            tags,
		SensitivityFlag: ev.Sensitivity.String(),
		ThumbnailPath:   ev.ThumbnailPath,
		TextSnippet:     snippet,
	}
}

// EventMessage is pushed to WebSocket clients whenever an event finalizes.
type EventMessage struct {
	Type  string    `json:"type"`
	Event eventJSON `json:"event"`
}

type RateLimitedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// settingsJSON is the wire shape of segmenter settings.
type settingsJSON struct {
	FrameDiffThreshold  float64  `json:"frame_diff_threshold"`
	IdleCoalesceSeconds float64  `json:"idle_coalesce_seconds"`
	ExcludedApps        []string `json:"excluded_apps"`
	SaveThumbnails      bool     `json:"save_thumbnails"`
	ThumbnailMaxWidth   int      `json:"thumbnail_max_width"`
}

func toSettingsJSON(s segment.Settings) settingsJSON {
	apps := s.ExcludedApps
	if apps == nil {
		apps = []string{}
	}
	return settingsJSON{
		FrameDiffThreshold:  s.FrameDiffThreshold,
		IdleCoalesceSeconds: s.IdleCoalesce.Seconds(),
		ExcludedApps:        apps,
		SaveThumbnails:      s.SaveThumbnails,
		ThumbnailMaxWidth:   s.ThumbnailMaxWidth,
	}
}

func (s settingsJSON) toSettings() segment.Settings {
	return segment.Settings{
		FrameDiffThreshold: s.FrameDiffThreshold,
		IdleCoalesce:       time.Duration(s.IdleCoalesceSeconds * float64(time.Second)),
		ExcludedApps:       s.ExcludedApps,
		SaveThumbnails:     s.SaveThumbnails,
		ThumbnailMaxWidth:  s.ThumbnailMaxWidth,
	}
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	seg        *segment.Segmenter
	store      store.Store
	summarizer *summarize.Client

	mu         sync.RWMutex
	conns      map[*websocket.Conn]struct{}
	rateLimits map[*websocket.Conn]*rateLimiter

	broadcastDone chan struct{}
}

// New creates a server and starts the finalized-event broadcaster. The
// broadcaster exits when the segmenter is closed; Done reports that.
func New(seg *segment.Segmenter, st store.Store, summarizer *summarize.Client) *Server {
	s := &Server{
		seg:           seg,
		store:         st,
		summarizer:    summarizer,
		conns:         make(map[*websocket.Conn]struct{}),
		rateLimits:    make(map[*websocket.Conn]*rateLimiter),
		broadcastDone: make(chan struct{}),
	}

	go s.broadcastEvents()

	return s
}

// Done is closed once the broadcaster has drained and exited.
func (s *Server) Done() <-chan struct{} {
	return s.broadcastDone
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	// REST API
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/settings", s.handleSettingsGet)
	mux.HandleFunc("POST /api/settings", s.handleSettingsPost)
	mux.HandleFunc("POST /api/flush", s.handleFlush)

	// Apply middleware: trace -> CORS
	return corsMiddleware(trace.Middleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.rateLimits[conn] = &rateLimiter{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		delete(s.rateLimits, conn)
		s.mu.Unlock()
	}()

	baseCtx := r.Context()
	log := trace.Logger(baseCtx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	// The connection is push-only; the read loop exists to notice closes
	// and throttle clients that send anyway.
	for {
		var msg json.RawMessage
		if err := wsjson.Read(baseCtx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		s.mu.RLock()
		rl := s.rateLimits[conn]
		s.mu.RUnlock()

		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(baseCtx, conn, RateLimitedMessage{
				Type:    "error",
				Message: "rate limit exceeded",
			})
		}
	}
}

// broadcastEvents fans finalized events out to every connected client.
// Returns when the segmenter closes its events channel.
func (s *Server) broadcastEvents() {
	defer close(s.broadcastDone)
	for ev := range s.seg.Events() {
		msg := EventMessage{Type: "event", Event: toEventJSON(ev)}

		s.mu.RLock()
		for conn := range s.conns {
			go func(c *websocket.Conn) {
				_ = wsjson.Write(context.Background(), c, msg)
			}(conn)
		}
		s.mu.RUnlock()
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "search_events")
	defer span.End()

	q := store.Query{
		Keyword:   r.URL.Query().Get("keyword"),
		AppBundle: r.URL.Query().Get("app"),
	}
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from")
			return
		}
		q.From = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to")
			return
		}
		q.To = t
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		q.Limit = n
	}

	events, err := s.store.Search(ctx, q)
	if err != nil {
		span.SetAttr("error", err.Error())
		trace.Logger(ctx).Error("event search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	out := make([]eventJSON, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventJSON(ev))
	}
	writeJSON(w, map[string]any{"events": out})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	since := time.Now().Add(-DefaultStatsWindow)
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since")
			return
		}
		since = t
	}

	count, err := s.store.CountEventsSince(ctx, since)
	if err != nil {
		trace.Logger(ctx).Error("stats query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "stats failed")
		return
	}

	writeJSON(w, map[string]any{
		"count": count,
		"since": since.Unix(),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "summarize_events")
	defer span.End()

	if s.summarizer == nil || !s.summarizer.Enabled() {
		writeError(w, http.StatusNotImplemented, "summarizer not configured")
		return
	}

	from := time.Now().Add(-DefaultSummaryWindow)
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from")
			return
		}
		from = t
	}

	events, err := s.store.Search(ctx, store.Query{From: from})
	if err != nil {
		trace.Logger(ctx).Error("summary search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	summaries := make([]string, 0, len(events))
	for _, ev := range events {
		// Placeholders carry no content worth digesting.
		if ev.Summary == segment.RedactedTitle {
			continue
		}
		summaries = append(summaries, ev.Summary)
	}

	digest, err := s.summarizer.Summarize(ctx, summaries)
	if err != nil {
		span.SetAttr("error", err.Error())
		status := http.StatusBadGateway
		if apperrors.IsCode(err, apperrors.SummarizerRateLimited) {
			status = http.StatusTooManyRequests
		}
		writeError(w, status, "summarize failed")
		return
	}

	writeJSON(w, map[string]any{
		"digest": digest,
		"events": len(summaries),
	})
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, toSettingsJSON(s.seg.SettingsSnapshot()))
}

func (s *Server) handleSettingsPost(w http.ResponseWriter, r *http.Request) {
	var in settingsJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings body")
		return
	}
	if in.FrameDiffThreshold < 0 || in.FrameDiffThreshold > 1 {
		writeError(w, http.StatusBadRequest, "frame_diff_threshold out of range")
		return
	}

	s.seg.UpdateSettings(in.toSettings())
	writeJSON(w, toSettingsJSON(s.seg.SettingsSnapshot()))
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	s.seg.Flush(r.Context())
	writeJSON(w, map[string]string{"status": "flushed"})
}

// parseTime accepts RFC 3339 or unix epoch seconds.
func parseTime(v string) (time.Time, error) {
	if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(sec, 0), nil
	}
	return time.Parse(time.RFC3339, v)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
