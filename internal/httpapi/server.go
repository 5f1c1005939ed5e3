package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"neurod/internal/notes"
	"neurod/pkg/types"
)

// Service defines the generation-side methods required by the HTTP API layer.
type Service interface {
	ListEndpoints() []types.Endpoint
	Status() types.StatusResponse
	Generate(ctx context.Context, req types.GenerateRequest, w io.Writer, flush func()) error
	Ready() bool
}

// NotesService defines the note storage and search methods.
type NotesService interface {
	Create(ctx context.Context, text string, seed int64) (notes.Note, error)
	Search(ctx context.Context, query string, topK int) ([]notes.Match, error)
	Count() int
}

func NewMux(svc Service, ns NotesService) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/endpoints", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.EndpointsResponse{Endpoints: svc.ListEndpoints()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		st := svc.Status()
		if ns != nil {
			st.Notes = ns.Count()
		}
		if err := json.NewEncoder(w).Encode(st); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Post("/generate", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeJSON[types.GenerateRequest](w, r)
		if !ok {
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}

		// Stream NDJSON via manager.Generate (centralized logic)
		w.Header().Set("Content-Type", "application/x-ndjson")
		var flush func()
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}
		start := time.Now()
		// Optional logging of NDJSON tokens
		writer := io.Writer(w)
		lvl := requestLogLevel(r)
		if lvl >= LevelDebug {
			writer = io.MultiWriter(w, &loggingLineWriter{})
		}
		logEvent(lvl, r, "generate start", 0, 0, nil)
		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if d := generateTimeout; d > 0 {
			var tcancel context.CancelFunc
			joinedCtx, tcancel = context.WithTimeout(joinedCtx, d)
			defer tcancel()
		}
		if err := svc.Generate(joinedCtx, req, writer, flush); err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusForError(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure("queue_full")
			}
			writeJSONError(w, status, err.Error())
			logEvent(lvl, r, "generate end", status, time.Since(start), err)
			return
		}
		logEvent(lvl, r, "generate end", http.StatusOK, time.Since(start), nil)
	})

	r.Post("/notes", func(w http.ResponseWriter, r *http.Request) {
		if ns == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "notes store not configured")
			return
		}
		req, ok := decodeJSON[types.NoteCreateRequest](w, r)
		if !ok {
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeJSONError(w, http.StatusBadRequest, "text is required")
			return
		}
		note, err := ns.Create(r.Context(), req.Text, req.Seed)
		if err != nil {
			writeJSONError(w, http.StatusBadGateway, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(noteResponse(note))
	})

	r.Post("/notes/search", func(w http.ResponseWriter, r *http.Request) {
		if ns == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "notes store not configured")
			return
		}
		req, ok := decodeJSON[types.SearchRequest](w, r)
		if !ok {
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			writeJSONError(w, http.StatusBadRequest, "query is required")
			return
		}
		matches, err := ns.Search(r.Context(), req.Query, req.TopK)
		if err != nil {
			writeJSONError(w, http.StatusBadGateway, err.Error())
			return
		}
		resp := types.SearchResponse{Matches: make([]types.SearchMatch, 0, len(matches))}
		for _, m := range matches {
			resp.Matches = append(resp.Matches, types.SearchMatch{Note: noteResponse(m.Note), Score: m.Score})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// decodeJSON enforces the JSON content type and body size limit before
// decoding into T. On failure it writes the error response and returns false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return req, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	return req, true
}

func noteResponse(n notes.Note) types.NoteResponse {
	return types.NoteResponse{
		ID:          n.ID,
		Text:        n.Text,
		CreatedUnix: n.CreatedUnix,
		Signal: types.SignalFeatures{
			RMS:          n.Signal.RMS,
			PeakToPeak:   n.Signal.PeakToPeak,
			DominantBand: n.Signal.DominantBand,
			PeakFreqHz:   n.Signal.PeakFreqHz,
		},
	}
}

// logEvent emits a request log line at or above info level, via zerolog when
// installed.
func logEvent(lvl LogLevel, r *http.Request, msg string, status int, dur time.Duration, err error) {
	if lvl < LevelInfo {
		return
	}
	if zlog != nil {
		z := zlog.Info().Str("path", r.URL.Path)
		if status > 0 {
			z = z.Int("status", status).Dur("dur", dur)
		}
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		if err != nil {
			z = z.Err(err)
		}
		z.Msg(msg)
		return
	}
	if status > 0 {
		log.Printf("%s path=%s status=%d dur=%s err=%v", msg, r.URL.Path, status, dur, err)
		return
	}
	log.Printf("%s path=%s", msg, r.URL.Path)
}
