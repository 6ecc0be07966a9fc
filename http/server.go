package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/docchat"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before shutdown.
const ShutdownTimeout = 5 * time.Second

// maxRequestSize caps the chat request body.
const maxRequestSize = 1 << 20

// NDJSONContentType is the media type of the chat stream.
const NDJSONContentType = "application/x-ndjson"

// Server is the HTTP boundary in front of the chat relay.
type Server struct {
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	// Addr is the bind address, e.g. ":3002".
	Addr string

	Logger *slog.Logger

	Relay docchat.ChatRelay
	Sites docchat.SiteService

	// Limiter throttles chat requests per client. Nil disables limiting.
	Limiter *ClientLimiter
}

// NewServer returns a Server with routes registered. Dependencies are set
// on the returned value before Open is called.
func NewServer() *Server {
	s := &Server{
		server: &http.Server{},
		router: chi.NewRouter(),
		Logger: slog.New(slog.DiscardHandler),
	}
	s.server.Handler = s.router

	s.router.Use(RequestIDMiddleware)
	// Logger is read per request so it can be replaced after NewServer.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			LoggingMiddleware(s.Logger)(next).ServeHTTP(w, r)
		})
	})
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/sites", s.handleSites)
		r.With(s.rateLimit).Post("/chat", s.handleChat)
	})

	return s
}

// Open starts listening on Addr and serves in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("serve", "err", err)
		}
	}()
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port returns the bound TCP port, or 0 before Open.
func (s *Server) Port() int {
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// ServeHTTP routes a request. It lets tests drive the server without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ChatRequest is the body of POST /api/chat. URL may also be a registered
// site alias.
type ChatRequest struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestSize)).Decode(&req); err != nil {
		Error(w, r, docchat.Errorf(docchat.EINVALID, "invalid JSON body"))
		return
	}
	if req.URL == "" || req.Message == "" {
		Error(w, r, docchat.Errorf(docchat.EINVALID, "url and message are required"))
		return
	}

	siteURL := req.URL
	if s.Sites != nil {
		resolved, err := docchat.ResolveSiteURL(r.Context(), s.Sites, req.URL)
		if err != nil {
			if docchat.ErrorCode(err) == docchat.ENOTFOUND {
				err = docchat.Errorf(docchat.EINVALID, "%s", docchat.ErrorMessage(err))
			}
			Error(w, r, err)
			return
		}
		siteURL = resolved
	}
	AddLogField(r.Context(), "site", siteURL)

	// Stops the relay when this handler returns, including on client disconnect.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	w.Header().Set("Content-Type", NDJSONContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for e := range s.Relay.Run(ctx, siteURL, req.Message) {
		if err := enc.Encode(e); err != nil {
			AddError(r.Context(), err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		if e.Type == docchat.EventError {
			AddLogField(r.Context(), "relay_error", e.Content)
		}
	}
}

// SiteResponse is one entry of GET /api/sites.
type SiteResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.Sites.FindSites(r.Context(), docchat.SiteFilter{})
	if err != nil {
		Error(w, r, err)
		return
	}

	resp := make([]SiteResponse, 0, len(sites))
	for _, site := range sites {
		resp = append(resp, SiteResponse{
			ID:          site.ID,
			Name:        site.Name(),
			URL:         site.URL,
			Description: site.Description,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Limiter != nil && !s.Limiter.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", "1")
			Error(w, r, errTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller by remote IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

var errTooManyRequests = errors.New("too many requests")

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	docchat.EINVALID:  http.StatusBadRequest,
	docchat.ENOTFOUND: http.StatusNotFound,
	docchat.EINTERNAL: http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// Error writes err as a JSON error response. Internal errors are logged
// and their details are not exposed.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := ErrorStatusCode(docchat.ErrorCode(err))
	message := docchat.ErrorMessage(err)
	if errors.Is(err, errTooManyRequests) {
		status, message = http.StatusTooManyRequests, err.Error()
	}

	AddError(r.Context(), err)
	writeJSON(w, status, &ErrorResponse{Error: message})
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
