// Package web provides the configuration and status server for the clock.
package web

import (
	"context"
	"io"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/sweeney/oledclock/internal/app"
	"github.com/sweeney/oledclock/internal/status"
)

// MaxLocationLen is the longest accepted weather location, in bytes.
const MaxLocationLen = 31

// SettingsWriter persists settings.
type SettingsWriter interface {
	Set(key, value string) error
}

// Screen produces an image of the current display.
type Screen interface {
	PNG(w io.Writer) error
}

// Deps are the server's collaborators. Screen and Notify may be nil.
type Deps struct {
	Tracker  *status.Tracker
	Settings SettingsWriter
	Screen   Screen
	// Notify receives a value after the location changes. Sends never block.
	Notify chan<- struct{}
}

// Server serves the status page and the settings form over HTTP.
type Server struct {
	httpServer *http.Server
	deps       Deps
}

// New creates a Server listening on addr.
func New(addr string, deps Deps) *Server {
	s := &Server{deps: deps}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	for _, path := range []string{"/", "/index.html"} {
		r.HandleFunc(path, s.handleIndex).Methods(http.MethodGet, http.MethodHead)
		r.HandleFunc(path, s.handleSetLocation).Methods(http.MethodPost)
	}
	r.HandleFunc("/index.json", s.handleJSON).Methods(http.MethodGet)
	r.HandleFunc("/screen.png", s.handleScreen).Methods(http.MethodGet)
	return r
}

// Handler returns the server's request router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	msg := ""
	if r.URL.Query().Get("saved") != "" {
		msg = "Location saved"
	}
	s.renderIndex(w, http.StatusOK, msg, "")
}

func (s *Server) renderIndex(w http.ResponseWriter, code int, msg, errMsg string) {
	snap := s.deps.Tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	renderHTML(w, snap, msg, errMsg)
}

// ValidateLocation trims v and checks its length.
func ValidateLocation(v string) (string, bool) {
	v = strings.TrimSpace(v)
	return v, len(v) > 0 && len(v) <= MaxLocationLen
}

func (s *Server) handleSetLocation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, http.StatusBadRequest, "", "invalid form")
		return
	}
	loc, ok := ValidateLocation(r.PostFormValue("location"))
	if !ok {
		s.renderIndex(w, http.StatusBadRequest, "", "location must be 1-31 characters")
		return
	}
	if err := s.deps.Settings.Set(app.SettingLocation, loc); err != nil {
		log.Printf("http: save location: %v", err)
		s.renderIndex(w, http.StatusInternalServerError, "", "could not save location")
		return
	}
	log.Printf("http: weather location set to %q", loc)

	if s.deps.Notify != nil {
		select {
		case s.deps.Notify <- struct{}{}:
		default:
			// A refresh is already pending.
		}
	}
	http.Redirect(w, r, "/?saved=1", http.StatusSeeOther)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.deps.Tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	if s.deps.Screen == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.deps.Screen.PNG(w); err != nil {
		log.Printf("http: encode screen: %v", err)
	}
}
