package buildapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-mudbuild/internal/props"
	"github.com/pixil98/go-mudbuild/internal/storage"
)

const (
	defaultAddr            = "127.0.0.1:4000"
	defaultShutdownTimeout = 5 * time.Second
)

// PropertyStore is the persistence the server writes through.
type PropertyStore interface {
	Get(key props.TableKey) []props.Record
	Tables() []props.TableKey
	Set(rec props.Record) (props.TableKey, error)
	Add(key props.TableKey, name string, val props.Value) (props.Record, error)
}

// Notifier is told about every successful write.
type Notifier interface {
	Notify(key props.TableKey, rec props.Record) error
}

// Server serves the property endpoints used by editors.
type Server struct {
	store    PropertyStore
	notifier Notifier
	feed     *feedHub

	addr            string
	shutdownTimeout time.Duration
	secureCookies   bool
}

type ServerOpt func(*Server)

func WithAddr(addr string) ServerOpt {
	return func(s *Server) {
		s.addr = addr
	}
}

func WithNotifier(n Notifier) ServerOpt {
	return func(s *Server) {
		s.notifier = n
	}
}

func WithShutdownTimeout(d time.Duration) ServerOpt {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// WithSecureCookies marks the xsrf cookie Secure, for servers behind TLS.
func WithSecureCookies(secure bool) ServerOpt {
	return func(s *Server) {
		s.secureCookies = secure
	}
}

func NewServer(store PropertyStore, opts ...ServerOpt) *Server {
	s := &Server{
		store:           store,
		feed:            newFeedHub(),
		addr:            defaultAddr,
		shutdownTimeout: defaultShutdownTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler returns the routes of the build API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+PathHealth, s.handleHealth)
	mux.HandleFunc("GET "+PathSession, s.handleSession)
	mux.HandleFunc("GET "+PathTables, s.handleTables)
	mux.HandleFunc("GET "+PathProps, s.handleProps)
	mux.HandleFunc("GET "+PathFeed, s.feed.serve)
	mux.HandleFunc("POST "+PathSetProp, s.requireXSRF(s.handleSetProp))
	mux.HandleFunc("POST "+PathAddProp, s.requireXSRF(s.handleAddProp))
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	slog.InfoContext(ctx, "build server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

// handleSession issues the anti-forgery token for this client, reusing
// the one already in its cookie.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(XSRFName); err == nil && c.Value != "" {
		token = c.Value
	} else {
		token = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     XSRFName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secureCookies,
			SameSite: http.SameSiteStrictMode,
		})
	}

	writeJSON(w, http.StatusOK, sessionResponse{XSRF: token})
}

func (s *Server) handleTables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, tablesResponse{Tables: s.store.Tables()})
}

func (s *Server) handleProps(w http.ResponseWriter, r *http.Request) {
	key, err := props.ParseTableKey(r.URL.Query().Get("table"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, propsResponse{Table: key, Props: s.store.Get(key)})
}

func (s *Server) handleSetProp(w http.ResponseWriter, r *http.Request) {
	val, err := decodeFormValue(r.PostFormValue("val"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := props.Record{
		ID:  r.PostFormValue("id"),
		Key: r.PostFormValue("key"),
		Val: val,
	}
	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := s.store.Set(rec)
	if err != nil {
		s.writeStoreError(r.Context(), w, err)
		return
	}

	slog.InfoContext(r.Context(), "property set", "table", key.String(), "id", rec.ID, "key", rec.Key)
	s.notify(r.Context(), key, rec)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAddProp(w http.ResponseWriter, r *http.Request) {
	key, err := props.ParseTableKey(r.PostFormValue("table"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var val props.Value = props.Empty(props.KindText)
	if raw := r.PostFormValue("val"); raw != "" {
		val, err = decodeFormValue(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	name := r.PostFormValue("key")
	if err := props.ValidateKey(name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.store.Add(key, name, val)
	if err != nil {
		s.writeStoreError(r.Context(), w, err)
		return
	}

	slog.InfoContext(r.Context(), "property added", "table", key.String(), "id", rec.ID, "key", rec.Key)
	s.notify(r.Context(), key, rec)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) notify(ctx context.Context, key props.TableKey, rec props.Record) {
	s.feed.broadcast(key, rec)
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(key, rec); err != nil {
		slog.WarnContext(ctx, "publishing property change", "table", key.String(), "id", rec.ID, "error", err)
	}
}

// requireXSRF rejects requests whose form token does not match the
// token cookie.
func (s *Server) requireXSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(XSRFName)
		form := r.PostFormValue(XSRFName)
		if err != nil || c.Value == "" || subtle.ConstantTimeCompare([]byte(c.Value), []byte(form)) != 1 {
			slog.WarnContext(r.Context(), "rejected request without valid xsrf token", "path", r.URL.Path)
			writeError(w, http.StatusForbidden, "'_xsrf' argument missing or invalid")
			return
		}
		next(w, r)
	}
}

func (s *Server) writeStoreError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrPropNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrKeyInUse):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(ctx, "writing property", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to store property")
	}
}

func decodeFormValue(raw string) (props.Value, error) {
	if raw == "" {
		return nil, fmt.Errorf("val must be set")
	}
	val, err := props.DecodeValue([]byte(raw))
	if err != nil {
		return nil, err
	}
	if _, ok := props.KindOf(val); !ok {
		return nil, fmt.Errorf("val has unrecognized type")
	}
	return val, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("writing response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
