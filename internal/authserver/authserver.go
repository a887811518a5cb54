// Package authserver runs the small HTTP server that receives the Reddit
// OAuth redirect and completes the authorization-code exchange.
package authserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// How long a pending authorization may sit before its state token dies.
const stateTTL = 10 * time.Minute

// CodeExchanger swaps an authorization code for tokens and persists them.
// Implemented by reddit.Client.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code, teamID, userID string) error
}

// pendingAuth ties a state token back to the identity that initiated it.
type pendingAuth struct {
	teamID    string
	userID    string
	createdAt time.Time
}

// Server handles /oauth/reddit/callback and tracks outstanding state
// tokens. States are single use and expire after ten minutes.
type Server struct {
	exchanger CodeExchanger
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]pendingAuth
	now     func() time.Time

	httpServer *http.Server
}

// New creates an auth callback server listening on addr once Start is
// called.
func New(addr string, exchanger CodeExchanger, logger *slog.Logger) (*Server, error) {
	if exchanger == nil {
		return nil, fmt.Errorf("code exchanger is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		exchanger: exchanger,
		logger:    logger,
		pending:   make(map[string]pendingAuth),
		now:       time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/oauth/reddit/callback", s.handleCallback)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// NewState registers a pending authorization for the identity and returns
// the opaque state token to embed in the authorize URL.
func (s *Server) NewState(teamID, userID string) string {
	state := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[state] = pendingAuth{teamID: teamID, userID: userID, createdAt: s.now()}

	for token, p := range s.pending {
		if s.now().Sub(p.createdAt) > stateTTL {
			delete(s.pending, token)
		}
	}
	return state
}

// consumeState validates and removes a state token. A token is valid at
// most once.
func (s *Server) consumeState(state string) (pendingAuth, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[state]
	if !ok {
		return pendingAuth{}, false
	}
	delete(s.pending, state)
	if s.now().Sub(p.createdAt) > stateTTL {
		return pendingAuth{}, false
	}
	return p, true
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errCode := q.Get("error"); errCode != "" {
		s.logger.Warn("oauth callback returned error", "error", errCode)
		writePage(w, http.StatusBadRequest, "Authorization failed",
			fmt.Sprintf("Reddit reported: %s. Close this window and try again.", errCode))
		return
	}

	state := q.Get("state")
	code := q.Get("code")
	if state == "" || code == "" {
		writePage(w, http.StatusBadRequest, "Authorization failed",
			"Missing state or code parameter.")
		return
	}

	pending, ok := s.consumeState(state)
	if !ok {
		s.logger.Warn("oauth callback with unknown or expired state")
		writePage(w, http.StatusBadRequest, "Authorization failed",
			"This authorization link is invalid or has expired. Start over and try again.")
		return
	}

	if err := s.exchanger.ExchangeCode(r.Context(), code, pending.teamID, pending.userID); err != nil {
		s.logger.Error("code exchange failed", "error", err,
			"team_id", pending.teamID, "user_id", pending.userID)
		writePage(w, http.StatusInternalServerError, "Authorization failed",
			"Could not complete the token exchange. Check the server logs.")
		return
	}

	s.logger.Info("reddit account connected",
		"team_id", pending.teamID, "user_id", pending.userID)
	writePage(w, http.StatusOK, "Reddit connected",
		"Your Reddit account is connected. You can close this window.")
}

// Start serves until the context is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("auth callback server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("auth server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func writePage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body style="font-family: sans-serif; max-width: 40em; margin: 4em auto;">
<h1>%s</h1>
<p>%s</p>
</body>
</html>
`, title, title, message)
}
