// Package httpapi exposes the public HTTP surface: the authentication flow
// and the owner-scoped data endpoints. The auth middleware is where the
// principal identity enters the request context; everything below it reads
// the identity ambiently.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/healthboard/healthboard/internal/logging"
	"github.com/healthboard/healthboard/internal/server/fitness"
	"github.com/healthboard/healthboard/internal/server/healthlogs"
	"github.com/healthboard/healthboard/internal/server/reminders"
	"github.com/healthboard/healthboard/internal/server/users"
)

const shutdownTimeout = 5 * time.Second

// UserService is the authentication state machine consumed by the handlers.
type UserService interface {
	Register(ctx context.Context, email, password string) (*users.AuthResult, error)
	Login(ctx context.Context, email, password string) (*users.AuthResult, error)
	BeginMFASetup(ctx context.Context) (*users.MFASetup, error)
	VerifyMFA(ctx context.Context, code string) (*users.AuthResult, error)
}

type HealthLogService interface {
	Create(ctx context.Context, logType, value, notes string) (*healthlogs.Log, error)
	List(ctx context.Context) ([]*healthlogs.Log, error)
	Delete(ctx context.Context, id string) error
}

type ReminderService interface {
	Create(ctx context.Context, title string, frequencyMinutes int) (*reminders.Reminder, error)
	ListActive(ctx context.Context) ([]*reminders.Reminder, error)
}

type FitnessService interface {
	AuthURL() string
	Sync(ctx context.Context, code string) (*fitness.SyncResult, error)
}

type Server struct {
	address   string
	log       logging.Logger
	jwtSecret []byte
	users     UserService
	logs      HealthLogService
	reminders ReminderService
	fitness   FitnessService
}

func NewServer(address string, log logging.Logger, secretKey string,
	us UserService, ls HealthLogService, rs ReminderService, fs FitnessService) *Server {
	return &Server{
		address:   address,
		log:       log.With("module", "http_server"),
		jwtSecret: []byte(secretKey),
		users:     us,
		logs:      ls,
		reminders: rs,
		fitness:   fs,
	}
}

// Router assembles the route tree. Split out from Run so tests can drive the
// handlers through httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// anonymous: these run with no imprinted identity and touch only
			// the policy-free principal table
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)

			// pending tokens allowed; scope is checked by the service
			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)
				r.Get("/mfa/setup", s.handleMFASetup)
				r.Post("/mfa/verify", s.handleMFAVerify)
			})
		})

		// data endpoints require a full-scope token
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate, s.requireFull)

			r.Post("/logs", s.handleCreateLog)
			r.Get("/logs", s.handleListLogs)
			r.Delete("/logs/{id}", s.handleDeleteLog)

			r.Post("/reminders", s.handleCreateReminder)
			r.Get("/reminders", s.handleListReminders)

			r.Get("/integration/google/auth-url", s.handleFitnessAuthURL)
			r.Post("/integration/google/sync", s.handleFitnessSync)
		})
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.log.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
