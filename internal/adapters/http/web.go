package web

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"facilitydesk/internal/adapters/email"
	"facilitydesk/internal/adapters/http/middleware"
	"facilitydesk/internal/adapters/http/perf"
	facilityStore "facilitydesk/internal/adapters/storage/facility"
	memberStore "facilitydesk/internal/adapters/storage/member"
	membershipStore "facilitydesk/internal/adapters/storage/membership"
	planStore "facilitydesk/internal/adapters/storage/plan"
	transactionStore "facilitydesk/internal/adapters/storage/transaction"
	"facilitydesk/internal/domain/membership"
)

// homeCacheAge is how long browsers may reuse the home payload.
const homeCacheAge = time.Minute

// Stores holds all storage dependencies.
type Stores struct {
	FacilityStore    facilityStore.Store
	PlanStore        planStore.Store
	MemberStore      memberStore.Store
	MembershipStore  membershipStore.Store
	TransactionStore transactionStore.Store
}

// Options configures the router.
type Options struct {
	Log                logrus.FieldLogger
	Location           *time.Location // default facility zone
	HorizonDays        int
	Production         bool
	CSRFKey            []byte // required when Production is set
	TrustedOrigins     []string
	RateLimitPerSecond int
	SlowRequest        time.Duration
	Collector          *perf.Collector // nil disables the perf endpoint
	EmailSender        email.Sender
	EmailFrom          string
	Health             func(ctx context.Context) error
}

// resolveCSRFKey returns key, or a random key outside production.
func resolveCSRFKey(key []byte, production bool, log logrus.FieldLogger) ([]byte, error) {
	if len(key) == 32 {
		return key, nil
	}
	if len(key) != 0 {
		return nil, errors.New("CSRF key must be 32 bytes")
	}
	if production {
		return nil, errors.New("CSRF key is required in production")
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	log.Warn("using random CSRF key; form sessions won't survive restart")
	return key, nil
}

// NewRouter wires HTTP handlers for the app.
func NewRouter(s *Stores, opts Options) (http.Handler, error) {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = membership.DefaultHorizonDays
	}
	if opts.RateLimitPerSecond <= 0 {
		opts.RateLimitPerSecond = 10
	}
	if opts.EmailSender == nil {
		opts.EmailSender = email.NewNoopSender(opts.Log)
	}
	csrfKey, err := resolveCSRFKey(opts.CSRFKey, opts.Production, opts.Log)
	if err != nil {
		return nil, err
	}

	h := &handlers{stores: s, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.Timing(opts.Collector, opts.Log, opts.SlowRequest))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RateLimit(opts.RateLimitPerSecond, opts.Log))
	r.Use(middleware.CSRF(csrfKey, opts.Production, opts.TrustedOrigins))

	r.Get("/healthz", h.handleHealthz)
	if opts.Collector != nil {
		r.Get("/api/debug/perf", h.handlePerf)
	}

	r.Route("/api/facilities/{facilityID}", func(r chi.Router) {
		r.With(middleware.CachePrivate(homeCacheAge)).Get("/home", h.handleHome)
		r.Get("/settings", h.handleSettings)
		r.Get("/transactions", h.handleTransactions)
		r.Get("/members", h.handleMembers)
		r.Post("/members", h.handleRegisterMember)
		r.Post("/members/{memberID}/memberships", h.handleStartMembership)
		r.Post("/members/{memberID}/payments", h.handleRecordPayment)
		r.Get("/birthdays/{memberID}/wish", h.handleBirthdayWish)
		r.Post("/greetings/birthdays", h.handleSendGreetings)
	})

	return r, nil
}
