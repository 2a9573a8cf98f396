package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"facilitydesk/internal/adapters/email"
	web "facilitydesk/internal/adapters/http"
	"facilitydesk/internal/adapters/http/perf"
	"facilitydesk/internal/adapters/storage"
	facilityStore "facilitydesk/internal/adapters/storage/facility"
	memberStore "facilitydesk/internal/adapters/storage/member"
	membershipStore "facilitydesk/internal/adapters/storage/membership"
	planStore "facilitydesk/internal/adapters/storage/plan"
	transactionStore "facilitydesk/internal/adapters/storage/transaction"
	"facilitydesk/internal/application/orchestrators"
	"facilitydesk/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	log.SetOutput(os.Stdout)
	log.SetLevel(cfg.LogLevel)

	decimal.MarshalJSONWithoutQuotes = true

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server_failed")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	driver, err := storage.DriverName(cfg.DBDriver)
	if err != nil {
		return err
	}
	db, err := sql.Open(driver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.InitDB(db, cfg.DBDriver); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.WithFields(logrus.Fields{"driver": cfg.DBDriver, "schema": storage.LatestSchemaVersion()}).Info("database_ready")

	collector := perf.NewCollector(cfg.PerfRingSize)
	timedDB := storage.NewTimedDB(db, cfg.DBDriver,
		storage.WithCollector(collector),
		storage.WithLogger(log),
		storage.WithSlowQueryThreshold(cfg.SlowQuery),
	)

	stores := &web.Stores{
		FacilityStore:    facilityStore.NewSQLStore(timedDB),
		PlanStore:        planStore.NewSQLStore(timedDB),
		MemberStore:      memberStore.NewSQLStore(timedDB),
		MembershipStore:  membershipStore.NewSQLStore(timedDB),
		TransactionStore: transactionStore.NewSQLStore(timedDB),
	}

	if cfg.IsDev() {
		res, err := orchestrators.ExecuteSeedDemo(ctx, time.Now(), orchestrators.SeedDemoDeps{
			FacilityStore:    stores.FacilityStore,
			PlanStore:        stores.PlanStore,
			MemberStore:      stores.MemberStore,
			MembershipStore:  stores.MembershipStore,
			TransactionStore: stores.TransactionStore,
		})
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		if res.Seeded {
			log.WithFields(logrus.Fields{"facility_id": res.FacilityID, "members": res.Members}).Info("demo_data_seeded")
		}
	}

	sender := newEmailSender(cfg, log)

	scheduler := cron.New(cron.WithLocation(cfg.Location))
	if cfg.GreetingSchedule != "" {
		_, err := scheduler.AddFunc(cfg.GreetingSchedule, func() {
			report, err := orchestrators.ExecuteSendBirthdayGreetings(ctx, orchestrators.SendBirthdayGreetingsInput{
				Now: time.Now(),
			}, orchestrators.SendBirthdayGreetingsDeps{
				FacilityStore:   stores.FacilityStore,
				MemberStore:     stores.MemberStore,
				EmailSender:     sender,
				DefaultLocation: cfg.Location,
				FromAddress:     cfg.EmailFrom,
			})
			if err != nil {
				log.WithError(err).Error("birthday_greetings_failed")
				return
			}
			log.WithFields(logrus.Fields{"facilities": report.Facilities, "sent": report.Sent, "skipped": report.Skipped}).Info("birthday_greetings_done")
		})
		if err != nil {
			return fmt.Errorf("schedule greetings: %w", err)
		}
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	handler, err := web.NewRouter(stores, web.Options{
		Log:                log,
		Location:           cfg.Location,
		HorizonDays:        cfg.ExpiryHorizonDays,
		Production:         !cfg.IsDev(),
		CSRFKey:            cfg.CSRFKey,
		RateLimitPerSecond: cfg.RateLimitRate,
		SlowRequest:        cfg.SlowRequest,
		Collector:          collector,
		EmailSender:        sender,
		EmailFrom:          cfg.EmailFrom,
		Health:             timedDB.PingContext,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "env": cfg.Env, "version": version}).Info("server_starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newEmailSender picks the provider named in cfg.
func newEmailSender(cfg *config.Config, log logrus.FieldLogger) email.Sender {
	switch cfg.EmailProvider {
	case config.EmailResend:
		log.Info("email sender configured (resend)")
		return email.NewResendSender(cfg.ResendKey, cfg.EmailFrom, log)
	case config.EmailSMTP:
		log.WithField("host", cfg.SMTPHost).Info("email sender configured (smtp)")
		return email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		}, log)
	default:
		if !cfg.IsDev() {
			log.Warn("email delivery is disabled; set FACILITYDESK_EMAIL_PROVIDER")
		}
		return email.NewNoopSender(log)
	}
}
