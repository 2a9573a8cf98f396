package browser_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	web "facilitydesk/internal/adapters/http"
	"facilitydesk/internal/adapters/http/perf"
	"facilitydesk/internal/adapters/storage"
	facilityStore "facilitydesk/internal/adapters/storage/facility"
	memberStore "facilitydesk/internal/adapters/storage/member"
	membershipStore "facilitydesk/internal/adapters/storage/membership"
	planStore "facilitydesk/internal/adapters/storage/plan"
	transactionStore "facilitydesk/internal/adapters/storage/transaction"
	"facilitydesk/internal/application/orchestrators"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL    string
	DB         *sql.DB
	Server     *http.Server
	PW         *playwright.Playwright
	Browser    playwright.Browser
	Stores     *web.Stores
	FacilityID string
}

// newTestApp creates a fully wired app on a temp SQLite file seeded with demo data
// and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	decimal.MarshalJSONWithoutQuotes = true

	dbPath := filepath.Join(t.TempDir(), "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := storage.InitDB(db, storage.DialectSQLite); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	collector := perf.NewCollector(1000)
	timed := storage.NewTimedDB(db, storage.DialectSQLite, storage.WithCollector(collector), storage.WithLogger(log))

	stores := &web.Stores{
		FacilityStore:    facilityStore.NewSQLStore(timed),
		PlanStore:        planStore.NewSQLStore(timed),
		MemberStore:      memberStore.NewSQLStore(timed),
		MembershipStore:  membershipStore.NewSQLStore(timed),
		TransactionStore: transactionStore.NewSQLStore(timed),
	}

	seeded, err := orchestrators.ExecuteSeedDemo(context.Background(), time.Now(), orchestrators.SeedDemoDeps{
		FacilityStore:    stores.FacilityStore,
		PlanStore:        stores.PlanStore,
		MemberStore:      stores.MemberStore,
		MembershipStore:  stores.MembershipStore,
		TransactionStore: stores.TransactionStore,
	})
	if err != nil {
		t.Fatalf("failed to seed demo data: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	handler, err := web.NewRouter(stores, web.Options{
		Log:                log,
		Location:           time.UTC,
		RateLimitPerSecond: 1000,
		Collector:          collector,
		TrustedOrigins:     []string{fmt.Sprintf("127.0.0.1:%d", port)},
		Health:             timed.PingContext,
	})
	if err != nil {
		t.Fatalf("failed to build router: %v", err)
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: handler,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("test server error")
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL:    baseURL,
		DB:         db,
		Server:     srv,
		PW:         pw,
		Browser:    browser,
		Stores:     stores,
		FacilityID: seeded.FacilityID,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// apiURL returns the absolute URL of a facility API path.
func (a *testApp) apiURL(path string) string {
	return a.BaseURL + "/api/facilities/" + a.FacilityID + "/" + path
}

// postJSON sends body to a facility API path and returns the response.
func (a *testApp) postJSON(t *testing.T, page playwright.Page, path, body string) playwright.APIResponse {
	t.Helper()
	resp, err := page.Request().Post(a.apiURL(path), playwright.APIRequestContextPostOptions{
		Data:    body,
		Headers: map[string]string{"Content-Type": "application/json"},
	})
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// decodeBody unmarshals a JSON response into v.
func decodeBody(t *testing.T, resp playwright.APIResponse, v any) {
	t.Helper()
	body, err := resp.Body()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}
