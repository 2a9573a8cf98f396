package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimit(t *testing.T) {
	log, hook := test.NewNullLogger()
	handler := RateLimit(2, log)(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/facilities/f1/home", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want 200,200,429", codes)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.WarnLevel || entry.Message != "rate_limit_exceeded" {
		t.Fatalf("entry = %v, want rate_limit_exceeded warning", entry)
	}

	// A different client has its own budget.
	req := httptest.NewRequest("GET", "/api/facilities/f1/home", nil)
	req.RemoteAddr = "10.0.0.2:999"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("other client status = %d, want 200", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	for header, want := range map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	} {
		if got := rr.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if !strings.Contains(rr.Header().Get("Content-Security-Policy"), "default-src 'none'") {
		t.Errorf("CSP = %q", rr.Header().Get("Content-Security-Policy"))
	}
}

func TestCSRF_ExemptsJSON(t *testing.T) {
	handler := CSRF(bytes.Repeat([]byte{7}, 32), false, nil)(okHandler)

	jsonReq := httptest.NewRequest("POST", "/api/facilities/f1/members", strings.NewReader(`{}`))
	jsonReq.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, jsonReq)
	if rr.Code != http.StatusOK {
		t.Errorf("json POST status = %d, want 200", rr.Code)
	}

	formReq := httptest.NewRequest("POST", "/api/facilities/f1/members", strings.NewReader("name=x"))
	formReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, formReq)
	if rr.Code != http.StatusForbidden {
		t.Errorf("form POST without token status = %d, want 403", rr.Code)
	}
}

func TestCachePrivate(t *testing.T) {
	rr := httptest.NewRecorder()
	CachePrivate(time.Minute)(okHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if got := rr.Header().Get("Cache-Control"); got != "private, max-age=60" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := rr.Header().Get("Vary"); got != "Cookie" {
		t.Errorf("Vary = %q", got)
	}
}
