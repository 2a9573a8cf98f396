package browser_test

import (
	"fmt"
	"testing"

	"github.com/playwright-community/playwright-go"
)

// TestSmoke_ReadEndpoints verifies every dashboard read endpoint loads in the browser.
func TestSmoke_ReadEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)

	paths := []string{
		"/healthz",
		"/api/facilities/" + app.FacilityID + "/home",
		"/api/facilities/" + app.FacilityID + "/settings",
		"/api/facilities/" + app.FacilityID + "/members",
		"/api/facilities/" + app.FacilityID + "/members?status=expiring&sort=end_date",
		"/api/facilities/" + app.FacilityID + "/transactions?timeline=last30Days",
		"/api/debug/perf",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp, err := page.Goto(app.BaseURL + path)
			if err != nil {
				t.Fatalf("goto %s: %v", path, err)
			}
			if resp.Status() != 200 {
				t.Fatalf("status=%d, want 200", resp.Status())
			}
			headers := resp.Headers()
			if got := headers["x-content-type-options"]; got != "nosniff" {
				t.Errorf("x-content-type-options=%q, want nosniff", got)
			}
		})
	}
}

// TestSmoke_UnknownFacility verifies a missing facility is a 404.
func TestSmoke_UnknownFacility(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)

	resp, err := page.Goto(app.BaseURL + "/api/facilities/does-not-exist/home")
	if err != nil {
		t.Fatalf("goto: %v", err)
	}
	if resp.Status() != 404 {
		t.Fatalf("status=%d, want 404", resp.Status())
	}
}

// TestSmoke_RegisterAndPay walks a new member through registration, a membership and
// a payment using the JSON API.
func TestSmoke_RegisterAndPay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)

	resp := app.postJSON(t, page, "members", `{"name":"Smoke Tester","email":"smoke@example.com"}`)
	if resp.Status() != 201 {
		body, _ := resp.Text()
		t.Fatalf("register status=%d, want 201: %s", resp.Status(), body)
	}
	var registered struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeBody(t, resp, &registered)
	if registered.Status != "expired" {
		t.Errorf("status=%q, want expired for a member without memberships", registered.Status)
	}

	resp, err := page.Request().Get(app.apiURL("transactions"))
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	var report struct {
		Plans []struct {
			ID string `json:"id"`
		} `json:"plans"`
	}
	decodeBody(t, resp, &report)
	if len(report.Plans) == 0 {
		t.Fatal("expected seeded plans")
	}

	resp = app.postJSON(t, page, "members/"+registered.ID+"/memberships", fmt.Sprintf(`{"planId":%q}`, report.Plans[0].ID))
	if resp.Status() != 201 {
		body, _ := resp.Text()
		t.Fatalf("start membership status=%d, want 201: %s", resp.Status(), body)
	}

	resp = app.postJSON(t, page, "members/"+registered.ID+"/payments", `{"amount":100}`)
	if resp.Status() != 201 {
		body, _ := resp.Text()
		t.Fatalf("record payment status=%d, want 201: %s", resp.Status(), body)
	}

	resp, err = page.Request().Get(app.apiURL("members?search=smoke"))
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	var list struct {
		Members []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"members"`
	}
	decodeBody(t, resp, &list)
	if len(list.Members) != 1 || list.Members[0].Status != "active" {
		t.Fatalf("members=%+v, want the new member active", list.Members)
	}
}

// TestSmoke_FormPostWithoutToken verifies CSRF protection on non-JSON writes.
func TestSmoke_FormPostWithoutToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)

	resp, err := page.Request().Fetch(app.apiURL("members"), playwright.APIRequestContextFetchOptions{
		Method:  playwright.String("POST"),
		Data:    "name=Forged",
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if resp.Status() != 403 {
		t.Errorf("status=%d want 403", resp.Status())
	}
}
