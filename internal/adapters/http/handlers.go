package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"facilitydesk/internal/application/listutil"
	"facilitydesk/internal/application/orchestrators"
	"facilitydesk/internal/application/projections"
	"facilitydesk/internal/domain/facility"
	"facilitydesk/internal/domain/member"
	"facilitydesk/internal/domain/membership"
	"facilitydesk/internal/domain/plan"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// timeNow is the clock used by handlers. Tests replace it.
var timeNow = time.Now

type handlers struct {
	stores *Stores
	opts   Options
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// internalError logs the real error and returns a generic message to the client.
func (h *handlers) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.opts.Log.WithError(err).WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Error("internal_error")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// fail maps domain errors onto HTTP statuses.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, facility.ErrNotFound),
		errors.Is(err, member.ErrNotFound),
		errors.Is(err, plan.ErrNotFound),
		errors.Is(err, membership.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, projections.ErrNotBirthday):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orchestrators.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		h.opts.Log.WithField("path", r.URL.Path).Debug("request_cancelled")
	default:
		h.internalError(w, r, err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (h *handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.opts.Health != nil {
		if err := h.opts.Health(r.Context()); err != nil {
			h.opts.Log.WithError(err).Warn("health_check_failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePerf returns the request and query timing snapshot.
// Query params: since (duration, default 15m), top (default 10).
func (h *handlers) handlePerf(w http.ResponseWriter, r *http.Request) {
	since := 15 * time.Minute
	if raw := r.URL.Query().Get("since"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "since must be a positive duration")
			return
		}
		since = d
	}
	top := 10
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		top = n
	}
	writeJSON(w, http.StatusOK, h.opts.Collector.Snapshot(timeNow().Add(-since), top))
}

func (h *handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetHomeDashboard(r.Context(), projections.GetHomeDashboardQuery{
		FacilityID: chi.URLParam(r, "facilityID"),
		Now:        timeNow(),
	}, projections.GetHomeDashboardDeps{
		FacilityStore:   h.stores.FacilityStore,
		MemberStore:     h.stores.MemberStore,
		DefaultLocation: h.opts.Location,
		HorizonDays:     h.opts.HorizonDays,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) handleSettings(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetFacilitySettings(r.Context(), projections.GetFacilitySettingsQuery{
		FacilityID: chi.URLParam(r, "facilityID"),
		Now:        timeNow(),
	}, projections.GetFacilitySettingsDeps{
		FacilityStore:     h.stores.FacilityStore,
		SubscriptionStore: h.stores.FacilityStore,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := projections.QueryGetTransactionReport(r.Context(), projections.GetTransactionReportQuery{
		FacilityID: chi.URLParam(r, "facilityID"),
		Timeline:   q.Get("timeline"),
		PlanID:     q.Get("plan"),
		Search:     q.Get("search"),
		Now:        timeNow(),
	}, projections.GetTransactionReportDeps{
		FacilityStore:    h.stores.FacilityStore,
		TransactionStore: h.stores.TransactionStore,
		BalanceStore:     h.stores.MemberStore,
		PlanStore:        h.stores.PlanStore,
		DefaultLocation:  h.opts.Location,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) handleMembers(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facilityID")
	if _, err := h.stores.FacilityStore.GetByID(r.Context(), facilityID); err != nil {
		h.fail(w, r, err)
		return
	}

	lp := listutil.ParseListParams(r.URL.Query(), projections.MemberListSortColumns, []string{"status"})
	result, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{
		FacilityID: facilityID,
		Status:     lp.Filters["status"],
		Search:     lp.Search,
		Sort:       lp.Sort,
		Dir:        lp.Dir,
		Page:       lp.Page,
		PerPage:    lp.PerPage,
		Now:        timeNow(),
	}, projections.GetMemberListDeps{
		MemberStore: h.stores.MemberStore,
		HorizonDays: h.opts.HorizonDays,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) handleBirthdayWish(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetBirthdayWish(r.Context(), projections.GetBirthdayWishQuery{
		FacilityID: chi.URLParam(r, "facilityID"),
		MemberID:   chi.URLParam(r, "memberID"),
		Now:        timeNow(),
	}, projections.GetBirthdayWishDeps{
		FacilityStore:   h.stores.FacilityStore,
		MemberStore:     h.stores.MemberStore,
		DefaultLocation: h.opts.Location,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type registerMemberRequest struct {
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	PhotoURL       string          `json:"photoUrl"`
	DateOfBirth    string          `json:"dateOfBirth"` // YYYY-MM-DD
	OpeningBalance decimal.Decimal `json:"openingBalance"`
}

func (h *handlers) handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var req registerMemberRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var dob time.Time
	if req.DateOfBirth != "" {
		var err error
		if dob, err = time.Parse(time.DateOnly, req.DateOfBirth); err != nil {
			writeError(w, http.StatusBadRequest, "dateOfBirth must be YYYY-MM-DD")
			return
		}
	}

	m, err := orchestrators.ExecuteRegisterMember(r.Context(), orchestrators.RegisterMemberInput{
		FacilityID:     chi.URLParam(r, "facilityID"),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		PhotoURL:       req.PhotoURL,
		DateOfBirth:    dob,
		OpeningBalance: req.OpeningBalance,
	}, orchestrators.RegisterMemberDeps{
		FacilityStore: h.stores.FacilityStore,
		MemberStore:   h.stores.MemberStore,
		Now:           timeNow,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, projections.ClassifyMember(m, timeNow(), h.opts.HorizonDays))
}

type startMembershipRequest struct {
	PlanID    string `json:"planId"`
	StartDate string `json:"startDate"` // YYYY-MM-DD in the facility zone; empty means now
}

type membershipResponse struct {
	ID        string `json:"id"`
	MemberID  string `json:"memberId"`
	PlanID    string `json:"planId"`
	PlanName  string `json:"planName"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Status    string `json:"status"`
}

func (h *handlers) handleStartMembership(w http.ResponseWriter, r *http.Request) {
	var req startMembershipRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fac, err := h.stores.FacilityStore.GetByID(r.Context(), chi.URLParam(r, "facilityID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	loc := fac.Location(h.opts.Location)

	var start time.Time
	if req.StartDate != "" {
		if start, err = time.ParseInLocation(time.DateOnly, req.StartDate, loc); err != nil {
			writeError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
	}

	ms, err := orchestrators.ExecuteStartMembership(r.Context(), orchestrators.StartMembershipInput{
		FacilityID: fac.ID,
		MemberID:   chi.URLParam(r, "memberID"),
		PlanID:     req.PlanID,
		StartDate:  start,
	}, orchestrators.StartMembershipDeps{
		MemberStore:     h.stores.MemberStore,
		PlanStore:       h.stores.PlanStore,
		MembershipStore: h.stores.MembershipStore,
		Now:             timeNow,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, membershipResponse{
		ID:        ms.ID,
		MemberID:  ms.MemberID,
		PlanID:    ms.Plan.ID,
		PlanName:  ms.Plan.Label(),
		StartDate: ms.StartDate.In(loc).Format(time.RFC3339),
		EndDate:   ms.EndDate.In(loc).Format(time.RFC3339),
		Status:    ms.Status,
	})
}

type recordPaymentRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	MembershipID string          `json:"membershipId"`
}

type paymentResponse struct {
	ID           string          `json:"id"`
	MemberID     string          `json:"memberId"`
	MembershipID string          `json:"membershipId,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    string          `json:"createdAt"`
}

func (h *handlers) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := orchestrators.ExecuteRecordPayment(r.Context(), orchestrators.RecordPaymentInput{
		FacilityID:   chi.URLParam(r, "facilityID"),
		MemberID:     chi.URLParam(r, "memberID"),
		MembershipID: req.MembershipID,
		Amount:       req.Amount,
	}, orchestrators.RecordPaymentDeps{
		TransactionStore: h.stores.TransactionStore,
		MembershipStore:  h.stores.MembershipStore,
		Now:              timeNow,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentResponse{
		ID:           t.ID,
		MemberID:     t.MemberID,
		MembershipID: t.MembershipID,
		Amount:       t.Amount,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	})
}

func (h *handlers) handleSendGreetings(w http.ResponseWriter, r *http.Request) {
	report, err := orchestrators.ExecuteSendBirthdayGreetings(r.Context(), orchestrators.SendBirthdayGreetingsInput{
		FacilityID: chi.URLParam(r, "facilityID"),
		Now:        timeNow(),
	}, orchestrators.SendBirthdayGreetingsDeps{
		FacilityStore:   h.stores.FacilityStore,
		MemberStore:     h.stores.MemberStore,
		EmailSender:     h.opts.EmailSender,
		DefaultLocation: h.opts.Location,
		FromAddress:     h.opts.EmailFrom,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
