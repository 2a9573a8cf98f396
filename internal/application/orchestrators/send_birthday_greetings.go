package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	emailAdapter "facilitydesk/internal/adapters/email"
	memberStore "facilitydesk/internal/adapters/storage/member"
	"facilitydesk/internal/application/projections"
	"facilitydesk/internal/domain/facility"
	"facilitydesk/internal/domain/member"
)

// greetingRenderer turns greeting markdown into HTML. Raw HTML in the input is escaped.
var greetingRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// GreetingFacilityStore lists the facilities greetings are sent for.
type GreetingFacilityStore interface {
	GetByID(ctx context.Context, id string) (facility.Facility, error)
	List(ctx context.Context) ([]facility.Facility, error)
}

// GreetingMemberStore lists a facility's roster.
type GreetingMemberStore interface {
	List(ctx context.Context, filter memberStore.ListFilter) ([]member.Member, error)
}

// SendBirthdayGreetingsInput carries input for the orchestrator.
type SendBirthdayGreetingsInput struct {
	FacilityID string // empty means every facility
	Now        time.Time
}

// SendBirthdayGreetingsDeps holds dependencies for SendBirthdayGreetings.
type SendBirthdayGreetingsDeps struct {
	FacilityStore   GreetingFacilityStore
	MemberStore     GreetingMemberStore
	EmailSender     emailAdapter.Sender
	DefaultLocation *time.Location
	FromAddress     string
}

// GreetingReport summarises one greeting run.
type GreetingReport struct {
	Facilities int `json:"facilities"`
	Sent       int `json:"sent"`
	Skipped    int `json:"skipped"` // birthday members without an email address
}

// ExecuteSendBirthdayGreetings emails every member whose birthday is today in their
// facility's zone.
// POST: Sent + Skipped equals the number of birthday members across the facilities
func ExecuteSendBirthdayGreetings(ctx context.Context, input SendBirthdayGreetingsInput, deps SendBirthdayGreetingsDeps) (GreetingReport, error) {
	var facilities []facility.Facility
	if input.FacilityID != "" {
		fac, err := deps.FacilityStore.GetByID(ctx, input.FacilityID)
		if err != nil {
			return GreetingReport{}, err
		}
		facilities = []facility.Facility{fac}
	} else {
		var err error
		if facilities, err = deps.FacilityStore.List(ctx); err != nil {
			return GreetingReport{}, err
		}
	}

	var report GreetingReport
	for _, fac := range facilities {
		members, err := deps.MemberStore.List(ctx, memberStore.ListFilter{FacilityID: fac.ID})
		if err != nil {
			return report, fmt.Errorf("list members for %s: %w", fac.ID, err)
		}

		var reqs []emailAdapter.SendRequest
		for _, m := range projections.BirthdaysToday(members, input.Now, fac.Location(deps.DefaultLocation)) {
			if m.Email == "" {
				report.Skipped++
				continue
			}
			req, err := greetingRequest(m, fac, deps.FromAddress)
			if err != nil {
				return report, err
			}
			reqs = append(reqs, req)
		}
		report.Facilities++
		if len(reqs) == 0 {
			continue
		}

		results, err := deps.EmailSender.SendBatch(ctx, reqs)
		report.Sent += len(results)
		if err != nil {
			return report, fmt.Errorf("send greetings for %s: %w", fac.ID, err)
		}
		logrus.WithFields(logrus.Fields{"facility_id": fac.ID, "count": len(results)}).Info("birthday_greeting_sent")
	}
	return report, nil
}

func greetingRequest(m member.Member, fac facility.Facility, from string) (emailAdapter.SendRequest, error) {
	md := "## " + projections.BirthdayHeadline(m.Name) + "\n\n" + projections.BirthdayBody(fac.Name) + "\n"

	var buf bytes.Buffer
	if err := greetingRenderer.Convert([]byte(md), &buf); err != nil {
		return emailAdapter.SendRequest{}, fmt.Errorf("render greeting: %w", err)
	}
	return emailAdapter.SendRequest{
		To:      []string{m.Email},
		From:    from,
		Subject: fmt.Sprintf("Happy Birthday from %s", fac.Name),
		HTML:    buf.String(),
		Text:    projections.BirthdayMessage(m.Name, fac.Name),
	}, nil
}
