package projections

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	domainMember "facilitydesk/internal/domain/member"
)

// ErrNotBirthday is returned when a wish is requested for a member whose birthday is
// not today in the facility zone.
var ErrNotBirthday = errors.New("member does not have a birthday today")

// GetBirthdayWishQuery carries query parameters.
type GetBirthdayWishQuery struct {
	FacilityID string
	MemberID   string
	Now        time.Time
}

// GetBirthdayWishDeps holds dependencies for GetBirthdayWish.
type GetBirthdayWishDeps struct {
	FacilityStore   FacilityStore
	MemberStore     MemberStore
	DefaultLocation *time.Location
}

// BirthdayWish is a ready-to-send greeting.
type BirthdayWish struct {
	Member      MemberSummary `json:"member"`
	Message     string        `json:"message"`
	WhatsAppURL string        `json:"whatsappUrl,omitempty"` // empty when the member has no phone
}

// QueryGetBirthdayWish renders the birthday greeting for one member.
// PRE: query.FacilityID and query.MemberID are non-empty
// POST: returns domainMember.ErrNotFound for members of another facility
func QueryGetBirthdayWish(ctx context.Context, query GetBirthdayWishQuery, deps GetBirthdayWishDeps) (BirthdayWish, error) {
	fac, err := deps.FacilityStore.GetByID(ctx, query.FacilityID)
	if err != nil {
		return BirthdayWish{}, err
	}
	m, err := deps.MemberStore.GetByID(ctx, query.MemberID)
	if err != nil {
		return BirthdayWish{}, err
	}
	if m.FacilityID != fac.ID {
		return BirthdayWish{}, fmt.Errorf("member %s: %w", m.ID, domainMember.ErrNotFound)
	}
	if !m.IsBirthday(query.Now, fac.Location(deps.DefaultLocation)) {
		return BirthdayWish{}, ErrNotBirthday
	}

	msg := BirthdayMessage(m.Name, fac.Name)
	return BirthdayWish{
		Member:      summarizeMember(m),
		Message:     msg,
		WhatsAppURL: WhatsAppLink(m.Phone, msg),
	}, nil
}

// BirthdayMessage returns the plain-text greeting sent to a member.
func BirthdayMessage(memberName, facilityName string) string {
	return BirthdayHeadline(memberName) + " " + BirthdayBody(facilityName)
}

// BirthdayHeadline addresses the member by first name.
func BirthdayHeadline(memberName string) string {
	return fmt.Sprintf("Happy Birthday, %s!", firstName(memberName))
}

// BirthdayBody is the sentence after the headline.
func BirthdayBody(facilityName string) string {
	return fmt.Sprintf("Wishing you a healthy and strong year ahead from all of us at %s.", facilityName)
}

// WhatsAppLink builds a click-to-chat link. Non-digits are stripped from phone; an
// empty result yields no link.
func WhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}
