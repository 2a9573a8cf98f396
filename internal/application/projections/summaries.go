package projections

import (
	"facilitydesk/internal/domain/facility"
	"facilitydesk/internal/domain/member"
)

// FacilitySummary is the facility header and switcher entry.
type FacilitySummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl,omitempty"`
}

func summarizeFacility(f facility.Facility) FacilitySummary {
	return FacilitySummary{ID: f.ID, Name: f.Name, LogoURL: f.LogoURL}
}

// MemberSummary is the compact member card used in birthday lists.
type MemberSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

func summarizeMember(m member.Member) MemberSummary {
	return MemberSummary{ID: m.ID, Name: m.Name, Phone: m.Phone, PhotoURL: m.PhotoURL}
}
