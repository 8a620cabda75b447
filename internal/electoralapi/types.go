package electoralapi

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/prudhvinik1/electoralsync/internal/models"
)

// EventTypeRecord is an electoral event type as returned by the commission.
type EventTypeRecord struct {
	ID          int    `json:"ID"`
	Description string `json:"Description"`
	IsMunicipal *bool  `json:"IsMunicipal,omitempty"`
}

// EventRecord is an electoral event as returned by the commission.
type EventRecord struct {
	ID           int    `json:"ID"`
	Description  string `json:"Description"`
	IsActive     *bool  `json:"IsActive,omitempty"`
	ElectionYear *int   `json:"ElectionYear,omitempty"`
	Year         *int   `json:"Year,omitempty"`
}

var trailingYear = regexp.MustCompile(`(\d{4})\s*$`)

// Municipal uses the explicit flag when present, otherwise the description.
func (r EventTypeRecord) Municipal() bool {
	if r.IsMunicipal != nil {
		return *r.IsMunicipal
	}
	desc := strings.ToLower(r.Description)
	return strings.Contains(desc, "municipal") || strings.Contains(desc, "local government")
}

func (r EventTypeRecord) ToModel() *models.ElectoralEventType {
	return &models.ElectoralEventType{
		ExternalEventTypeID: r.ID,
		Description:         strings.TrimSpace(r.Description),
		IsMunicipalElection: r.Municipal(),
	}
}

// Active defaults to false when the source omits the flag.
func (r EventRecord) Active() bool {
	return r.IsActive != nil && *r.IsActive
}

// ResolveElectionYear prefers explicit year fields and falls back to a trailing
// four-digit year in the description. ok is false when no valid year is found.
func (r EventRecord) ResolveElectionYear() (year int, ok bool) {
	switch {
	case r.ElectionYear != nil:
		year = *r.ElectionYear
	case r.Year != nil:
		year = *r.Year
	default:
		m := trailingYear.FindStringSubmatch(r.Description)
		if m == nil {
			return 0, false
		}
		year, _ = strconv.Atoi(m[1])
	}
	return year, models.ValidElectionYear(year)
}

// ToModel maps the record onto a local event of the type with local id eventTypeID.
func (r EventRecord) ToModel(eventTypeID int64, externalEventTypeID int) (*models.ElectoralEvent, bool) {
	year, ok := r.ResolveElectionYear()
	if !ok {
		return nil, false
	}
	return &models.ElectoralEvent{
		ExternalEventID:     r.ID,
		EventTypeID:         eventTypeID,
		ExternalEventTypeID: externalEventTypeID,
		Description:         strings.TrimSpace(r.Description),
		IsActive:            r.Active(),
		ElectionYear:        year,
	}, true
}
