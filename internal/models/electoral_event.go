package models

import "time"

// MinElectionYear is the exclusive lower bound for ElectionYear.
const MinElectionYear = 1990

type ElectoralEvent struct {
	ID                  int64     `json:"id"`
	ExternalEventID     int       `json:"external_event_id"`
	EventTypeID         int64     `json:"event_type_id"`
	ExternalEventTypeID int       `json:"external_event_type_id"`
	Description         string    `json:"description"`
	IsActive            bool      `json:"is_active"`
	ElectionYear        int       `json:"election_year"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ValidElectionYear reports whether year satisfies the election_year check constraint.
func ValidElectionYear(year int) bool {
	return year > MinElectionYear
}
