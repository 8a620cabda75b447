package models

import "time"

type ElectoralEventType struct {
	ID                  int64     `json:"id"`
	ExternalEventTypeID int       `json:"external_event_type_id"`
	Description         string    `json:"description"`
	IsMunicipalElection bool      `json:"is_municipal_election"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
