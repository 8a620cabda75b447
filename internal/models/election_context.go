package models

import "time"

// ElectionContext is a point-in-time snapshot of the current municipal election.
// Event is nil when no active municipal election exists. Snapshots are shared
// between callers and must be treated as read-only.
type ElectionContext struct {
	Event     *ElectoralEvent `json:"event"`
	FetchedAt time.Time       `json:"fetched_at"`
}

type ElectoralStatistics struct {
	TotalEventTypes             int  `json:"total_event_types"`
	MunicipalEventTypes         int  `json:"municipal_event_types"`
	HasCurrentMunicipalElection bool `json:"has_current_municipal_election"`
}
