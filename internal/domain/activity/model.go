package activity

import "time"

// EntryType represents the type of journal event
type EntryType string

const (
	TypeRunStarted      EntryType = "run_started"
	TypeRunFinished     EntryType = "run_finished"
	TypeSiteSkipped     EntryType = "site_skipped"
	TypeSiteFailed      EntryType = "site_failed"
	TypeFieldCreated    EntryType = "field_created"
	TypePointsSubmitted EntryType = "points_submitted"
)

// Entry represents an event in the run journal
type Entry struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	Site      string    `json:"site,omitempty"`
	Type      EntryType `json:"type"`
	Summary   string    `json:"summary"`
	Details   string    `json:"details,omitempty"` // JSON string
	CreatedAt time.Time `json:"created_at"`
}
