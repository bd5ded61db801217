package model

import "time"

// LateRecord is latewatch's output type: one normalized late arrival.
// ID is positional within a single fetch and must not be persisted.
type LateRecord struct {
	ID          string    `json:"id,omitempty"`
	PersonID    string    `json:"personId"`
	PersonName  string    `json:"personName"`
	GroupName   string    `json:"groupName"`
	Timestamp   time.Time `json:"timestamp"`
	Reason      string    `json:"reason,omitempty"`
	MinutesLate int       `json:"minutesLate"`
}
