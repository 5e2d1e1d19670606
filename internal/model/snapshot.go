package model

import "time"

type WatcherSnapshot struct {
	Name      string     `json:"name"`
	Root      string     `json:"root"`
	Target    string     `json:"target"`
	Ext       string     `json:"ext"`
	Watching  bool       `json:"watching"`
	StartedAt time.Time  `json:"started_at"`
	Synced    int        `json:"synced"`
	Skipped   int        `json:"skipped"`
	Failed    int        `json:"failed"`
	LastSync  *time.Time `json:"last_sync"`
}

type GameSnapshot struct {
	Name       string     `json:"name"`
	Schedule   string     `json:"schedule"`
	LastSlot   string     `json:"last_slot,omitempty"`
	LastHosted *time.Time `json:"last_hosted,omitempty"`
}
