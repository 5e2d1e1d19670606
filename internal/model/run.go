package model

import "time"

type RunStatus string

const (
	RunSucceeded RunStatus = "SUCCEEDED"
	RunFailed    RunStatus = "FAILED"
)

// HostRun records one collect, run, distribute pipeline for a game.
type HostRun struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Game        string    `gorm:"not null;index" json:"game"`
	Slot        string    `gorm:"not null" json:"slot"`
	TriggeredAt time.Time `gorm:"not null" json:"triggered_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Collected   int       `json:"collected"`
	Distributed int       `json:"distributed"`
	ExitCode    int       `json:"exit_code"`
	Status      RunStatus `gorm:"not null" json:"status"`
	ErrMsg      string    `json:"error,omitempty"`
}
