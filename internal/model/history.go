package model

import (
	"time"

	"gorm.io/gorm"
)

type SyncStatus string

const (
	StatusSuccess SyncStatus = "SUCCESS"
	StatusFailed  SyncStatus = "FAILED"
)

// History is one copy attempt made by a watcher, a reconciliation pass or
// a host pipeline.
type History struct {
	gorm.Model
	Direction string     `gorm:"not null"`
	Status    SyncStatus `gorm:"not null"`
	SrcPath   string     `gorm:"not null"`
	DstPath   string     `gorm:"not null"`
	FileEvent string     `gorm:"not null"`
	Checksum  string
	ErrMsg    string
	SyncedAt  time.Time `gorm:"not null"`
}
