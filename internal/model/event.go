package model

import "time"

type EventKind string

const (
	EventCreated EventKind = "CREATED"
	EventChanged EventKind = "CHANGED"
)

type FileEvent struct {
	Kind      EventKind
	Path      string
	Timestamp time.Time
}

type CopyTask struct {
	Source     string
	SourceRoot string
	TargetRoot string
}

type SyncResult struct {
	Event    FileEvent
	SrcPath  string
	DstPath  string
	Checksum []byte
	Skipped  bool
	Err      error
}
