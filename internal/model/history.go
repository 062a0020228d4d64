package model

import (
	"time"
)

const (
	HistorySourceCLI   = "cli"
	HistorySourceWatch = "watch"
)

// HistoryEntry is a local log line for an upload made from this machine
type HistoryEntry struct {
	ID        string    `db:"id"`
	ImageID   int64     `db:"image_id"`
	Filename  string    `db:"filename"`
	URL       string    `db:"url"`
	Source    string    `db:"source"` // "cli" or "watch"
	CreatedAt time.Time `db:"created_at"`
}
