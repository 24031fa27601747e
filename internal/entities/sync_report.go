package entities

import (
	"time"
)

type SyncReport struct {
	RunID      string        `json:"run_id"`
	Processed  int           `json:"processed"`
	Archived   int           `json:"archived"`
	Conflicts  []Conflict    `json:"conflicts"`
	Duration   time.Duration `json:"duration"`
	FinishedAt time.Time     `json:"finished_at"`
}
