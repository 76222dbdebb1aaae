package domain

import "time"

type Run struct {
	ID            string         `json:"id"`
	Path          string         `json:"path"`
	Checksum      string         `json:"checksum"`
	Labeled       int            `json:"labeled"`
	Skipped       int            `json:"skipped"`
	Unlabeled     int            `json:"unlabeled"`
	Substitutions int            `json:"substitutions"`
	Distribution  map[string]int `json:"distribution"`
	DryRun        bool           `json:"dry_run"`
	CreatedAt     time.Time      `json:"created_at"`
}

type Job struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Checksum    string    `json:"checksum"`
	Source      Source    `json:"source"`
	RequestedAt time.Time `json:"requested_at"`
}

type Source string

const (
	SourceWatcher Source = "watcher"
	SourceAPI     Source = "api"
	SourceCLI     Source = "cli"
)
