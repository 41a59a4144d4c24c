// Package models defines the types shared between the source layer and its callers.
package models

import "time"

// SourceMeta describes one dataset file in the data directory.
type SourceMeta struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
