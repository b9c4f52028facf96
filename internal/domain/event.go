package domain

import "time"

const (
	EventTypeNote    = "note"
	EventTypeComment = "comment"
)

// Event is fanned out to realtime listeners when a notebook changes.
type Event struct {
	Type     string    `json:"type"`
	Notebook string    `json:"notebook"`
	NoteKey  string    `json:"noteKey"`
	Title    string    `json:"title,omitempty"`
	Content  string    `json:"content"`
	Author   *Author   `json:"author,omitempty"`
	Date     time.Time `json:"date"`
}
