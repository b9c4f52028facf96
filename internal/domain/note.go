package domain

import "time"

// Author identifies who wrote a note or comment. It is embedded by
// value and has no identity of its own; nil means the acting user was
// not signed in.
type Author struct {
	Identity string `json:"identity"`
	Email    string `json:"email"`
}

// Comment is a single comment on a note. Content is non-empty after
// trimming, enforced before persistence.
type Comment struct {
	ID      string    `json:"id"`
	Author  *Author   `json:"author,omitempty"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}

// Note is one notebook entry. Comments are in append order and only
// ever grow.
type Note struct {
	ID       string    `json:"id"`
	Notebook string    `json:"notebook"`
	Author   *Author   `json:"author,omitempty"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Comments []Comment `json:"comments"`
	Date     time.Time `json:"date"`
}

// Key returns the note's full key, parented at its notebook.
func (n Note) Key() Key {
	return NoteKey(n.Notebook, n.ID)
}
