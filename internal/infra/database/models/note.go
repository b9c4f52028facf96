package models

import (
	"time"
)

type Note struct {
	ID             string    `json:"id" gorm:"primaryKey;type:text"`
	Notebook       string    `json:"notebook" gorm:"type:text;not null;index:note_notebook_date,priority:1"`
	AuthorIdentity *string   `json:"authorIdentity,omitempty" gorm:"type:text"`
	AuthorEmail    *string   `json:"authorEmail,omitempty" gorm:"type:text"`
	Title          string    `json:"title" gorm:"type:text;not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	Comments       []Comment `json:"comments" gorm:"foreignKey:NoteID;references:ID;constraint:OnDelete:CASCADE;"`
	CDate          time.Time `json:"cdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp();index:note_notebook_date,priority:2"`
}

type Comment struct {
	ID             string    `json:"id" gorm:"primaryKey;type:text"`
	NoteID         string    `json:"noteID" gorm:"type:text;not null;index"`
	AuthorIdentity *string   `json:"authorIdentity,omitempty" gorm:"type:text"`
	AuthorEmail    *string   `json:"authorEmail,omitempty" gorm:"type:text"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	CDate          time.Time `json:"cdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp();index"`
}
