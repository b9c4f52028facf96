package usecase

import (
	"context"

	"github.com/stagefive/notebook/internal/domain"
)

// NoteRepository defines storage operations for notes and their
// comments.
type NoteRepository interface {
	Create(ctx context.Context, note domain.Note) (domain.Note, error)
	Get(ctx context.Context, notebook, id string) (domain.Note, error)
	ListByNotebook(ctx context.Context, notebook string, limit int) ([]domain.Note, error)
	AppendComment(ctx context.Context, notebook, noteID string, comment domain.Comment) (domain.Comment, error)
}

// ListingCache holds recently fetched listings keyed by notebook name.
// It is best effort; misses and failures just fall through to the
// repository.
type ListingCache interface {
	Get(ctx context.Context, notebook string) ([]domain.Note, bool)
	Set(ctx context.Context, notebook string, notes []domain.Note)
	Invalidate(ctx context.Context, notebook string)
}

// EventPublisher fans out notebook activity to realtime listeners.
type EventPublisher interface {
	Publish(ctx context.Context, notebook string, event domain.Event) error
}
