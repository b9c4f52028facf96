package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/stagefive/notebook/internal/domain"
)

// SubmitNoteInput is the raw form input for creating a note. Fields
// are trimmed and validated here, before anything touches the store.
type SubmitNoteInput struct {
	Notebook string
	Title    string
	Content  string
	Author   *domain.Author
}

type NoteUsecase struct {
	repo   NoteRepository
	cache  ListingCache
	signal EventPublisher
}

func NewNoteUsecase(repo NoteRepository, cache ListingCache, signal EventPublisher) *NoteUsecase {
	return &NoteUsecase{
		repo:   repo,
		cache:  cache,
		signal: signal,
	}
}

// List returns up to domain.NoteFetchLimit notes of the notebook,
// oldest first, comments embedded. An unknown notebook name yields an
// empty listing, not an error.
func (uc *NoteUsecase) List(ctx context.Context, notebook string) ([]domain.Note, error) {
	if notebook == "" {
		notebook = domain.DefaultNotebookName
	}

	if notes, ok := uc.cache.Get(ctx, notebook); ok {
		return notes, nil
	}

	notes, err := uc.repo.ListByNotebook(ctx, notebook, domain.NoteFetchLimit)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(ctx, notebook, notes)
	return notes, nil
}

// Submit validates and persists a new note. Exactly one write on
// success, none on failure.
func (uc *NoteUsecase) Submit(ctx context.Context, input SubmitNoteInput) (domain.Note, error) {
	notebook := input.Notebook
	if notebook == "" {
		notebook = domain.DefaultNotebookName
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)

	if title == "" {
		return domain.Note{}, domain.ValidationError{Field: "title"}
	}
	if content == "" {
		return domain.Note{}, domain.ValidationError{Field: "content"}
	}

	note := domain.Note{
		Notebook: notebook,
		Author:   input.Author,
		Title:    title,
		Content:  content,
	}

	created, err := uc.repo.Create(ctx, note)
	if err != nil {
		return domain.Note{}, err
	}

	uc.cache.Invalidate(ctx, notebook)

	err = uc.signal.Publish(ctx, notebook, domain.Event{
		Type:     domain.EventTypeNote,
		Notebook: notebook,
		NoteKey:  created.Key().Encode(),
		Title:    created.Title,
		Content:  created.Content,
		Author:   created.Author,
		Date:     created.Date,
	})
	if err != nil {
		slog.WarnContext(
			ctx, "Failed to publish note event",
			slog.String("error", err.Error()),
			slog.String("module", "usecase"),
		)
	}

	return created, nil
}
