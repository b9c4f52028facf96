package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/stagefive/notebook/internal/domain"
)

// AppendCommentInput carries the raw comment form input. Key is the
// urlsafe note key exactly as submitted.
type AppendCommentInput struct {
	Key     string
	Content string
	Author  *domain.Author
}

// AppendCommentResult reports where the comment landed.
type AppendCommentResult struct {
	Notebook string
	Comment  domain.Comment
}

type CommentUsecase struct {
	repo   NoteRepository
	cache  ListingCache
	signal EventPublisher
}

func NewCommentUsecase(repo NoteRepository, cache ListingCache, signal EventPublisher) *CommentUsecase {
	return &CommentUsecase{
		repo:   repo,
		cache:  cache,
		signal: signal,
	}
}

// Append validates and persists one comment under an existing note.
// The existence check and the comment write happen in one repository
// transaction, so the note's comment sequence and the comment records
// cannot diverge.
func (uc *CommentUsecase) Append(ctx context.Context, input AppendCommentInput) (AppendCommentResult, error) {
	notebook, noteID, err := domain.ParseNoteKey(input.Key)
	if err != nil {
		return AppendCommentResult{}, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return AppendCommentResult{}, domain.ValidationError{Field: "comment_content"}
	}

	comment := domain.Comment{
		Author:  input.Author,
		Content: content,
	}

	created, err := uc.repo.AppendComment(ctx, notebook, noteID, comment)
	if err != nil {
		return AppendCommentResult{}, err
	}

	uc.cache.Invalidate(ctx, notebook)

	err = uc.signal.Publish(ctx, notebook, domain.Event{
		Type:     domain.EventTypeComment,
		Notebook: notebook,
		NoteKey:  input.Key,
		Content:  created.Content,
		Author:   created.Author,
		Date:     created.Date,
	})
	if err != nil {
		slog.WarnContext(
			ctx, "Failed to publish comment event",
			slog.String("error", err.Error()),
			slog.String("module", "usecase"),
		)
	}

	return AppendCommentResult{Notebook: notebook, Comment: created}, nil
}
