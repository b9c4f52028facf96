package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/stagefive/notebook/internal/domain"
	"github.com/stagefive/notebook/internal/infra/database/models"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, note domain.Note) (domain.Note, error) {

	row := models.Note{
		ID:       uuid.New().String(),
		Notebook: note.Notebook,
		Title:    note.Title,
		Content:  note.Content,
		CDate:    time.Now().UTC(),
	}
	if note.Author != nil {
		row.AuthorIdentity = &note.Author.Identity
		row.AuthorEmail = &note.Author.Email
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		return domain.Note{}, errors.Wrap(err, "NoteRepository.Create")
	}

	return noteToDomain(row), nil
}

func (r *NoteRepository) Get(ctx context.Context, notebook, id string) (domain.Note, error) {

	var row models.Note
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.c_date ASC")
		}).
		Where("id = ? AND notebook = ?", id, notebook).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Note{}, domain.NotFoundError{Resource: "note"}
		}
		return domain.Note{}, errors.Wrap(err, "NoteRepository.Get")
	}

	return noteToDomain(row), nil
}

// ListByNotebook returns at most limit notes of the notebook, oldest
// first, with comments in append order.
func (r *NoteRepository) ListByNotebook(ctx context.Context, notebook string, limit int) ([]domain.Note, error) {

	var rows []models.Note
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.c_date ASC")
		}).
		Where("notebook = ?", notebook).
		Order("c_date ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "NoteRepository.ListByNotebook")
	}

	notes := make([]domain.Note, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, noteToDomain(row))
	}
	return notes, nil
}

// AppendComment creates one comment under an existing note. The
// existence check and the insert share a transaction, so a comment can
// never land under a vanished note and the note's comment sequence is
// the comment rows themselves.
func (r *NoteRepository) AppendComment(ctx context.Context, notebook, noteID string, comment domain.Comment) (domain.Comment, error) {

	row := models.Comment{
		ID:      uuid.New().String(),
		NoteID:  noteID,
		Content: comment.Content,
		CDate:   time.Now().UTC(),
	}
	if comment.Author != nil {
		row.AuthorIdentity = &comment.Author.Identity
		row.AuthorEmail = &comment.Author.Email
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var note models.Note
		err := tx.Where("id = ? AND notebook = ?", noteID, notebook).Take(&note).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "note"}
			}
			return err
		}

		return tx.Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Comment{}, err
		}
		return domain.Comment{}, errors.Wrap(err, "NoteRepository.AppendComment")
	}

	return commentToDomain(row), nil
}

func noteToDomain(row models.Note) domain.Note {
	comments := make([]domain.Comment, 0, len(row.Comments))
	for _, c := range row.Comments {
		comments = append(comments, commentToDomain(c))
	}

	return domain.Note{
		ID:       row.ID,
		Notebook: row.Notebook,
		Author:   authorToDomain(row.AuthorIdentity, row.AuthorEmail),
		Title:    row.Title,
		Content:  row.Content,
		Comments: comments,
		Date:     row.CDate,
	}
}

func commentToDomain(row models.Comment) domain.Comment {
	return domain.Comment{
		ID:      row.ID,
		Author:  authorToDomain(row.AuthorIdentity, row.AuthorEmail),
		Content: row.Content,
		Date:    row.CDate,
	}
}

func authorToDomain(identity, email *string) *domain.Author {
	if identity == nil {
		return nil
	}
	author := domain.Author{Identity: *identity}
	if email != nil {
		author.Email = *email
	}
	return &author
}
