package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/bookflow/internal/errors"
	"github.com/allisson/bookflow/internal/workflow/domain"
)

func newTestBook() *domain.Book {
	now := time.Now().UTC()
	return &domain.Book{
		ID:        uuid.Must(uuid.NewV7()),
		Title:     "The Go Workshop",
		Author:    "Jane Roe",
		Status:    domain.StatusDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryBookRepository_GetBook(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookRepository()
	book := newTestBook()

	require.NoError(t, repo.CreateBook(ctx, book))

	loaded, err := repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book, loaded)

	// The returned book is a copy; mutating it must not affect the store.
	loaded.Status = domain.StatusPublished
	again, err := repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, again.Status)
}

func TestMemoryBookRepository_GetBook_NotFound(t *testing.T) {
	repo := NewMemoryBookRepository()

	_, err := repo.GetBook(context.Background(), uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryBookRepository_UpdateBookStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookRepository()
	book := newTestBook()
	require.NoError(t, repo.CreateBook(ctx, book))

	t.Run("matching version succeeds and bumps version", func(t *testing.T) {
		updated, err := repo.UpdateBookStatus(ctx, book.ID, 1, domain.StatusSubmittedForEditing)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmittedForEditing, updated.Status)
		assert.Equal(t, int64(2), updated.Version)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		_, err := repo.UpdateBookStatus(ctx, book.ID, 1, domain.StatusReadyForPublication)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("unknown book", func(t *testing.T) {
		_, err := repo.UpdateBookStatus(ctx, uuid.Must(uuid.NewV7()), 1, domain.StatusDraft)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestMemoryBookRepository_WorkflowHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookRepository()
	book := newTestBook()
	require.NoError(t, repo.CreateBook(ctx, book))

	from := domain.StatusDraft
	entries := []*domain.WorkflowHistoryEntry{
		{
			ID:        uuid.Must(uuid.NewV7()),
			BookID:    book.ID,
			ToStatus:  domain.StatusDraft,
			Action:    domain.ActionCreate,
			ActionBy:  "user-1",
			CreatedAt: time.Now().UTC(),
		},
		{
			ID:         uuid.Must(uuid.NewV7()),
			BookID:     book.ID,
			FromStatus: &from,
			ToStatus:   domain.StatusSubmittedForEditing,
			Action:     domain.ActionSubmit,
			ActionBy:   "user-1",
			CreatedAt:  time.Now().UTC(),
		},
	}
	for _, entry := range entries {
		require.NoError(t, repo.AppendWorkflowHistory(ctx, entry))
	}

	t.Run("lists oldest first", func(t *testing.T) {
		listed, err := repo.ListWorkflowHistory(ctx, book.ID, 0, 50)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, domain.ActionCreate, listed[0].Action)
		assert.Equal(t, domain.ActionSubmit, listed[1].Action)
		assert.Nil(t, listed[0].FromStatus)
		require.NotNil(t, listed[1].FromStatus)
		assert.Equal(t, domain.StatusDraft, *listed[1].FromStatus)
	})

	t.Run("pagination", func(t *testing.T) {
		listed, err := repo.ListWorkflowHistory(ctx, book.ID, 1, 50)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, domain.ActionSubmit, listed[0].Action)

		listed, err = repo.ListWorkflowHistory(ctx, book.ID, 5, 50)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("negative offset clamps to start", func(t *testing.T) {
		listed, err := repo.ListWorkflowHistory(ctx, book.ID, -3, 50)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, domain.ActionCreate, listed[0].Action)
	})
}
