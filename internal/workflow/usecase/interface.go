// Package usecase implements the book workflow orchestration: it validates
// requested transitions, persists accepted ones with optimistic concurrency,
// appends the audit history, and publishes status-change events best-effort.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/bookflow/internal/workflow/domain"
)

// BookStore is the document-store collaborator. The store owns the book
// records and the workflow history; the workflow core only reads and advances
// them through this interface.
type BookStore interface {
	// GetBook loads a book by id. Returns domain.ErrBookNotFound when absent.
	GetBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error)

	// CreateBook persists a new book record.
	CreateBook(ctx context.Context, book *domain.Book) error

	// UpdateBookStatus writes the new status if and only if the stored version
	// still equals expectedVersion, incrementing the version. Returns
	// domain.ErrVersionConflict on a stale write and the updated book on
	// success.
	UpdateBookStatus(
		ctx context.Context,
		bookID uuid.UUID,
		expectedVersion int64,
		newStatus domain.BookStatus,
	) (*domain.Book, error)

	// AppendWorkflowHistory appends one audit entry. Entries are append-only.
	AppendWorkflowHistory(ctx context.Context, entry *domain.WorkflowHistoryEntry) error

	// ListWorkflowHistory returns the audit entries for a book, oldest first.
	ListWorkflowHistory(
		ctx context.Context,
		bookID uuid.UUID,
		offset, limit int,
	) ([]*domain.WorkflowHistoryEntry, error)
}

// WorkflowUseCase drives the book workflow state machine.
type WorkflowUseCase interface {
	// Create creates a new book in DRAFT and writes the creation history entry.
	Create(ctx context.Context, title, author, actingUser string) (*domain.Book, error)

	// Transition applies a workflow action to a book. Rejections carry the
	// validator's reasons; version conflicts require the caller to re-read
	// and retry.
	Transition(
		ctx context.Context,
		bookID uuid.UUID,
		action domain.Action,
		actingUser string,
		comment *string,
	) (*domain.Book, error)

	// Get loads a book, giving callers the fresh version needed to retry
	// after a conflict.
	Get(ctx context.Context, bookID uuid.UUID) (*domain.Book, error)

	// History lists the workflow history of a book, oldest first.
	History(
		ctx context.Context,
		bookID uuid.UUID,
		offset, limit int,
	) ([]*domain.WorkflowHistoryEntry, error)
}
