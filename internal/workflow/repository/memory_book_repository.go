// Package repository provides the in-memory implementation of the document
// store interface. The real document store lives outside this service; this
// implementation backs tests and single-process local runs with the same
// optimistic-concurrency semantics the external store provides.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/bookflow/internal/workflow/domain"
)

// MemoryBookRepository implements usecase.BookStore with in-process maps.
type MemoryBookRepository struct {
	mu      sync.RWMutex
	books   map[uuid.UUID]*domain.Book
	history map[uuid.UUID][]*domain.WorkflowHistoryEntry
}

// NewMemoryBookRepository creates an empty in-memory book store.
func NewMemoryBookRepository() *MemoryBookRepository {
	return &MemoryBookRepository{
		books:   make(map[uuid.UUID]*domain.Book),
		history: make(map[uuid.UUID][]*domain.WorkflowHistoryEntry),
	}
}

// GetBook loads a book by id.
func (r *MemoryBookRepository) GetBook(_ context.Context, bookID uuid.UUID) (*domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[bookID]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	copied := *book
	return &copied, nil
}

// CreateBook persists a new book record.
func (r *MemoryBookRepository) CreateBook(_ context.Context, book *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *book
	r.books[book.ID] = &copied
	return nil
}

// UpdateBookStatus performs the version compare-and-swap status write.
func (r *MemoryBookRepository) UpdateBookStatus(
	_ context.Context,
	bookID uuid.UUID,
	expectedVersion int64,
	newStatus domain.BookStatus,
) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[bookID]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	if book.Version != expectedVersion {
		return nil, domain.ErrVersionConflict
	}

	book.Status = newStatus
	book.Version++
	book.UpdatedAt = time.Now().UTC()

	copied := *book
	return &copied, nil
}

// AppendWorkflowHistory appends one audit entry.
func (r *MemoryBookRepository) AppendWorkflowHistory(
	_ context.Context,
	entry *domain.WorkflowHistoryEntry,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *entry
	r.history[entry.BookID] = append(r.history[entry.BookID], &copied)
	return nil
}

// ListWorkflowHistory returns the audit entries for a book, oldest first.
func (r *MemoryBookRepository) ListWorkflowHistory(
	_ context.Context,
	bookID uuid.UUID,
	offset, limit int,
) ([]*domain.WorkflowHistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.history[bookID]
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return []*domain.WorkflowHistoryEntry{}, nil
	}

	end := offset + limit
	if limit <= 0 || end > len(entries) {
		end = len(entries)
	}

	result := make([]*domain.WorkflowHistoryEntry, 0, end-offset)
	for _, entry := range entries[offset:end] {
		copied := *entry
		result = append(result, &copied)
	}
	return result, nil
}
