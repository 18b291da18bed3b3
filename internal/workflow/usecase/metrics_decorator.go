package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/bookflow/internal/metrics"
	"github.com/allisson/bookflow/internal/workflow/domain"
)

// workflowUseCaseWithMetrics decorates WorkflowUseCase with metrics instrumentation.
type workflowUseCaseWithMetrics struct {
	next    WorkflowUseCase
	metrics metrics.BusinessMetrics
}

// NewWorkflowUseCaseWithMetrics wraps a WorkflowUseCase with metrics recording.
func NewWorkflowUseCaseWithMetrics(useCase WorkflowUseCase, m metrics.BusinessMetrics) WorkflowUseCase {
	return &workflowUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for book creation.
func (w *workflowUseCaseWithMetrics) Create(
	ctx context.Context,
	title, author, actingUser string,
) (*domain.Book, error) {
	start := time.Now()
	book, err := w.next.Create(ctx, title, author, actingUser)

	status := "success"
	if err != nil {
		status = "error"
	}

	w.metrics.RecordOperation(ctx, "workflow", "book_create", status)
	w.metrics.RecordDuration(ctx, "workflow", "book_create", time.Since(start), status)

	return book, err
}

// Transition records metrics per workflow action.
func (w *workflowUseCaseWithMetrics) Transition(
	ctx context.Context,
	bookID uuid.UUID,
	action domain.Action,
	actingUser string,
	comment *string,
) (*domain.Book, error) {
	start := time.Now()
	book, err := w.next.Transition(ctx, bookID, action, actingUser, comment)

	status := "success"
	if err != nil {
		status = "error"
	}

	operation := "transition_" + action.String()
	w.metrics.RecordOperation(ctx, "workflow", operation, status)
	w.metrics.RecordDuration(ctx, "workflow", operation, time.Since(start), status)

	return book, err
}

// Get records metrics for book reads.
func (w *workflowUseCaseWithMetrics) Get(ctx context.Context, bookID uuid.UUID) (*domain.Book, error) {
	start := time.Now()
	book, err := w.next.Get(ctx, bookID)

	status := "success"
	if err != nil {
		status = "error"
	}

	w.metrics.RecordOperation(ctx, "workflow", "book_get", status)
	w.metrics.RecordDuration(ctx, "workflow", "book_get", time.Since(start), status)

	return book, err
}

// History records metrics for history reads.
func (w *workflowUseCaseWithMetrics) History(
	ctx context.Context,
	bookID uuid.UUID,
	offset, limit int,
) ([]*domain.WorkflowHistoryEntry, error) {
	start := time.Now()
	entries, err := w.next.History(ctx, bookID, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	w.metrics.RecordOperation(ctx, "workflow", "book_history", status)
	w.metrics.RecordDuration(ctx, "workflow", "book_history", time.Since(start), status)

	return entries, err
}
