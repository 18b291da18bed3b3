package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/bookflow/internal/errors"
	eventsDomain "github.com/allisson/bookflow/internal/events/domain"
	"github.com/allisson/bookflow/internal/events/publisher"
	"github.com/allisson/bookflow/internal/workflow/domain"
)

// workflowUseCase implements WorkflowUseCase. It holds no per-book state:
// concurrency safety across concurrent transitions on the same book comes
// from the store's version compare-and-swap, not from in-process locking.
type workflowUseCase struct {
	store     BookStore
	publisher publisher.EventPublisher
	logger    *slog.Logger
}

// NewWorkflowUseCase creates the workflow orchestrator.
func NewWorkflowUseCase(
	store BookStore,
	eventPublisher publisher.EventPublisher,
	logger *slog.Logger,
) WorkflowUseCase {
	return &workflowUseCase{
		store:     store,
		publisher: eventPublisher,
		logger:    logger,
	}
}

// Create creates a new book in DRAFT and writes the creation history entry.
func (w *workflowUseCase) Create(
	ctx context.Context,
	title, author, actingUser string,
) (*domain.Book, error) {
	now := time.Now().UTC()
	book := &domain.Book{
		ID:        uuid.Must(uuid.NewV7()),
		Title:     title,
		Author:    author,
		Status:    domain.StatusDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := w.store.CreateBook(ctx, book); err != nil {
		return nil, apperrors.Wrap(err, "failed to create book")
	}

	entry := &domain.WorkflowHistoryEntry{
		ID:         uuid.Must(uuid.NewV7()),
		BookID:     book.ID,
		FromStatus: nil,
		ToStatus:   domain.StatusDraft,
		Action:     domain.ActionCreate,
		ActionBy:   actingUser,
		CreatedAt:  now,
	}
	if err := w.store.AppendWorkflowHistory(ctx, entry); err != nil {
		return nil, apperrors.Wrap(err, "failed to append creation history")
	}

	w.logger.Info("book created",
		slog.String("book_id", book.ID.String()),
		slog.String("action_by", actingUser),
	)
	return book, nil
}

// Transition applies a workflow action to a book.
//
// Side effects are ordered: the status write commits before the history entry,
// and the history entry before the event publish. A publish failure never
// rolls back the committed status; the transition is still reported as
// successful and the notification is at most delayed.
func (w *workflowUseCase) Transition(
	ctx context.Context,
	bookID uuid.UUID,
	action domain.Action,
	actingUser string,
	comment *string,
) (*domain.Book, error) {
	if !action.IsValid() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown action %q", action)
	}

	book, err := w.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// Each action binds to specific (from, to) pairs. Re-issuing an action
	// whose target the book already reached is idempotent and resolves to the
	// legal self-loop; any other inapplicable pair rejects, with the action's
	// nominal target naming the pair that was asked for.
	target, applies := action.TargetStatus(book.Status)
	if !applies {
		nominal := action.NominalTarget()
		if nominal != book.Status {
			return nil, &domain.InvalidTransitionError{
				Action: action,
				From:   book.Status,
				To:     nominal,
				Reasons: []string{
					fmt.Sprintf("action %s does not apply to status %s", action, book.Status),
				},
			}
		}
		target = nominal
	}

	result := domain.ValidateTransition(book.Status, target)
	if !result.OK {
		return nil, &domain.InvalidTransitionError{
			Action:  action,
			From:    book.Status,
			To:      target,
			Reasons: result.Reasons,
		}
	}
	for _, warning := range result.Warnings {
		w.logger.Warn("unusual workflow transition",
			slog.String("book_id", bookID.String()),
			slog.String("action_by", actingUser),
			slog.String("warning", warning),
		)
	}

	previous := book.Status
	updated, err := w.store.UpdateBookStatus(ctx, bookID, book.Version, target)
	if err != nil {
		return nil, err
	}

	entry := &domain.WorkflowHistoryEntry{
		ID:         uuid.Must(uuid.NewV7()),
		BookID:     bookID,
		FromStatus: &previous,
		ToStatus:   target,
		Action:     action,
		ActionBy:   actingUser,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := w.store.AppendWorkflowHistory(ctx, entry); err != nil {
		return nil, apperrors.Wrap(err, "failed to append workflow history")
	}

	if eventsDomain.ShouldNotify(previous, target) {
		change := eventsDomain.StatusChange{
			Book:           updated,
			PreviousStatus: previous,
			NewStatus:      target,
			ChangedBy:      actingUser,
			ChangeReason:   comment,
		}
		if _, err := w.publisher.PublishStatusChanged(ctx, change); err != nil {
			// Best-effort: the status change is committed and stays committed.
			w.logger.Error("failed to publish status-change event",
				slog.String("book_id", bookID.String()),
				slog.String("previous_status", previous.String()),
				slog.String("new_status", target.String()),
				slog.Any("error", err),
			)
		}
	}

	w.logger.Info("workflow transition applied",
		slog.String("book_id", bookID.String()),
		slog.String("action", action.String()),
		slog.String("previous_status", previous.String()),
		slog.String("new_status", target.String()),
		slog.String("action_by", actingUser),
	)
	return updated, nil
}

// Get loads a book by id.
func (w *workflowUseCase) Get(ctx context.Context, bookID uuid.UUID) (*domain.Book, error) {
	return w.store.GetBook(ctx, bookID)
}

// History lists the workflow history of a book, oldest first.
func (w *workflowUseCase) History(
	ctx context.Context,
	bookID uuid.UUID,
	offset, limit int,
) ([]*domain.WorkflowHistoryEntry, error) {
	if _, err := w.store.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	return w.store.ListWorkflowHistory(ctx, bookID, offset, limit)
}
