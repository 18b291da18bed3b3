package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/bookflow/internal/errors"
	eventsDomain "github.com/allisson/bookflow/internal/events/domain"
	"github.com/allisson/bookflow/internal/workflow/domain"
)

// MockBookStore is a mock implementation of BookStore.
type MockBookStore struct {
	mock.Mock
}

func (m *MockBookStore) GetBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookStore) CreateBook(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookStore) UpdateBookStatus(
	ctx context.Context,
	bookID uuid.UUID,
	expectedVersion int64,
	newStatus domain.BookStatus,
) (*domain.Book, error) {
	args := m.Called(ctx, bookID, expectedVersion, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookStore) AppendWorkflowHistory(
	ctx context.Context,
	entry *domain.WorkflowHistoryEntry,
) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBookStore) ListWorkflowHistory(
	ctx context.Context,
	bookID uuid.UUID,
	offset, limit int,
) ([]*domain.WorkflowHistoryEntry, error) {
	args := m.Called(ctx, bookID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WorkflowHistoryEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of publisher.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishStatusChanged(
	ctx context.Context,
	change eventsDomain.StatusChange,
) (string, error) {
	args := m.Called(ctx, change)
	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bookWithStatus(status domain.BookStatus) *domain.Book {
	now := time.Now().UTC()
	return &domain.Book{
		ID:        uuid.Must(uuid.NewV7()),
		Title:     "The Go Workshop",
		Author:    "Jane Roe",
		Status:    status,
		Version:   3,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestWorkflowUseCase_Create(t *testing.T) {
	ctx := context.Background()
	store := &MockBookStore{}
	pub := &MockEventPublisher{}
	uc := NewWorkflowUseCase(store, pub, testLogger())

	store.On("CreateBook", ctx, mock.AnythingOfType("*domain.Book")).Return(nil)
	store.On("AppendWorkflowHistory", ctx, mock.MatchedBy(func(entry *domain.WorkflowHistoryEntry) bool {
		return entry.FromStatus == nil &&
			entry.ToStatus == domain.StatusDraft &&
			entry.Action == domain.ActionCreate &&
			entry.ActionBy == "user-1"
	})).Return(nil)

	book, err := uc.Create(ctx, "The Go Workshop", "Jane Roe", "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, book.Status)
	assert.Equal(t, int64(1), book.Version)

	store.AssertExpectations(t)
	pub.AssertNotCalled(t, "PublishStatusChanged", mock.Anything, mock.Anything)
}

// Scenario: book at DRAFT, action SUBMIT. One history entry with the SUBMIT
// action and one published event carrying the (DRAFT, SUBMITTED_FOR_EDITING)
// pair.
func TestWorkflowUseCase_Transition_Submit(t *testing.T) {
	ctx := context.Background()
	store := &MockBookStore{}
	pub := &MockEventPublisher{}
	uc := NewWorkflowUseCase(store, pub, testLogger())

	book := bookWithStatus(domain.StatusDraft)
	updated := *book
	updated.Status = domain.StatusSubmittedForEditing
	updated.Version = book.Version + 1

	store.On("GetBook", ctx, book.ID).Return(book, nil)
	store.On("UpdateBookStatus", ctx, book.ID, book.Version, domain.StatusSubmittedForEditing).
		Return(&updated, nil)
	store.On("AppendWorkflowHistory", ctx, mock.MatchedBy(func(entry *domain.WorkflowHistoryEntry) bool {
		return entry.Action == domain.ActionSubmit &&
			entry.FromStatus != nil && *entry.FromStatus == domain.StatusDraft &&
			entry.ToStatus == domain.StatusSubmittedForEditing
	})).Return(nil)
	pub.On("PublishStatusChanged", ctx, mock.MatchedBy(func(change eventsDomain.StatusChange) bool {
		return change.PreviousStatus == domain.StatusDraft &&
			change.NewStatus == domain.StatusSubmittedForEditing &&
			change.ChangedBy == "user-1"
	})).Return("event-id-1", nil)

	result, err := uc.Transition(ctx, book.ID, domain.ActionSubmit, "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmittedForEditing, result.Status)

	store.AssertExpectations(t)
	pub.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "PublishStatusChanged", 1)
}

// Scenario: book at PUBLISHED, action SUBMIT. InvalidTransition with reasons,
// no write, no history, no event.
func TestWorkflowUseCase_Transition_InvalidFromPublished(t *testing.T) {
	ctx := context.Background()
	store := &MockBookStore{}
	pub := &MockEventPublisher{}
	uc := NewWorkflowUseCase(store, pub, testLogger())

	book := bookWithStatus(domain.StatusPublished)
	store.On("GetBook", ctx, book.ID).Return(book, nil)

	_, err := uc.Transition(ctx, book.ID, domain.ActionSubmit, "user-1", nil)
	require.Error(t, err)

	var invalidErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
	assert.NotEmpty(t, invalidErr.Reasons)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	store.AssertNotCalled(t, "UpdateBookStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "AppendWorkflowHistory", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishStatusChanged", mock.Anything, mock.Anything)
}

// Scenario: book at READY_FOR_PUBLICATION, action PUBLISH, concurrent version
// mismatch. ConcurrentModification surfaces and no event is published.
func TestWorkflowUseCase_Transition_VersionConflict(t *testing.T) {
	ctx := context.Background()
	store := &MockBookStore{}
	pub := &MockEventPublisher{}
	uc := NewWorkflowUseCase(store, pub, testLogger())

	book := bookWithStatus(domain.StatusReadyForPublication)
	store.On("GetBook", ctx, book.ID).Return(book, nil)
	store.On("UpdateBookStatus", ctx, book.ID, book.Version, domain.StatusPublished).
		Return(nil, domain.ErrVersionConflict)

	_, err := uc.Transition(ctx, book.ID, domain.ActionPublish, "user-1", nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	store.AssertNotCalled(t, "AppendWorkflowHistory", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishStatusChanged", mock.Anything, mock.Anything)
}

func TestWorkflowUseCase_Transition_NotFound(t *testing.T) {
	ctx := context.Background()
	store := &MockBookStore{}
	pub := &MockEventPublisher{}
	uc := NewWorkflowUseCase(store, pub, testLogger())

	bookID := uuid.Must(uuid.NewV7())
	store.On("GetBook", ctx, bookID).Return(nil, domain.ErrBookNotFound)

	_, err := uc.Transition(ctx, bookID, domain.ActionSubmit, "user-1", nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWorkflowUseCase_Transition_UnknownAction(t *testing.T) {
	ctx := context.Background()
	store := &MockBookStore{}
	pub := &MockEventPublisher{}
	uc := NewWorkflowUseCase(store, pub, testLogger())

	_, err := uc.Transition(ctx, uuid.Must(uuid.NewV7()), domain.Action("ARCHIVE"), "user-1", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	store.AssertNotCalled(t, "GetBook", mock.Anything, mock.Anything)
}

// A publish failure never fails the transition: the status change is already
// committed and the caller still gets the updated book.
func TestWorkflowUseCase_Transition_PublishFailureIsTolerated(t *testing.T) {
	ctx := context.Background()
	store := &MockBookStore{}
	pub := &MockEventPublisher{}
	uc := NewWorkflowUseCase(store, pub, testLogger())

	book := bookWithStatus(domain.StatusReadyForPublication)
	updated := *book
	updated.Status = domain.StatusPublished
	updated.Version = book.Version + 1

	store.On("GetBook", ctx, book.ID).Return(book, nil)
	store.On("UpdateBookStatus", ctx, book.ID, book.Version, domain.StatusPublished).
		Return(&updated, nil)
	store.On("AppendWorkflowHistory", ctx, mock.Anything).Return(nil)
	pub.On("PublishStatusChanged", ctx, mock.Anything).Return("", assert.AnError)

	result, err := uc.Transition(ctx, book.ID, domain.ActionPublish, "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, result.Status)
}

// Re-issuing an action whose target the book already reached resolves to the
// legal self-loop: history is written but no event is published.
func TestWorkflowUseCase_Transition_ActionStatusMatrix(t *testing.T) {
	ctx := context.Background()
	statuses := []domain.BookStatus{
		domain.StatusDraft,
		domain.StatusSubmittedForEditing,
		domain.StatusReadyForPublication,
		domain.StatusPublished,
	}

	// The committed target per (action, current status). Absent pairs must
	// reject without touching the store. A book already at the action's
	// target re-issues the action as a silent self-loop.
	committed := map[domain.Action]map[domain.BookStatus]domain.BookStatus{
		domain.ActionSubmit: {
			domain.StatusDraft:               domain.StatusSubmittedForEditing,
			domain.StatusSubmittedForEditing: domain.StatusSubmittedForEditing,
		},
		domain.ActionApprove: {
			domain.StatusSubmittedForEditing: domain.StatusReadyForPublication,
			domain.StatusReadyForPublication: domain.StatusReadyForPublication,
		},
		domain.ActionReject: {
			domain.StatusReadyForPublication: domain.StatusSubmittedForEditing,
			domain.StatusSubmittedForEditing: domain.StatusDraft,
		},
		domain.ActionPublish: {
			domain.StatusReadyForPublication: domain.StatusPublished,
			domain.StatusPublished:           domain.StatusPublished,
		},
	}

	for _, action := range []domain.Action{
		domain.ActionSubmit,
		domain.ActionApprove,
		domain.ActionReject,
		domain.ActionPublish,
	} {
		for _, status := range statuses {
			t.Run(action.String()+"_from_"+status.String(), func(t *testing.T) {
				store := &MockBookStore{}
				pub := &MockEventPublisher{}
				uc := NewWorkflowUseCase(store, pub, testLogger())

				book := bookWithStatus(status)
				store.On("GetBook", ctx, book.ID).Return(book, nil)

				target, ok := committed[action][status]
				if ok {
					updated := *book
					updated.Status = target
					updated.Version = book.Version + 1
					store.On("UpdateBookStatus", ctx, book.ID, book.Version, target).
						Return(&updated, nil)
					store.On("AppendWorkflowHistory", ctx, mock.Anything).Return(nil)
					pub.On("PublishStatusChanged", ctx, mock.Anything).
						Return("msg-1", nil).Maybe()
				}

				result, err := uc.Transition(ctx, book.ID, action, "user-1", nil)
				if ok {
					require.NoError(t, err)
					assert.Equal(t, target, result.Status)
				} else {
					var invalidTransition *domain.InvalidTransitionError
					require.ErrorAs(t, err, &invalidTransition)
					assert.Equal(t, action, invalidTransition.Action)
					assert.Equal(t, status, invalidTransition.From)
					assert.NotEmpty(t, invalidTransition.Reasons)
					store.AssertNotCalled(t, "UpdateBookStatus",
						mock.Anything, mock.Anything, mock.Anything, mock.Anything)
					store.AssertNotCalled(t, "AppendWorkflowHistory", mock.Anything, mock.Anything)
					pub.AssertNotCalled(t, "PublishStatusChanged", mock.Anything, mock.Anything)
				}
				store.AssertExpectations(t)
			})
		}
	}
}

func TestWorkflowUseCase_Transition_InapplicableActionRejects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		status domain.BookStatus
		action domain.Action
	}{
		{
			// A reviewed book must not slide back to editing via SUBMIT.
			name:   "submit on reviewed book",
			status: domain.StatusReadyForPublication,
			action: domain.ActionSubmit,
		},
		{
			// A draft has nothing to reject; REJECT must not advance it.
			name:   "reject on draft book",
			status: domain.StatusDraft,
			action: domain.ActionReject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockBookStore{}
			pub := &MockEventPublisher{}
			uc := NewWorkflowUseCase(store, pub, testLogger())

			book := bookWithStatus(tt.status)
			store.On("GetBook", ctx, book.ID).Return(book, nil)

			_, err := uc.Transition(ctx, book.ID, tt.action, "user-1", nil)

			var invalidTransition *domain.InvalidTransitionError
			require.ErrorAs(t, err, &invalidTransition)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			store.AssertNotCalled(t, "UpdateBookStatus",
				mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			pub.AssertNotCalled(t, "PublishStatusChanged", mock.Anything, mock.Anything)
		})
	}
}

func TestWorkflowUseCase_Transition_SelfLoopIsSilent(t *testing.T) {
	ctx := context.Background()
	store := &MockBookStore{}
	pub := &MockEventPublisher{}
	uc := NewWorkflowUseCase(store, pub, testLogger())

	book := bookWithStatus(domain.StatusSubmittedForEditing)
	updated := *book
	updated.Version = book.Version + 1

	store.On("GetBook", ctx, book.ID).Return(book, nil)
	store.On("UpdateBookStatus", ctx, book.ID, book.Version, domain.StatusSubmittedForEditing).
		Return(&updated, nil)
	store.On("AppendWorkflowHistory", ctx, mock.Anything).Return(nil)

	_, err := uc.Transition(ctx, book.ID, domain.ActionSubmit, "user-1", nil)
	require.NoError(t, err)

	pub.AssertNotCalled(t, "PublishStatusChanged", mock.Anything, mock.Anything)
}

// The backward reject edge commits, publishes, and carries the comment as the
// change reason.
func TestWorkflowUseCase_Transition_RejectPublishesWithReason(t *testing.T) {
	ctx := context.Background()
	store := &MockBookStore{}
	pub := &MockEventPublisher{}
	uc := NewWorkflowUseCase(store, pub, testLogger())

	comment := "chapter three needs work"
	book := bookWithStatus(domain.StatusReadyForPublication)
	updated := *book
	updated.Status = domain.StatusSubmittedForEditing
	updated.Version = book.Version + 1

	store.On("GetBook", ctx, book.ID).Return(book, nil)
	store.On("UpdateBookStatus", ctx, book.ID, book.Version, domain.StatusSubmittedForEditing).
		Return(&updated, nil)
	store.On("AppendWorkflowHistory", ctx, mock.MatchedBy(func(entry *domain.WorkflowHistoryEntry) bool {
		return entry.Comment != nil && *entry.Comment == comment
	})).Return(nil)
	pub.On("PublishStatusChanged", ctx, mock.MatchedBy(func(change eventsDomain.StatusChange) bool {
		return change.ChangeReason != nil && *change.ChangeReason == comment &&
			change.PreviousStatus == domain.StatusReadyForPublication &&
			change.NewStatus == domain.StatusSubmittedForEditing
	})).Return("event-id-2", nil)

	_, err := uc.Transition(ctx, book.ID, domain.ActionReject, "editor-1", &comment)
	require.NoError(t, err)

	pub.AssertExpectations(t)
}

func TestWorkflowUseCase_History(t *testing.T) {
	ctx := context.Background()
	store := &MockBookStore{}
	pub := &MockEventPublisher{}
	uc := NewWorkflowUseCase(store, pub, testLogger())

	book := bookWithStatus(domain.StatusDraft)
	entries := []*domain.WorkflowHistoryEntry{{ID: uuid.Must(uuid.NewV7()), BookID: book.ID}}

	store.On("GetBook", ctx, book.ID).Return(book, nil)
	store.On("ListWorkflowHistory", ctx, book.ID, 0, 50).Return(entries, nil)

	listed, err := uc.History(ctx, book.ID, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, entries, listed)
}
