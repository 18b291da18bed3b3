// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	workflowDomain "github.com/allisson/bookflow/internal/workflow/domain"
)

// BookResponse represents a book in API responses.
type BookResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MapBookToResponse converts a domain book to an API response.
func MapBookToResponse(book *workflowDomain.Book) BookResponse {
	return BookResponse{
		ID:        book.ID.String(),
		Title:     book.Title,
		Author:    book.Author,
		Status:    book.Status.String(),
		Version:   book.Version,
		CreatedAt: book.CreatedAt,
		UpdatedAt: book.UpdatedAt,
	}
}

// HistoryEntryResponse represents one workflow history entry in API
// responses. FromStatus is null for the creation entry.
type HistoryEntryResponse struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	FromStatus *string   `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Action     string    `json:"action"`
	ActionBy   string    `json:"action_by"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListHistoryResponse represents a paginated list of workflow history
// entries in API responses, oldest first.
type ListHistoryResponse struct {
	Data []HistoryEntryResponse `json:"data"`
}

// MapHistoryToListResponse converts a slice of history entries to a list response.
func MapHistoryToListResponse(entries []*workflowDomain.WorkflowHistoryEntry) ListHistoryResponse {
	data := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		var fromStatus *string
		if entry.FromStatus != nil {
			status := entry.FromStatus.String()
			fromStatus = &status
		}
		data = append(data, HistoryEntryResponse{
			ID:         entry.ID.String(),
			BookID:     entry.BookID.String(),
			FromStatus: fromStatus,
			ToStatus:   entry.ToStatus.String(),
			Action:     entry.Action.String(),
			ActionBy:   entry.ActionBy,
			Comment:    entry.Comment,
			CreatedAt:  entry.CreatedAt,
		})
	}

	return ListHistoryResponse{
		Data: data,
	}
}
