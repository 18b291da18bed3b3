// Package http provides HTTP handlers for the book workflow API. Every status
// change goes through a workflow action endpoint; statuses are never written
// directly.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/bookflow/internal/httputil"
	customValidation "github.com/allisson/bookflow/internal/validation"
	workflowDomain "github.com/allisson/bookflow/internal/workflow/domain"
	"github.com/allisson/bookflow/internal/workflow/http/dto"
	workflowUseCase "github.com/allisson/bookflow/internal/workflow/usecase"
)

// BookHandler handles HTTP requests for book workflow operations.
type BookHandler struct {
	workflowUseCase workflowUseCase.WorkflowUseCase
	logger          *slog.Logger
}

// NewBookHandler creates a new book handler with required dependencies.
func NewBookHandler(useCase workflowUseCase.WorkflowUseCase, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		workflowUseCase: useCase,
		logger:          logger,
	}
}

// CreateHandler creates a new book in DRAFT.
// POST /v1/books
// Returns 201 Created with the book.
func (h *BookHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateBookRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	book, err := h.workflowUseCase.Create(c.Request.Context(), req.Title, req.Author, req.ActingUserID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapBookToResponse(book))
}

// GetHandler retrieves a book by id.
// GET /v1/books/:id
// Returns 200 OK with the book.
func (h *BookHandler) GetHandler(c *gin.Context) {
	bookID, ok := h.bookIDParam(c)
	if !ok {
		return
	}

	book, err := h.workflowUseCase.Get(c.Request.Context(), bookID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapBookToResponse(book))
}

// TransitionHandler applies the workflow action bound at route registration.
// POST /v1/books/:id/submit|approve|reject|publish
// Returns 200 OK with the updated book, 422 invalid_transition when the
// action is illegal from the current status, 409 conflict on a concurrent
// modification.
func (h *BookHandler) TransitionHandler(action workflowDomain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, ok := h.bookIDParam(c)
		if !ok {
			return
		}

		var req dto.TransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}

		if err := req.Validate(); err != nil {
			httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
			return
		}

		book, err := h.workflowUseCase.Transition(
			c.Request.Context(),
			bookID,
			action,
			req.ActingUserID,
			req.Comment,
		)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}

		c.JSON(http.StatusOK, dto.MapBookToResponse(book))
	}
}

// HistoryHandler lists the workflow history of a book, oldest first.
// GET /v1/books/:id/history?offset=0&limit=50
// Returns 200 OK with the paginated history.
func (h *BookHandler) HistoryHandler(c *gin.Context) {
	bookID, ok := h.bookIDParam(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	entries, err := h.workflowUseCase.History(c.Request.Context(), bookID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapHistoryToListResponse(entries))
}

// RegisterRoutes registers the book workflow routes on a router group.
func (h *BookHandler) RegisterRoutes(group *gin.RouterGroup) {
	books := group.Group("/books")
	books.POST("", h.CreateHandler)
	books.GET("/:id", h.GetHandler)
	books.GET("/:id/history", h.HistoryHandler)
	books.POST("/:id/submit", h.TransitionHandler(workflowDomain.ActionSubmit))
	books.POST("/:id/approve", h.TransitionHandler(workflowDomain.ActionApprove))
	books.POST("/:id/reject", h.TransitionHandler(workflowDomain.ActionReject))
	books.POST("/:id/publish", h.TransitionHandler(workflowDomain.ActionPublish))
}

func (h *BookHandler) bookIDParam(c *gin.Context) (uuid.UUID, bool) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid book id: %w", err), h.logger)
		return uuid.Nil, false
	}
	return bookID, true
}
