// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/bookflow/internal/validation"
)

// CreateBookRequest contains the parameters for creating a book. New books
// always start in DRAFT.
type CreateBookRequest struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	ActingUserID string `json:"acting_user_id"`
}

// Validate checks if the create book request is valid.
func (r *CreateBookRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, customValidation.NotBlank, validation.Length(1, 500)),
		validation.Field(&r.Author, validation.Required, customValidation.NotBlank, validation.Length(1, 500)),
		validation.Field(&r.ActingUserID, validation.Required, customValidation.NoWhitespace),
	)
}

// TransitionRequest contains the parameters shared by all workflow action
// endpoints. The action itself comes from the route, not the body. The
// comment is optional and becomes the change reason on the published event.
type TransitionRequest struct {
	ActingUserID string  `json:"acting_user_id"`
	Comment      *string `json:"comment"`
}

// Validate checks if the transition request is valid.
func (r *TransitionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ActingUserID, validation.Required, customValidation.NoWhitespace),
	)
}
