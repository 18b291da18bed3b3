package notifications

import (
	"fmt"

	validation "github.com/jellydator/validation"

	eventsDomain "github.com/allisson/bookflow/internal/events/domain"
	customValidation "github.com/allisson/bookflow/internal/validation"
)

// ResolverConfig holds the configured delivery addresses. User profiles live
// outside this service, so recipients resolve to the configured desk aliases:
// submissions go to the editorial desk, release events to the publishing desk,
// and rejections back to the authors desk.
type ResolverConfig struct {
	EditorialEmail  string
	PublishingEmail string
	AuthorsEmail    string
}

// Validate checks that every desk has a well-formed delivery address.
func (c ResolverConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.EditorialEmail, validation.Required, customValidation.Email),
		validation.Field(&c.PublishingEmail, validation.Required, customValidation.Email),
		validation.Field(&c.AuthorsEmail, validation.Required, customValidation.Email),
	)
}

// Resolver maps a notification kind to its recipient.
type Resolver struct {
	config ResolverConfig
}

// NewResolver creates a recipient resolver from the configured addresses.
func NewResolver(config ResolverConfig) *Resolver {
	return &Resolver{config: config}
}

// Resolve returns the recipient for a notification kind. Unknown kinds are an
// error so a mapping gap surfaces instead of silently dropping a message.
func (r *Resolver) Resolve(kind eventsDomain.NotificationKind) (Recipient, error) {
	switch kind {
	case eventsDomain.KindBookSubmitted:
		return Recipient{Name: "Editorial desk", Email: r.config.EditorialEmail}, nil
	case eventsDomain.KindBookApproved, eventsDomain.KindBookPublished:
		return Recipient{Name: "Publishing desk", Email: r.config.PublishingEmail}, nil
	case eventsDomain.KindBookRejected, eventsDomain.KindBookReturned:
		return Recipient{Name: "Authors desk", Email: r.config.AuthorsEmail}, nil
	}
	return Recipient{}, fmt.Errorf("no recipient for notification kind %q", kind)
}
