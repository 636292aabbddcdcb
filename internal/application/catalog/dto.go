package catalog

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/retail/storefront/internal/domain/catalog"
	"github.com/retail/storefront/internal/domain/shared"
)

// ProductInput carries the free-text admin form fields checked by struct
// validation. Numbers and the category are checked by the domain.
type ProductInput struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
	ImageURL    string `validate:"omitempty,url,max=1000"`
}

// ProductInputFrom extracts the struct-validated fields of a draft
func ProductInputFrom(draft catalog.ProductDraft) ProductInput {
	return ProductInput{
		Name:        draft.Name,
		Description: draft.Description,
		ImageURL:    draft.ImageURL,
	}
}

var inputMessages = map[string]string{
	"Name":        "Product name must be at most 200 characters",
	"Description": "Description must be at most 2000 characters",
	"ImageURL":    "Please enter a valid image URL",
}

// validationError turns validator output into a displayable domain error
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return shared.ErrInvalidInput
	}
	first := verrs[0]
	if first.Field() == "Name" && first.Tag() == "required" {
		return catalog.ErrNameRequired
	}
	if msg, ok := inputMessages[first.Field()]; ok {
		return shared.InvalidInput(msg)
	}
	return shared.ErrInvalidInput
}
