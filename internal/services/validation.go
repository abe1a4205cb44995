package services

import (
	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/pkg/validation"
)

// validateInput runs the struct tags of input and turns failures into a
// KindInvalid AppError.
func validateInput(input interface{}) error {
	result := validation.Struct(input)
	if !result.HasErrors() {
		return nil
	}
	return models.NewValidationError(result.First(), result.Errors())
}
