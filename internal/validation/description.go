package validation

import (
	"fmt"
	"unicode/utf8"
)

const MaxDescriptionLength = 100

var ErrDescriptionTooLong = invalid(fmt.Sprintf("description is too long (max %d characters)", MaxDescriptionLength))

// ValidateDescription checks the optional shared description of an upload batch
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
