package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// check validates a record against its struct tags. Failures wrap
// domain.ErrValidationFailure and involve no I/O.
func check(record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", domain.ErrValidationFailure, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrValidationFailure, strings.Join(msgs, "; "))
}
