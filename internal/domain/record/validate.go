package record

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"clinadm/internal/shared/errors"
)

var validate = validator.New()

// Validate checks a record against its schema before submission.
// Read-only fields are excluded from required checks; a password is only
// required when the record is new.
func Validate(s Schema, rec Record) error {
	isNew := rec.IsNew()

	for _, f := range s.Fields {
		if f.Derived || f.ReadOnly {
			continue
		}
		if isNew && !createAllows(s, f.Name) {
			continue
		}

		value := strings.TrimSpace(rec.StringValue(f.Name))

		required := f.Required
		if f.Kind == KindPassword && !isNew {
			required = false
		}
		if required && value == "" {
			return errors.NewValidationError(fmt.Sprintf("%s is required", f.Name))
		}
		if value == "" {
			continue
		}

		switch f.Kind {
		case KindEmail:
			if err := validate.Var(value, "email"); err != nil {
				return errors.NewValidationError(fmt.Sprintf("%s is not a valid email address", f.Name))
			}
		case KindNumber:
			if _, err := numberValue(rec[f.Name]); err != nil {
				return errors.NewValidationError(fmt.Sprintf("%s must be a number", f.Name))
			}
		}
	}
	return nil
}
