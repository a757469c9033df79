package validators

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/sekolahku/offline-sync/models"
)

// Logical table names are lowercase snake_case identifiers, as exposed by
// the remote store API.
var tableNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// DraftValidator validates [models.QueueItemDraft] values using the struct
// tags declared on the model plus two custom rules: "tablename" for the
// table identifier format and "operation" for the operation enum.
type DraftValidator struct {
	validate *validator.Validate
}

func NewDraftValidator() (Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("tablename", func(fl validator.FieldLevel) bool {
		return tableNamePattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register tablename rule: %w", err)
	}

	if err := v.RegisterValidation("operation", func(fl validator.FieldLevel) bool {
		return models.Operation(fl.Field().String()).Valid()
	}); err != nil {
		return nil, fmt.Errorf("register operation rule: %w", err)
	}

	return &DraftValidator{validate: v}, nil
}

func (d *DraftValidator) Validate(ctx context.Context, obj any) error {
	switch value := obj.(type) {
	case models.QueueItemDraft:
		return d.validateDraft(ctx, value)
	case *models.QueueItemDraft:
		return d.validateDraft(ctx, *value)
	default:
		return ErrUnsupportedType
	}
}

func (d *DraftValidator) validateDraft(ctx context.Context, draft models.QueueItemDraft) error {
	if err := d.validate.StructCtx(ctx, draft); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return mapFieldErrors(fieldErrs)
		}
		return err
	}

	if draft.Operation == models.OperationDelete {
		for _, row := range draft.Payload {
			if len(row) == 0 {
				return ErrEmptyDeleteKeys
			}
		}
	}

	return nil
}

func mapFieldErrors(fieldErrs validator.ValidationErrors) error {
	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "Table":
			return ErrInvalidTable
		case "Operation":
			return ErrInvalidOperation
		case "Payload":
			return ErrEmptyPayload
		}
	}
	return fieldErrs
}
