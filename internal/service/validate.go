package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput проверяет теги validate и превращает ошибку в BAD_REQUEST
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field())
		}
		return model.WrapError(model.CodeBadRequest, err, "invalid fields: "+strings.Join(fields, ", "))
	}

	return model.WrapError(model.CodeBadRequest, err, "invalid input")
}

func validateRange(start, end model.TimeOfDay) error {
	if !schedule.ValidRange(start, end) {
		return model.NewError(model.CodeInvalidTimeRange, "start %s must be before end %s", start, end)
	}
	return nil
}
