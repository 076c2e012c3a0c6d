package client

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"druckerei-client/models"
	"druckerei-client/utils"
)

var validate = validator.New()

// checkPtrInput is checkInput for partial-update DTOs built from pointer
// fields; nil fields stay untouched and unvalidated.
func checkPtrInput(dto any) error {
	utils.NormalizePtrDTO(dto)
	return translate(validate.Struct(dto))
}

// checkInput normalizes (trim strings, round floats) and validates an input
// DTO, translating the first validator failure into a ValidationError so it
// joins the engine's error taxonomy.
func checkInput(dto any) error {
	utils.NormalizeDTO(dto)
	return translate(validate.Struct(dto))
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return &models.ValidationError{
			Field:  strings.ToLower(ve[0].Field()),
			Reason: "failed " + ve[0].Tag() + " check",
		}
	}
	return err
}
