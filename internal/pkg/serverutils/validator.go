package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation on a bound request DTO and
// returns a 400 AppError naming the failing fields.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return NewAppError(fiber.StatusBadRequest, err.Error())
	}

	fields := make([]string, 0, len(invalid))
	for _, fieldErr := range invalid {
		fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
	}
	return NewAppError(fiber.StatusBadRequest, "invalid request: "+strings.Join(fields, ", "))
}
