package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
	"github.com/stockflow/backend/internal/interfaces/http/dto"
)

const maxBarcodeLength = 64

// SetupValidator configures the gin binding validator: JSON tag names in
// errors plus the barcode and unit_type tags used by request DTOs.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("binding validator is not go-playground/validator")
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	if err := v.RegisterValidation("barcode", validateBarcode); err != nil {
		return err
	}
	return v.RegisterValidation("unit_type", validateUnitType)
}

// validateBarcode accepts printable codes of at most 64 characters once
// surrounding whitespace is trimmed.
func validateBarcode(fl validator.FieldLevel) bool {
	code := catalog.NormalizeBarcode(fl.Field().String())
	if code == "" || len(code) > maxBarcodeLength {
		return false
	}
	for _, r := range code {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

func validateUnitType(fl validator.FieldLevel) bool {
	_, err := valueobject.ParseUnitType(fl.Field().String())
	return err == nil
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
				Tag:     e.Tag(),
			})
		}
	}

	return dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	)
}

// HandleValidationError answers a failed bind. Malformed JSON is reported
// as INVALID_JSON, rule violations as VALIDATION_ERROR with field details.
func HandleValidationError(c *gin.Context, err error) {
	requestID := GetRequestID(c)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		c.Set(ErrorCodeKey, dto.ErrCodeInvalidJSON)
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeInvalidJSON, "Request body could not be parsed", requestID, nil))
		return
	}
	c.Set(ErrorCodeKey, shared.CodeValidation)
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "barcode":
		return "Must be a printable barcode of at most 64 characters"
	case "unit_type":
		return "Must be one of: piece pack box"
	default:
		return "Invalid value"
	}
}
