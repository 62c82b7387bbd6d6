package dto

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/parkwise/auth-service/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("password_strength", validatePasswordStrength)
}

// validatePasswordStrength checks that the password contains at least one
// uppercase letter, one lowercase letter and one digit. Length bounds are
// covered by min/max tags.
func validatePasswordStrength(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	hasUpper := false
	hasLower := false
	hasNumber := false

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		}
		if unicode.IsLower(char) {
			hasLower = true
		}
		if unicode.IsNumber(char) {
			hasNumber = true
		}

		if hasUpper && hasLower && hasNumber {
			return true
		}
	}

	return hasUpper && hasLower && hasNumber
}

// validateStruct runs the tag validators and converts the first failure
// into a domain error the response layer knows how to serialize.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrors) == 0 {
		return domain.ErrInternal(err)
	}

	fe := fieldErrors[0]
	field := jsonFieldName(fe)

	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField(field)
	case "email":
		return domain.ErrInvalidField(field, "invalid format")
	case "min":
		if isPasswordField(field) {
			return domain.ErrWeakPassword("min length " + fe.Param())
		}
		return domain.ErrInvalidField(field, "too short")
	case "max":
		if isPasswordField(field) {
			return domain.ErrWeakPassword("max length " + fe.Param())
		}
		return domain.ErrInvalidField(field, "too long")
	case "password_strength":
		return domain.ErrWeakPassword("must contain an uppercase letter, a lowercase letter and a digit")
	default:
		return domain.ErrInvalidField(field, "invalid")
	}
}

func isPasswordField(field string) bool {
	switch field {
	case "password", "new_password", "old_password":
		return true
	}
	return false
}

// jsonFieldName maps the struct field back to its wire name so error
// meta matches what the client actually sent.
func jsonFieldName(fe validator.FieldError) string {
	switch fe.StructField() {
	case "Name":
		return "name"
	case "Email":
		return "email"
	case "Password":
		return "password"
	case "Token":
		return "token"
	case "RefreshToken":
		return "refresh_token"
	case "OldPassword":
		return "old_password"
	case "NewPassword":
		return "new_password"
	default:
		return fe.Field()
	}
}
