package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	registerCustomValidations()
}

func registerCustomValidations() {
	// Credit action validation
	validate.RegisterValidation("credit_action", func(fl validator.FieldLevel) bool {
		action := fl.Field().String()
		validActions := []string{"Renewal", "Top-up", "Deduction", "Refund", "Adjustment"}
		for _, a := range validActions {
			if action == a {
				return true
			}
		}
		return false
	})

	// Officer status validation
	validate.RegisterValidation("officer_status", func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		validStatuses := []string{"Active", "Suspended", "Inactive"}
		for _, s := range validStatuses {
			if status == s {
				return true
			}
		}
		return false
	})

	// Query type validation
	validate.RegisterValidation("query_type", func(fl validator.FieldLevel) bool {
		queryType := fl.Field().String()
		validTypes := []string{"OSINT", "PRO", ""}
		for _, t := range validTypes {
			if queryType == t {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "credit_action":
			errors[field] = "Must be one of: Renewal, Top-up, Deduction, Refund, Adjustment"
		case "officer_status":
			errors[field] = "Must be one of: Active, Suspended, Inactive"
		case "query_type":
			errors[field] = "Must be one of: OSINT, PRO"
		case "uuid":
			errors[field] = "Invalid UUID format"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}
