// Package validation rejects structurally invalid requests before they reach the contact
// service. All functions are pure checks; a failure is always an *apperr.ValidationError whose
// message names the first violated field.
package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gitlab.com/dirk.krummacker/contactbook/internal/apperr"
	"gitlab.com/dirk.krummacker/contactbook/pkg/model"
)

// ImageField is the multipart form field that carries a profile image.
const ImageField = "profileImage"

var validate = newValidator()

// newValidator creates a validator that reports JSON field names instead of Go field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateCreate checks the body of a create request. Every field except the profile image is
// required, the nested phone number and address have to be complete.
func ValidateCreate(request *model.CreateContactRequest) error {
	return firstViolation(validate.Struct(request))
}

// ValidateUpdate checks the id and the body of an update request. Fields that are present must
// follow the same rules as for a create request.
func ValidateUpdate(id string, patch *model.ContactPatch) error {
	if err := validateID(id); err != nil {
		return err
	}
	return firstViolation(validate.Struct(patch))
}

// ValidateDelete checks the id of a delete request.
func ValidateDelete(id string) error {
	return validateID(id)
}

// ValidateImage checks an uploaded profile image.
func ValidateImage(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return apperr.Validation("%q is not allowed to be empty", ImageField)
	}
	if int64(len(data)) > maxBytes {
		return apperr.Validation("%q must not be larger than %d bytes", ImageField, maxBytes)
	}
	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return apperr.Validation("%q must be an image", ImageField)
	}
	return nil
}

// DecodeError translates an error of the JSON decoder into a validation error.
func DecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Validation("%q must be %s", typeErr.Field, describe(typeErr.Type))
	}
	return apperr.Validation("invalid JSON")
}

func validateID(id string) error {
	if err := validate.Var(strings.TrimSpace(id), "required"); err != nil {
		return apperr.Validation("%q is required", "id")
	}
	return nil
}

// firstViolation turns the first failed rule into a human readable validation error.
func firstViolation(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation("invalid request")
	}
	fieldErr := fieldErrs[0]
	return apperr.Validation("%q %s", fieldPath(fieldErr), rule(fieldErr))
}

// fieldPath drops the name of the top level struct from the namespace,
// e.g. "CreateContactRequest.address.geocode.latitude" becomes "address.geocode.latitude".
func fieldPath(fieldErr validator.FieldError) string {
	_, path, found := strings.Cut(fieldErr.Namespace(), ".")
	if !found {
		return fieldErr.Field()
	}
	return path
}

func rule(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		return "is not allowed to be empty"
	case "email":
		return "must be a valid email"
	default:
		return "is invalid"
	}
}

func describe(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Struct, reflect.Map:
		return "of type object"
	default:
		return fmt.Sprintf("of type %s", t.Kind())
	}
}
