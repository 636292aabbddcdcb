package middleware

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	pincodeRegex = regexp.MustCompile(`^[0-9]{6}$`)
	setupOnce    sync.Once
)

// SetupValidator configures gin's validator: form tag names in errors and
// the custom "pincode" rule (six digits). Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
			return pincodeRegex.MatchString(fl.Field().String())
		})
	})
}

// fieldLabels names form fields in messages
var fieldLabels = map[string]string{
	"email":      "email",
	"password":   "password",
	"firstName":  "first name",
	"lastName":   "last name",
	"phone":      "phone number",
	"address":    "shipping address",
	"pincode":    "pincode",
	"name":       "product name",
	"price":      "price",
	"quantity":   "quantity",
	"categoryId": "category",
	"imageUrl":   "image URL",
	"productId":  "product",
	"status":     "status",
}

// ValidationMessage turns a binding error into one line fit for an inline
// form alert. Only the first failing field is reported.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check the form and try again"
	}

	e := verrs[0]
	label, ok := fieldLabels[e.Field()]
	if !ok {
		label = e.Field()
	}

	switch e.Tag() {
	case "required":
		return "Please enter your " + label
	case "email":
		return "Please enter a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return "The " + label + " must be at least " + e.Param() + " characters"
		}
		return "The " + label + " must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "The " + label + " must be at most " + e.Param() + " characters"
		}
		return "The " + label + " must be at most " + e.Param()
	case "pincode":
		return "Please enter a 6-digit pincode"
	case "oneof":
		return "Please choose a valid " + label
	case "url":
		return "Please enter a valid " + label
	case "numeric", "gte", "gt":
		return "Please enter a valid " + label
	default:
		return "Please enter a valid " + label
	}
}
