package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"keebshop/internal/domain"
)

const MaxQty = 99

var (
	rePhone = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
	reTerm  = regexp.MustCompile(`^[A-Za-z0-9 _'.&/-]{1,50}$`)
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = val.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return rePhone.MatchString(fl.Field().String())
	})
	_ = val.RegisterValidation("layout", func(fl validator.FieldLevel) bool {
		return domain.KeyboardLayout(fl.Field().String()).Valid()
	})
	_ = val.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
		s := domain.OrderStatus(fl.Field().String())
		for _, st := range domain.OrderStatuses {
			if st == s {
				return true
			}
		}
		return false
	})
	val.RegisterStructValidation(productRules, ProductForm{})
	return val
}

// Errors maps form field names to a message fit for display next to the
// field.
type Errors struct {
	Fields map[string]string
}

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// First returns one message in stable order, for single-line alerts.
func (e *Errors) First() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return e.Fields[keys[0]]
}

// Struct validates a form value and returns *Errors on failure.
func Struct(form any) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Errors{Fields: map[string]string{}}
	for _, fe := range verrs {
		if _, seen := out.Fields[fe.Field()]; !seen {
			out.Fields[fe.Field()] = message(fe)
		}
	}
	return out
}

// FieldErrors extracts the per-field map, nil when err is not a validation
// failure.
func FieldErrors(err error) map[string]string {
	var verr *Errors
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func message(fe validator.FieldError) string {
	label := labels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "email":
		return "Enter a valid email address"
	case "eqfield":
		return "Passwords do not match"
	case "phone":
		return "Enter a valid phone number"
	case "oneof", "layout", "orderstatus":
		return label + " has an unsupported value"
	case "datetime":
		return label + " must be a date like 2006-01-02"
	case "gt", "gte", "number", "numeric":
		return "Please enter a valid " + strings.ToLower(label)
	}
	return label + " is invalid"
}

var labels = map[string]string{
	"username":        "Username",
	"email":           "Email",
	"password":        "Password",
	"confirmPassword": "Password confirmation",
	"firstName":       "First name",
	"lastName":        "Last name",
	"phoneNumber":     "Phone number",
	"shippingAddress": "Shipping address",
	"billingAddress":  "Billing address",
	"paymentMethod":   "Payment method",
	"displayName":     "Display name",
	"gender":          "Gender",
	"dateOfBirth":     "Date of birth",
	"address":         "Address",
	"name":            "Name",
	"description":     "Description",
	"price":           "Price",
	"brand":           "Brand",
	"layout":          "Layout",
	"switchType":      "Switch type",
	"keycapMaterial":  "Keycap material",
	"caseMaterial":    "Case material",
	"stockQuantity":   "Stock quantity",
	"imageUrl":        "Image URL",
	"status":          "Status",
}

// Qty parses a cart quantity. Values above MaxQty are clamped; values below
// one are returned as-is so the caller can apply its own floor.
func Qty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	if n > MaxQty {
		n = MaxQty
	}
	return n, true
}

// ID validates a positive numeric resource id.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Term validates a free-text filter value such as a brand or switch type.
func Term(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, reTerm.MatchString(s)
}
