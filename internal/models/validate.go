package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every field validation error.
var ErrInvalid = errors.New("invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

var (
	phoneRe = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
	// numeric(6,2)
	priceRe = regexp.MustCompile(`^\d{1,4}(\.\d{1,2})?$`)
)

var validate = newValidator()

// newValidator reports fields by their json names and adds the
// domain tags: notblank, us_state, phone, ad_size, price.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := map[string]func(string) bool{
		"notblank": func(s string) bool { return strings.TrimSpace(s) != "" },
		"us_state": ValidState,
		"phone":    phoneRe.MatchString,
		"ad_size":  IsValidSize,
		"price":    priceRe.MatchString,
	}
	for tag, fn := range custom {
		fn := fn
		v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		})
	}
	return v
}

// check validates s against its validate tags and reports the first
// failing field as ErrInvalid.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return invalidf("%s", describe(fieldErrs[0]))
	}
	return err
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must list at least %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "number":
		return field + " must contain only digits"
	case "email":
		return fmt.Sprintf("%s %q is not valid", field, fe.Value())
	case "us_state":
		return fmt.Sprintf("%s %q is not a US state code", field, fe.Value())
	case "phone":
		return field + " must use the format 800-555-1212"
	case "ad_size":
		return fmt.Sprintf("%s %q is not one of 1/4, 1/3, 1/2, 2/3, FUL, CTR", field, fe.Value())
	case "price":
		return field + " must be a decimal with at most 4 digits and 2 decimal places"
	}
	return fmt.Sprintf("%s fails %s", field, fe.Tag())
}

// NormalizePhone accepts ten digits with any punctuation and returns the
// 800-555-1212 form. Input it cannot read is returned trimmed.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return s
	}
	return fmt.Sprintf("%s-%s-%s", digits[0:3], digits[3:6], digits[6:10])
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func splitWords(s string) []string {
	return strings.Fields(s)
}

var (
	stateCodes = strings.Fields(`
		AL AK AZ AR CA CO CT DE DC FL GA HI ID IL IN IA KS KY LA ME MD MA MI MN
		MS MO MT NE NV NH NJ NM NY NC ND OH OK OR PA RI SC SD TN TX UT VT VA WA
		WV WI WY AS GU MP PR VI AA AE AP`)
	usStates = map[string]struct{}{}
)

func init() {
	for _, s := range stateCodes {
		usStates[s] = struct{}{}
	}
}

// States returns the accepted state codes in form order.
func States() []string {
	return append([]string(nil), stateCodes...)
}

func ValidState(s string) bool {
	_, ok := usStates[s]
	return ok
}
