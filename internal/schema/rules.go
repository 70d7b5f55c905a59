package schema

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

const (
	// DateLayout is the DD.MM.YYYY layout accepted by date fields.
	DateLayout = "02.01.2006"

	// MaxAgeYears bounds birthdays by calendar year only, month and day are ignored.
	MaxAgeYears = 70

	phoneMin    = 70000000000
	phoneMax    = 79999999999
	phoneLength = 11
	phonePrefix = "7"
)

var datePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

// Gender values accepted by gender fields.
const (
	GenderUnknown = 0
	GenderMale    = 1
	GenderFemale  = 2
)

// Rule validates one field value. Rules are immutable and hold no per-request
// state, so a compiled schema can be shared by concurrent requests.
// A nil value means the field was absent or null.
type Rule interface {
	Validate(value interface{}) error
}

// fieldRule carries the declaration shared by every kind.
type fieldRule struct {
	name     string
	required bool
	nullable bool
}

// present applies the required check. It returns false when the value is
// absent and the field is optional, in which case no further checks run.
func (r fieldRule) present(value interface{}) (bool, error) {
	if value != nil {
		return true, nil
	}
	if r.required {
		return false, NewRequiredFieldError(r.name)
	}
	return false, nil
}

// CharRule accepts strings.
type CharRule struct{ fieldRule }

func (r CharRule) Validate(value interface{}) error {
	_, err := r.validate(value)
	return err
}

func (r CharRule) validate(value interface{}) (string, error) {
	ok, err := r.present(value)
	if !ok {
		return "", err
	}
	str, isStr := value.(string)
	if !isStr {
		return "", NewFieldError(r.name, "must be a string")
	}
	if !r.nullable && str == "" {
		return "", NewFieldError(r.name, "must be a non empty string")
	}
	return str, nil
}

// EmailRule accepts strings containing "@".
type EmailRule struct{ CharRule }

func (r EmailRule) Validate(value interface{}) error {
	str, err := r.validate(value)
	if err != nil || value == nil {
		return err
	}
	if !strings.Contains(str, "@") {
		return NewFieldError(r.name, "must be a valid email")
	}
	return nil
}

// ArgumentsRule accepts JSON objects.
type ArgumentsRule struct{ fieldRule }

func (r ArgumentsRule) Validate(value interface{}) error {
	ok, err := r.present(value)
	if !ok {
		return err
	}
	args, isMap := value.(map[string]interface{})
	if !isMap {
		return NewFieldError(r.name, "must be a dictionary")
	}
	if !r.nullable && len(args) == 0 {
		return NewFieldError(r.name, "must be a non empty dictionary")
	}
	return nil
}

// PhoneRule accepts 11 digit numbers starting with 7, given either as a
// string or as an integer.
type PhoneRule struct{ fieldRule }

func (r PhoneRule) Validate(value interface{}) error {
	ok, err := r.present(value)
	if !ok {
		return err
	}

	if n, isInt := AsInt(value); isInt {
		if !r.nullable && n == 0 {
			return NewFieldError(r.name, "must be a non empty valid phone number")
		}
		if n < phoneMin || n > phoneMax {
			return NewFieldError(r.name, "must be a valid phone number")
		}
		return nil
	}

	str, isStr := value.(string)
	if !isStr {
		return NewFieldError(r.name, "must be a string or an integer")
	}
	if !r.nullable && str == "" {
		return NewFieldError(r.name, "must be a non empty valid phone number")
	}
	if !strings.HasPrefix(str, phonePrefix) || len(str) != phoneLength {
		return NewFieldError(r.name, "must be a valid phone number")
	}
	return nil
}

// DateRule accepts DD.MM.YYYY strings naming a real calendar date.
type DateRule struct{ fieldRule }

func (r DateRule) Validate(value interface{}) error {
	_, err := r.parse(value)
	return err
}

// parse returns the zero time with a nil error when an optional value is absent.
func (r DateRule) parse(value interface{}) (time.Time, error) {
	ok, err := r.present(value)
	if !ok {
		return time.Time{}, err
	}
	str, isStr := value.(string)
	if !isStr || !datePattern.MatchString(str) {
		return time.Time{}, NewFieldError(r.name, "must be a valid date")
	}
	parsed, err := time.Parse(DateLayout, str)
	if err != nil {
		return time.Time{}, NewFieldError(r.name, "must be a valid date")
	}
	if !r.nullable && parsed.IsZero() {
		return time.Time{}, NewFieldError(r.name, "must be a non empty date")
	}
	return parsed, nil
}

// BirthdayRule is a DateRule that also rejects birth years more than
// MaxAgeYears before the current year.
type BirthdayRule struct {
	DateRule
	now func() time.Time
}

func (r BirthdayRule) Validate(value interface{}) error {
	parsed, err := r.parse(value)
	if err != nil || value == nil {
		return err
	}
	if parsed.Year() <= r.now().Year()-MaxAgeYears {
		return NewFieldError(r.name, "must be less than 70 years old")
	}
	return nil
}

// GenderRule accepts the integers 0, 1 and 2.
type GenderRule struct{ fieldRule }

func (r GenderRule) Validate(value interface{}) error {
	ok, err := r.present(value)
	if !ok {
		return err
	}
	n, isInt := AsInt(value)
	if !isInt {
		return NewFieldError(r.name, "must be an integer")
	}
	switch n {
	case GenderUnknown, GenderMale, GenderFemale:
		return nil
	default:
		return NewFieldError(r.name, "must be 0, 1 or 2")
	}
}

// ClientIDsRule accepts lists of integers.
type ClientIDsRule struct{ fieldRule }

func (r ClientIDsRule) Validate(value interface{}) error {
	ok, err := r.present(value)
	if !ok {
		return err
	}
	ids, isList := AsIntList(value)
	if !isList {
		return NewFieldError(r.name, "must be a list of integers")
	}
	if !r.nullable && len(ids) == 0 {
		return NewFieldError(r.name, "must be a non empty list of integers")
	}
	return nil
}

// AsInt converts a decoded JSON value to an integer. Request bodies are decoded
// with json.Decoder.UseNumber, so integers arrive as json.Number; native Go
// integers are accepted for values built in code. Floats and booleans are not
// integers.
func AsInt(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

// AsIntList converts a decoded JSON array whose elements are all integers.
func AsIntList(value interface{}) ([]int64, bool) {
	switch v := value.(type) {
	case []interface{}:
		out := make([]int64, 0, len(v))
		for _, item := range v {
			n, ok := AsInt(item)
			if !ok {
				return nil, false
			}
			out = append(out, n)
		}
		return out, true
	case []int:
		out := make([]int64, len(v))
		for i, n := range v {
			out[i] = int64(n)
		}
		return out, true
	case []int64:
		return append([]int64(nil), v...), true
	default:
		return nil, false
	}
}
