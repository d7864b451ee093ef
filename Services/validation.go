package Services

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator checks request structs and reports failures keyed by JSON path,
// e.g. "items[0].quantity".
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewValidator() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}

	return &Validator{validate: validate, trans: trans}
}

// Struct returns a *ValidationError whose Message is the first field error.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		msg := fe.Translate(v.trans)
		if out.Message == "" {
			out.Message = msg
		}
		out.Fields[key] = msg
	}
	return out
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseDateField parses an optional date field, falling back to def when empty.
func parseDateField(field, value string, def time.Time) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return def, nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return time.Time{}, invalidField(field, field+" must be a date (YYYY-MM-DD)")
	}
	return t, nil
}

// DateRange bounds a query. Either end may be nil; each applies on its own.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange reads startDate/endDate query values. An endDate given as a
// plain date covers that whole day.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if strings.TrimSpace(start) != "" {
		t, err := ParseDate(start)
		if err != nil {
			return r, invalidField("startDate", "startDate must be a date (YYYY-MM-DD)")
		}
		r.From = &t
	}
	if strings.TrimSpace(end) != "" {
		t, err := ParseDate(end)
		if err != nil {
			return r, invalidField("endDate", "endDate must be a date (YYYY-MM-DD)")
		}
		if len(strings.TrimSpace(end)) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.To = &t
	}
	return r, nil
}
