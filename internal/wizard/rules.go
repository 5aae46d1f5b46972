package wizard

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/labfund/fundops/internal/bankcard"
)

const dateLayout = "2006-01-02"

var (
	errNotNumber   = validation.NewError("validation_not_number", "must be a number")
	errNotPositive = validation.NewError("validation_not_positive", "must be greater than zero")
	errCents       = validation.NewError("validation_cents", "must have at most 2 decimal places")
	errRateRange   = validation.NewError("validation_rate_range", "must be between 0 and 1")
	errCAS         = validation.NewError("validation_cas", "must be a valid CAS registry number")
)

// parseDecimal parses user input, tolerating thousands separators and
// surrounding blanks.
func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s != nil {
			return *s
		}
	}
	return ""
}

// amountRule accepts positive decimals with at most two decimal places.
var amountRule = validation.By(func(v interface{}) error {
	s := stringValue(v)
	if s == "" {
		return nil
	}
	d, err := parseDecimal(s)
	if err != nil {
		return errNotNumber
	}
	if !d.IsPositive() {
		return errNotPositive
	}
	if !d.Equal(d.Round(2)) {
		return errCents
	}
	return nil
})

// quantityRule accepts any positive decimal.
var quantityRule = validation.By(func(v interface{}) error {
	s := stringValue(v)
	if s == "" {
		return nil
	}
	d, err := parseDecimal(s)
	if err != nil {
		return errNotNumber
	}
	if !d.IsPositive() {
		return errNotPositive
	}
	return nil
})

// rateRule accepts decimals in [0, 1].
var rateRule = validation.By(func(v interface{}) error {
	s := stringValue(v)
	if s == "" {
		return nil
	}
	d, err := parseDecimal(s)
	if err != nil {
		return errNotNumber
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return errRateRange
	}
	return nil
})

var dateRule = validation.Date(dateLayout).Error("must be a date like 2025-01-31")

// bankAccountRule runs the bank card validator and reports its message.
var bankAccountRule = validation.By(func(v interface{}) error {
	s := stringValue(v)
	if s == "" {
		return nil
	}
	if res := bankcard.Validate(s); !res.Valid {
		return validation.NewError("validation_bank_account", res.Message)
	}
	return nil
})

var casPattern = regexp.MustCompile(`^(\d{2,7})-(\d{2})-(\d)$`)

// ValidCAS reports whether s is a CAS registry number with a correct check
// digit, e.g. 64-17-5.
func ValidCAS(s string) bool {
	m := casPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return false
	}
	body := m[1] + m[2]
	sum := 0
	for i := 0; i < len(body); i++ {
		sum += int(body[len(body)-1-i]-'0') * (i + 1)
	}
	check, _ := strconv.Atoi(m[3])
	return sum%10 == check
}

var casRule = validation.By(func(v interface{}) error {
	s := stringValue(v)
	if s == "" || ValidCAS(s) {
		return nil
	}
	return errCAS
})

// lookupRule fails with msg when exists reports false for a non-empty value.
func lookupRule(code, msg string, exists func(string) bool) validation.Rule {
	return validation.By(func(v interface{}) error {
		s := stringValue(v)
		if s == "" || exists == nil || exists(s) {
			return nil
		}
		return validation.NewError(code, msg)
	})
}

// fieldErrors flattens ozzo errors into label -> message. Nested errors are
// keyed by dotted path; list indexes are shown one-based after the list label.
func fieldErrors(err error, labels map[string]string) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string)
	flatten(verrs, "", "", labels, out)
	return out
}

func flatten(verrs validation.Errors, path, prefix string, labels map[string]string, out map[string]string) {
	for key, err := range verrs {
		if err == nil {
			continue
		}
		label := prefix
		nextPath := path
		if idx, convErr := strconv.Atoi(key); convErr == nil {
			label = strings.TrimSpace(prefix + " " + strconv.Itoa(idx+1))
		} else {
			nextPath = joinPath(path, key)
			name, ok := labels[nextPath]
			if !ok {
				name = key
			}
			label = strings.TrimSpace(prefix + " " + name)
		}
		var nested validation.Errors
		if errors.As(err, &nested) {
			flatten(nested, nextPath, label, labels, out)
			continue
		}
		out[label] = err.Error()
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
