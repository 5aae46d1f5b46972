// Package bankcard validates bank card numbers entered for fund payees.
package bankcard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labfund/fundops/internal/textnorm"
)

const (
	MinLength = 16
	MaxLength = 19
)

var (
	ErrLength     = errors.New("account number must have 16 to 19 digits")
	ErrFormat     = errors.New("account number must contain digits only")
	ErrUnknownBIN = errors.New("account number does not belong to a supported bank")
	ErrChecksum   = errors.New("account number checksum is invalid")
)

// Result is the outcome of validating an account number. Invalid input is
// reported here, never as a returned error.
type Result struct {
	Valid    bool   `json:"valid"`
	Message  string `json:"message"`
	BankName string `json:"bank_name,omitempty"`
	Err      error  `json:"-"`
}

func invalid(err error) Result {
	return Result{Message: err.Error(), Err: err}
}

// Validate checks a raw account number as typed by a user. Separators and
// other non-digit characters are dropped before any rule is applied.
func Validate(raw string) Result {
	digits := textnorm.Digits(raw)

	if len(digits) < MinLength || len(digits) > MaxLength {
		return invalid(ErrLength)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return invalid(ErrFormat)
		}
	}

	bank, ok := LookupBIN(digits)
	if !ok {
		return invalid(ErrUnknownBIN)
	}

	if !Luhn(digits) {
		return invalid(ErrChecksum)
	}

	return Result{
		Valid:    true,
		Message:  fmt.Sprintf("valid %s account", bank),
		BankName: bank,
	}
}

// Luhn reports whether digits pass the mod-10 checksum. Every second digit
// from the right is doubled, with 9 subtracted from products above 9.
func Luhn(digits string) bool {
	if digits == "" {
		return false
	}
	sum, ok := luhnSum(digits, false)
	return ok && sum%10 == 0
}

// LuhnCheckDigit returns the digit that makes payload+digit pass Luhn.
func LuhnCheckDigit(payload string) (byte, error) {
	sum, ok := luhnSum(payload, true)
	if !ok {
		return 0, ErrFormat
	}
	return byte('0' + (10-sum%10)%10), nil
}

// luhnSum sums digits with Luhn doubling. When forCheckDigit is true the
// rightmost digit of s is treated as the second from the right.
func luhnSum(s string, forCheckDigit bool) (int, bool) {
	sum := 0
	double := forCheckDigit
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum, true
}

// Mask hides all but the first and last four digits, grouped by four:
// "6217 **** **** 0006".
func Mask(raw string) string {
	digits := textnorm.Digits(raw)
	if len(digits) <= 8 {
		return digits
	}
	masked := digits[:4] + strings.Repeat("*", len(digits)-8) + digits[len(digits)-4:]

	var b strings.Builder
	for i := 0; i < len(masked); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(masked[i:min(i+4, len(masked))])
	}
	return b.String()
}
