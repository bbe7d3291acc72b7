package booking

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
)

var (
	ErrInvalidCardNumber = errors.New("invalid card number")
	ErrCardExpired       = errors.New("card expired")
	ErrInvalidCVC        = errors.New("cvc must be 3 or 4 digits")
	ErrCardDeclined      = errors.New("card declined")
)

type Card struct {
	Number      string `json:"number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVC         string `json:"cvc"`
	Holder      string `json:"holder"`
}

// Validate checks the card locally. A card is valid through the last day of
// its expiry month.
func (c Card) Validate(now time.Time) error {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, c.Number)
	if len(digits) < 12 || len(digits) > 19 || !allDigits(digits) || !luhn(digits) {
		return ErrInvalidCardNumber
	}
	if c.ExpiryMonth < 1 || c.ExpiryMonth > 12 {
		return ErrCardExpired
	}
	firstOfNext := time.Date(c.ExpiryYear, time.Month(c.ExpiryMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.UTC().Before(firstOfNext) {
		return ErrCardExpired
	}
	if l := len(c.CVC); l < 3 || l > 4 || !allDigits(c.CVC) {
		return ErrInvalidCVC
	}
	return nil
}

// Last4 is the only part of the number that may be stored or logged.
func (c Card) Last4() string {
	n := strings.ReplaceAll(strings.ReplaceAll(c.Number, " ", ""), "-", "")
	if len(n) < 4 {
		return n
	}
	return n[len(n)-4:]
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func luhn(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// PaymentGateway charges a validated card and returns a payment reference.
// A refused charge is reported as ErrCardDeclined.
type PaymentGateway interface {
	Charge(ctx context.Context, amountCents int64, card Card) (string, error)
}
