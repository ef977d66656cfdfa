package entity

import (
	"regexp"
	"strings"

	"github.com/kareempogba0/B-Laban/internal/apperr"
)

type PaymentMethodType string

const (
	PaymentMethodCard PaymentMethodType = "card"
	PaymentMethodUPI  PaymentMethodType = "upi"
)

// PaymentMethod is a saved card or UPI id. CVVs are checked on entry and
// never stored.
type PaymentMethod struct {
	Type       PaymentMethodType `json:"type"`
	CardType   string            `json:"cardType,omitempty"`
	CardNumber string            `json:"cardNumber,omitempty"`
	CardExpiry string            `json:"cardExpiry,omitempty"`
	UPIID      string            `json:"upiId,omitempty"`
}

func (m PaymentMethod) Document() map[string]any {
	if m.Type == PaymentMethodUPI {
		return map[string]any{"type": string(PaymentMethodUPI), "upiId": m.UPIID}
	}
	return map[string]any{
		"type":       string(PaymentMethodCard),
		"cardType":   m.CardType,
		"cardNumber": m.CardNumber,
		"cardExpiry": m.CardExpiry,
	}
}

// Last4 returns the trailing four digits of a card number.
func (m PaymentMethod) Last4() string {
	if len(m.CardNumber) <= 4 {
		return m.CardNumber
	}
	return m.CardNumber[len(m.CardNumber)-4:]
}

// Masked renders the card number for display.
func (m PaymentMethod) Masked() string {
	if m.CardNumber == "" {
		return ""
	}
	return "•••• •••• •••• " + m.Last4()
}

var (
	cardNumberPattern = regexp.MustCompile(`^\d{12,19}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/?([2-9][0-9])$`)
	upiPattern        = regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,256}@[a-zA-Z]{2,64}$`)
	masterCardPrefix  = regexp.MustCompile(`^5[1-5]`)
	amexPrefix        = regexp.MustCompile(`^3[47]`)
)

// DetectCardType guesses the network from the leading digits.
func DetectCardType(number string) string {
	clean := strings.ReplaceAll(number, " ", "")
	switch {
	case strings.HasPrefix(clean, "4"):
		return "Visa"
	case masterCardPrefix.MatchString(clean):
		return "MasterCard"
	case strings.HasPrefix(clean, "6"):
		return "RuPay"
	case amexPrefix.MatchString(clean):
		return "AMEX"
	default:
		return "Unknown"
	}
}

// CardInput is what a shopper types in to save a card.
type CardInput struct {
	Number string `json:"number"`
	CVV    string `json:"cvv"`
	Expiry string `json:"expiry"`
}

// PaymentMethodInput is either a card or a UPI id.
type PaymentMethodInput struct {
	Type PaymentMethodType `json:"type"`
	Card CardInput         `json:"card"`
	UPI  string            `json:"upi"`
}

// Validate checks the input and returns the method to store. The message of
// the returned error is meant for the shopper.
func (in PaymentMethodInput) Validate() (PaymentMethod, error) {
	switch in.Type {
	case PaymentMethodCard:
		number := strings.Join(strings.Fields(in.Card.Number), "")
		if !cardNumberPattern.MatchString(number) {
			return PaymentMethod{}, apperr.Invalid("card.number", "Invalid card number.")
		}
		if !cvvPattern.MatchString(in.Card.CVV) {
			return PaymentMethod{}, apperr.Invalid("card.cvv", "Invalid CVV.")
		}
		if !expiryPattern.MatchString(in.Card.Expiry) {
			return PaymentMethod{}, apperr.Invalid("card.expiry", "Invalid expiry date (MM/YY).")
		}
		return PaymentMethod{
			Type:       PaymentMethodCard,
			CardType:   DetectCardType(number),
			CardNumber: number,
			CardExpiry: in.Card.Expiry,
		}, nil
	case PaymentMethodUPI:
		if !upiPattern.MatchString(in.UPI) {
			return PaymentMethod{}, apperr.Invalid("upi", "Invalid UPI ID format.")
		}
		return PaymentMethod{Type: PaymentMethodUPI, UPIID: in.UPI}, nil
	default:
		return PaymentMethod{}, apperr.Invalid("type", "Choose a card or UPI payment method.")
	}
}

// MergePaymentMethod appends m, replacing any saved card with the same last
// four digits or the same UPI id.
func MergePaymentMethod(existing []PaymentMethod, m PaymentMethod) []PaymentMethod {
	out := make([]PaymentMethod, 0, len(existing)+1)
	for _, e := range existing {
		switch {
		case m.Type == PaymentMethodCard && e.CardNumber != "" && e.Last4() == m.Last4():
			continue
		case m.Type == PaymentMethodUPI && e.UPIID == m.UPIID:
			continue
		}
		out = append(out, e)
	}
	return append(out, m)
}
