package entity

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/kareempogba0/B-Laban/internal/apperr"
)

// MaxReviewLength is counted in characters of the NFC form of the text.
const MaxReviewLength = 500

// Eligibility is the outcome of a review eligibility check.
type Eligibility string

const (
	EligibilityAlreadyReviewed Eligibility = "already_reviewed"
	EligibilityEligible        Eligibility = "eligible"
	EligibilityIneligible      Eligibility = "ineligible"
)

// ReviewInput is what a shopper submits for a new or edited review.
type ReviewInput struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// Normalize returns the input with its text trimmed and in NFC form.
func (in ReviewInput) Normalize() ReviewInput {
	return ReviewInput{Rating: in.Rating, Text: norm.NFC.String(strings.TrimSpace(in.Text))}
}

// Validate checks the input without touching any remote store.
func (in ReviewInput) Validate() error {
	n := in.Normalize()
	if n.Rating < 1 || n.Rating > 5 {
		return apperr.Invalid("rating", "Please select a rating between 1 and 5 stars.")
	}
	if n.Text == "" {
		return apperr.Invalid("text", "Please write a review.")
	}
	if utf8.RuneCountInString(n.Text) > MaxReviewLength {
		return apperr.Invalid("text", "Review must be 500 characters or less.")
	}
	return nil
}
