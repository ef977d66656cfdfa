package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type shopperError struct{}

func (shopperError) Error() string       { return "provider said no" }
func (shopperError) UserMessage() string { return "Wrong password." }

func TestPartialWriteError(t *testing.T) {
	cause := errors.New("mirror unavailable")
	err := fmt.Errorf("failed to submit review: %w", &PartialWriteError{Op: "submit review", Completed: 1, Failed: 1, Err: cause})

	assert.ErrorIs(t, err, ErrPartialWrite)
	assert.ErrorIs(t, err, cause)

	var pw *PartialWriteError
	assert.ErrorAs(t, err, &pw)
	assert.Equal(t, 1, pw.Completed)
	assert.Contains(t, err.Error(), "1 done, 1 failed")
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{Invalid("text", "Please write a review."), "Please write a review."},
		{fmt.Errorf("wrapped: %w", shopperError{}), "Wrong password."},
		{fmt.Errorf("check: %w", ErrAlreadyReviewed), "You've already reviewed this product."},
		{ErrNotEligible, "You can only review products you've purchased and received."},
		{fmt.Errorf("query: %w", ErrIndexRequired), "Database requires a new index for this query."},
		{ErrUnauthenticated, "Please sign in to continue."},
		{&PartialWriteError{Op: "clear", Err: errors.New("x")}, "Something went wrong. Please try again."},
		{errors.New("boom"), "An error occurred. Please try again."},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, UserMessage(tc.err), "%v", tc.err)
	}

	denied := fmt.Errorf("load orders: %w", ErrPermissionDenied)
	assert.Equal(t, denied.Error(), UserMessage(denied))
}

func TestValidationError(t *testing.T) {
	err := Invalid("rating", "Pick a rating.")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "rating: Pick a rating.", err.Error())
	assert.Equal(t, "Pick a rating.", Invalid("", "Pick a rating.").Error())
}
