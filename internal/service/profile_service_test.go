package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
)

type fakeUploader struct {
	filename string
	body     string
	err      error
}

func (u *fakeUploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	u.filename, u.body = filename, string(b)
	return "https://res.cloudinary.com/demo/image/upload/" + filename, nil
}

func TestProfileService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	up := &fakeUploader{}
	f.profile = NewProfileService(f.profiles, up)
	sess := f.signedIn(t)

	p, err := f.profile.UpdateProfile(ctx, sess, ProfileUpdateRequest{
		Name:    "  Mona A.  ",
		Phone:   "01000000000",
		Address: cairo,
		Picture: &Picture{Filename: "me.png", Content: strings.NewReader("png bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mona A.", p.Name)
	assert.Equal(t, cairo, p.Address)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/me.png", p.ProfilePic)
	assert.Equal(t, "png bytes", up.body)

	st := sess.User.State()
	assert.Equal(t, "Mona A.", st.Name)
	assert.Equal(t, p.ProfilePic, st.ProfilePic)

	// Without a new picture the stored one stays.
	p, err = f.profile.UpdateProfile(ctx, sess, ProfileUpdateRequest{Name: "Mona"})
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/me.png", p.ProfilePic)
	assert.Equal(t, p.ProfilePic, sess.User.State().ProfilePic)
}

func TestProfileService_UpdateProfileRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.signedIn(t)

	_, err := f.profile.UpdateProfile(ctx, f.session(t), ProfileUpdateRequest{Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = f.profile.UpdateProfile(ctx, sess, ProfileUpdateRequest{Name: "  "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	pic := &Picture{Filename: "me.png", Content: strings.NewReader("x")}
	_, err = f.profile.UpdateProfile(ctx, sess, ProfileUpdateRequest{Name: "Mona", Picture: pic})
	assert.ErrorIs(t, err, apperr.ErrValidation, "uploads need an uploader")

	f.profile = NewProfileService(f.profiles, &fakeUploader{err: errors.New("upload failed")})
	_, err = f.profile.UpdateProfile(ctx, sess, ProfileUpdateRequest{Name: "Mona", Picture: pic})
	require.Error(t, err)

	p, err := f.profile.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Mona Adel", p.Name, "nothing is saved when the upload fails")
}

func TestProfileService_PaymentMethods(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signedIn(t)

	methods, err := f.profile.AddPaymentMethod(ctx, "u1", entity.PaymentMethodInput{
		Type: entity.PaymentMethodCard,
		Card: entity.CardInput{Number: "4111 1111 1111 1111", CVV: "123", Expiry: "09/28"},
	})
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "Visa", methods[0].CardType)

	methods, err = f.profile.AddPaymentMethod(ctx, "u1", entity.PaymentMethodInput{Type: entity.PaymentMethodUPI, UPI: "mona@okaxis"})
	require.NoError(t, err)
	assert.Len(t, methods, 2)

	_, err = f.profile.AddPaymentMethod(ctx, "u1", entity.PaymentMethodInput{Type: entity.PaymentMethodUPI, UPI: "nope"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.profile.RemovePaymentMethod(ctx, "u1", 5)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	methods, err = f.profile.RemovePaymentMethod(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "mona@okaxis", methods[0].UPIID)

	p, err := f.profile.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, methods, p.PaymentMethods)

	_, err = f.profile.AddPaymentMethod(ctx, "nobody", entity.PaymentMethodInput{Type: entity.PaymentMethodUPI, UPI: "x@ybl"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
