// Package firebase verifies Firebase Authentication ID tokens with the Admin
// SDK. The same App also hands out the Firestore client.
package firebase

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/kareempogba0/B-Laban/internal/identity"
)

// NewApp initializes the Admin SDK. credentialsJSON wins over
// credentialsFile; with neither, Application Default Credentials are used.
func NewApp(ctx context.Context, projectID, credentialsJSON, credentialsFile string) (*firebase.App, error) {
	var opts []option.ClientOption
	switch {
	case credentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	slog.Info("Firebase app initialized", "project_id", projectID)
	return app, nil
}

type provider struct {
	client *auth.Client
}

// NewProvider creates an identity.Provider from app.
func NewProvider(ctx context.Context, app *firebase.App) (identity.Provider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get firebase auth client: %w", err)
	}
	return &provider{client: client}, nil
}

func (p *provider) Verify(ctx context.Context, idToken string) (identity.User, error) {
	token, err := p.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return identity.User{}, translateError(err)
	}

	record, err := p.client.GetUser(ctx, token.UID)
	if err != nil {
		return identity.User{}, translateError(err)
	}
	if record.Disabled {
		return identity.User{}, identity.Disabled(record.UID)
	}
	return identity.User{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		PhotoURL:    record.PhotoURL,
	}, nil
}

func translateError(err error) error {
	switch {
	case auth.IsIDTokenExpired(err):
		return identity.Translate(identity.ErrTokenExpired, err)
	case auth.IsIDTokenRevoked(err):
		return identity.Translate(identity.ErrTokenRevoked, err)
	case auth.IsIDTokenInvalid(err):
		return identity.Translate(identity.ErrTokenInvalid, err)
	case auth.IsUserNotFound(err):
		return identity.Translate(identity.ErrUserNotFound, err)
	default:
		return fmt.Errorf("failed to verify sign-in: %w", err)
	}
}
