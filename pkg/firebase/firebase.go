// Package firebase builds the ID token verifier used for federated login.
package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// ErrNoCredentials is returned when no service account file is configured
var ErrNoCredentials = errors.New("firebase: no service account credentials configured")

// serviceAccount holds the fields of a credentials file checked before use
type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

// readServiceAccount loads a service account JSON file and checks its shape
func readServiceAccount(path string) ([]byte, *serviceAccount, error) {
	if path == "" {
		return nil, nil, ErrNoCredentials
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("firebase: read credentials: %w", err)
	}
	var sa serviceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, nil, fmt.Errorf("firebase: parse credentials %s: %w", path, err)
	}
	if sa.Type != "service_account" {
		return nil, nil, fmt.Errorf("firebase: credentials %s are %q, want a service account", path, sa.Type)
	}
	if sa.ProjectID == "" {
		return nil, nil, fmt.Errorf("firebase: credentials %s carry no project_id", path)
	}
	return raw, &sa, nil
}

// NewAuthClient returns an auth client able to verify ID tokens for the
// project named in the service account file at credentialsPath.
func NewAuthClient(ctx context.Context, credentialsPath string, log *slog.Logger) (*auth.Client, error) {
	raw, sa, err := readServiceAccount(credentialsPath)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: sa.ProjectID}, option.WithCredentialsJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("firebase: create app for %s: %w", sa.ProjectID, err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: auth client for %s: %w", sa.ProjectID, err)
	}

	log.Info("federated login enabled",
		slog.String("project_id", sa.ProjectID),
		slog.String("service_account", sa.ClientEmail),
	)
	return client, nil
}
