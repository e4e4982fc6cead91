package config

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// NewFirebaseApp initializes the Firebase Admin SDK from, in order: inline
// service-account fields, base64 credentials, or a credentials file
func NewFirebaseApp(ctx context.Context, cfg *Config, log *logrus.Logger) (*firebase.App, error) {
	fbConfig := &firebase.Config{ProjectID: cfg.FirebaseProjectID}

	var opt option.ClientOption
	switch {
	case cfg.FirebaseClientEmail != "" && cfg.FirebasePrivateKey != "":
		log.Info("Using Firebase credentials from service account variables")
		creds, err := json.Marshal(map[string]string{
			"type":         "service_account",
			"project_id":   cfg.FirebaseProjectID,
			"client_email": cfg.FirebaseClientEmail,
			"private_key":  cfg.FirebasePrivateKey,
			"token_uri":    "https://oauth2.googleapis.com/token",
		})
		if err != nil {
			return nil, err
		}
		opt = option.WithCredentialsJSON(creds)
	case cfg.FirebaseCredentialsB64 != "":
		log.Info("Using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseCredentialsB64)
		if err != nil {
			return nil, fmt.Errorf("decoding base64 credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
	case cfg.FirebaseCredentialsFile != "":
		log.WithField("file", cfg.FirebaseCredentialsFile).Info("Using Firebase credentials file")
		opt = option.WithCredentialsFile(cfg.FirebaseCredentialsFile)
	default:
		return nil, errors.New("firebase credentials not configured")
	}

	app, err := firebase.NewApp(ctx, fbConfig, opt)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	return app, nil
}
