package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"servicemarket/pkg/config"
)

// ClientOptions builds the google client options shared by Firestore, Auth
// and Cloud Storage.
func ClientOptions(cfg *config.Config) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case cfg.FirebaseCredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)))
	case cfg.FirebaseCredentialsPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsPath))
	}
	return opts
}

func NewApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProject}, ClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}
