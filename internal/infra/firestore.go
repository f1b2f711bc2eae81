package infra

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewFirestoreClient initializes the Firebase app and returns its Firestore
// client. An empty credentialsPath falls back to application default
// credentials, which is also how the emulator is reached. An empty projectID
// leaves project discovery to the environment (GOOGLE_CLOUD_PROJECT or the
// credentials themselves).
func NewFirestoreClient(ctx context.Context, credentialsPath, projectID string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect firestore: %w", err)
	}
	return client, nil
}
