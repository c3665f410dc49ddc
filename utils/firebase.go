package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	firebaseApp    *firebase.App
	firebaseClient *messaging.Client
	firebaseOnce   sync.Once
	firebaseErr    error
)

// InitFirebase initializes the Firebase Admin SDK and the FCM client.
// Push notifications are optional; missing credentials disable them.
func InitFirebase() error {
	firebaseOnce.Do(func() {
		ctx := context.Background()

		credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if credentialsPath == "" {
			credentialsPath = os.Getenv("FCM_CREDENTIALS_PATH")
		}
		projectID := os.Getenv("FCM_PROJECT_ID")

		if credentialsPath == "" {
			firebaseErr = fmt.Errorf("no FCM credentials configured")
			return
		}
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			firebaseErr = fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
			return
		}
		if projectID == "" {
			firebaseErr = fmt.Errorf("FCM_PROJECT_ID is required for FCM")
			return
		}

		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID},
			option.WithCredentialsFile(credentialsPath))
		if err != nil {
			firebaseErr = fmt.Errorf("firebase app initialization failed: %w", err)
			return
		}

		client, err := app.Messaging(ctx)
		if err != nil {
			firebaseApp = app
			firebaseErr = fmt.Errorf("FCM client initialization failed: %w", err)
			return
		}

		firebaseApp = app
		firebaseClient = client
		log.Printf("✅ FCM client initialized for project %s", projectID)
	})

	return firebaseErr
}

// GetFCMClient returns the FCM client, or nil when push is disabled.
func GetFCMClient() *messaging.Client {
	return firebaseClient
}

// IsFCMEnabled reports whether push notifications can be sent.
func IsFCMEnabled() bool {
	return firebaseClient != nil
}
