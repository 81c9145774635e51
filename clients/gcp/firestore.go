package gcp

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
)

// CreateFirestore connects to the project's Firestore database. The
// store is required for anything to work, so failure is fatal.
func CreateFirestore(ctx context.Context, projectID string) *firestore.Client {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to create firestore client: %v", err)
	}
	return client
}
