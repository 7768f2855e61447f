// Package storage publishes chart images to Supabase Storage, which the
// mobile app reads through public URLs.
package storage

import (
	"bytes"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"
)

// Publisher uploads binary assets to a public Supabase Storage bucket
type Publisher struct {
	client *storage_go.Client
	bucket string
}

// NewPublisher creates a publisher for the given project URL and service
// role key. The URL is the project base, e.g. https://xyz.supabase.co.
func NewPublisher(projectURL, serviceKey, bucket string) *Publisher {
	client := storage_go.NewClient(projectURL+"/storage/v1", serviceKey, nil)
	return &Publisher{client: client, bucket: bucket}
}

// EnsureBucket creates the public bucket when it does not exist yet
func (p *Publisher) EnsureBucket() error {
	buckets, err := p.client.ListBuckets()
	if err != nil {
		return fmt.Errorf("failed to list buckets: %w", err)
	}
	for _, b := range buckets {
		if b.Name == p.bucket {
			return nil
		}
	}

	if _, err := p.client.CreateBucket(p.bucket, storage_go.BucketOptions{Public: true}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", p.bucket, err)
	}
	return nil
}

// Publish uploads a PNG under the given key (e.g. "SHOP.png"), overwriting
// any previous version, and returns its public URL.
func (p *Publisher) Publish(key string, png []byte) (string, error) {
	contentType := "image/png"
	upsert := true

	_, err := p.client.UploadFile(p.bucket, key, bytes.NewReader(png), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	resp := p.client.GetPublicUrl(p.bucket, key)
	if resp.SignedURL == "" {
		return "", fmt.Errorf("no public url returned for %s", key)
	}
	return resp.SignedURL, nil
}
