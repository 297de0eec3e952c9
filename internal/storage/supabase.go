// Package storage archives finished call logs to Supabase object storage.
package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/supabase-community/supabase-go"
)

type Config struct {
	URL            string
	ServiceRoleKey string
	Bucket         string
}

// Uploader pushes saved conversation logs into a Supabase bucket. It is
// optional: with no URL configured the agent keeps logs local only.
type Uploader struct {
	client *supabase.Client
	bucket string
}

func New(config Config) (*Uploader, error) {
	client, err := supabase.NewClient(config.URL, config.ServiceRoleKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Uploader{client: client, bucket: config.Bucket}, nil
}

func (u *Uploader) Upload(key string, data []byte) error {
	_, err := u.client.Storage.UploadFile(u.bucket, key, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("upload to supabase: %w", err)
	}
	return nil
}

// UploadFile reads a log file from disk and stores it under its base name.
func (u *Uploader) UploadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read log for upload: %w", err)
	}
	return u.Upload(filepath.Base(path), data)
}
