// Package storage keeps uploaded resume files in object storage behind a
// backend-agnostic interface. Ownership checks happen in the application
// store before any object here is touched; keys carry no secrets.
package storage

import (
	"context"
	"fmt"
	"io"
)

// ObjectStore defines common object operations across backends.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// ResumeStore stores resume files keyed by owner and application.
type ResumeStore struct {
	backend ObjectStore
}

// NewResumeStore constructs a ResumeStore over the provided backend.
func NewResumeStore(backend ObjectStore) *ResumeStore {
	return &ResumeStore{backend: backend}
}

// Key returns the object key for an application's resume. One resume per
// application; a re-upload overwrites in place.
func (s *ResumeStore) Key(ownerID, applicationID int) string {
	return fmt.Sprintf("resumes/%d/%d", ownerID, applicationID)
}

// EnsureBucket ensures the configured bucket exists.
func (s *ResumeStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put uploads a resume file.
func (s *ResumeStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Get opens a reader for a stored resume.
func (s *ResumeStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes a stored resume.
func (s *ResumeStore) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (s *ResumeStore) Bucket() string {
	return s.backend.Bucket()
}
