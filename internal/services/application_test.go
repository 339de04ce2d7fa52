package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jobtrackr/apiserver/internal/events"
	"github.com/jobtrackr/apiserver/internal/storage"
	"github.com/jobtrackr/apiserver/internal/store"
	"github.com/jobtrackr/apiserver/types"
)

// memRepo is a minimal in-memory ApplicationRepository.
type memRepo struct {
	mu     sync.Mutex
	nextID int
	apps   map[int]types.Application
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, apps: make(map[int]types.Application)}
}

func (r *memRepo) ListByOwner(ctx context.Context, ownerID int) ([]types.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apps := make([]types.Application, 0)
	for _, app := range r.apps {
		if app.UserID == ownerID {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

func (r *memRepo) Get(ctx context.Context, id, ownerID int) (types.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.UserID != ownerID {
		return types.Application{}, store.ErrNotFound
	}
	return app, nil
}

func (r *memRepo) Create(ctx context.Context, app types.Application) (types.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app.ID = r.nextID
	r.nextID++
	r.apps[app.ID] = app
	return app, nil
}

func (r *memRepo) Update(ctx context.Context, app types.Application) (types.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.apps[app.ID]
	if !ok || existing.UserID != app.UserID {
		return types.Application{}, store.ErrNotFound
	}
	app.Resume = existing.Resume
	r.apps[app.ID] = app
	return app, nil
}

func (r *memRepo) Delete(ctx context.Context, id, ownerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.UserID != ownerID {
		return store.ErrNotFound
	}
	delete(r.apps, id)
	return nil
}

func (r *memRepo) SetResume(ctx context.Context, id, ownerID int, resume types.ResumeAttachment) (types.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.UserID != ownerID {
		return types.Application{}, store.ErrNotFound
	}
	app.Resume = &resume
	r.apps[id] = app
	return app, nil
}

func (r *memRepo) ClearResume(ctx context.Context, id, ownerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.UserID != ownerID {
		return store.ErrNotFound
	}
	app.Resume = nil
	r.apps[id] = app
	return nil
}

// memBackend captures published event messages.
type memBackend struct {
	mu       sync.Mutex
	messages []events.Message
}

func (b *memBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, events.Message{Data: data, Attributes: attrs})
	return "msg", nil
}

func (b *memBackend) Subscribe(ctx context.Context, channel string, handler events.Handler) error {
	return errors.New("not implemented")
}

func (b *memBackend) Close() error { return nil }

func (b *memBackend) eventTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	kinds := make([]string, 0, len(b.messages))
	for _, msg := range b.messages {
		kinds = append(kinds, msg.Attributes["event_type"])
	}
	return kinds
}

// memObjectStore is an in-memory storage.ObjectStore.
type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: make(map[string][]byte)}
}

func (s *memObjectStore) EnsureBucket(ctx context.Context) error { return nil }

func (s *memObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memObjectStore) Bucket() string { return "test" }

func newTestApplication(ownerID int) types.Application {
	return types.Application{
		UserID:      ownerID,
		JobTitle:    "Eng",
		Company:     "Acme",
		Location:    "NYC",
		Status:      types.StatusApplied,
		DateApplied: time.Now(),
	}
}

func TestLifecycleEmitsEvents(t *testing.T) {
	t.Parallel()

	backend := &memBackend{}
	svc := NewApplicationService(newMemRepo()).
		WithEvents(events.NewPublisher(backend, "application-events"))
	ctx := context.Background()

	created, err := svc.Create(ctx, newTestApplication(1))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.Status = types.StatusInterview
	if _, err := svc.Update(ctx, created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := svc.Delete(ctx, created.ID, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got := backend.eventTypes()
	want := []string{
		events.TypeApplicationCreated,
		events.TypeApplicationUpdated,
		events.TypeApplicationDeleted,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestResume_AttachOpenRemove(t *testing.T) {
	t.Parallel()

	objects := newMemObjectStore()
	svc := NewApplicationService(newMemRepo()).
		WithResumeStore(storage.NewResumeStore(objects))
	ctx := context.Background()

	created, err := svc.Create(ctx, newTestApplication(1))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	content := "resume body"
	updated, err := svc.AttachResume(ctx, created.ID, 1, "cv.pdf", "application/pdf", strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("AttachResume: %v", err)
	}
	if updated.Resume == nil || updated.Resume.Filename != "cv.pdf" {
		t.Fatalf("attachment metadata missing: %+v", updated.Resume)
	}

	reader, resume, err := svc.OpenResume(ctx, created.ID, 1)
	if err != nil {
		t.Fatalf("OpenResume: %v", err)
	}
	data, _ := io.ReadAll(reader)
	_ = reader.Close()
	if string(data) != content {
		t.Errorf("resume content mismatch: %q", data)
	}
	if resume.ContentType != "application/pdf" {
		t.Errorf("content type mismatch: %q", resume.ContentType)
	}

	if err := svc.RemoveResume(ctx, created.ID, 1); err != nil {
		t.Fatalf("RemoveResume: %v", err)
	}
	if _, _, err := svc.OpenResume(ctx, created.ID, 1); !errors.Is(err, ErrNoResume) {
		t.Fatalf("expected ErrNoResume after removal, got %v", err)
	}
}

func TestResume_WrongOwnerIsNotFound(t *testing.T) {
	t.Parallel()

	objects := newMemObjectStore()
	svc := NewApplicationService(newMemRepo()).
		WithResumeStore(storage.NewResumeStore(objects))
	ctx := context.Background()

	created, err := svc.Create(ctx, newTestApplication(1))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.AttachResume(ctx, created.ID, 2, "cv.pdf", "application/pdf", strings.NewReader("x"), 1)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong owner, got %v", err)
	}
	if len(objects.objects) != 0 {
		t.Error("no object should be uploaded for a wrong-owner attach")
	}
}

func TestResume_StorageDisabled(t *testing.T) {
	t.Parallel()

	svc := NewApplicationService(newMemRepo())
	ctx := context.Background()

	if svc.ResumesEnabled() {
		t.Fatal("resumes should be disabled without a store")
	}
	if _, err := svc.AttachResume(ctx, 1, 1, "cv.pdf", "application/pdf", strings.NewReader("x"), 1); !errors.Is(err, ErrResumeStorageDisabled) {
		t.Fatalf("expected ErrResumeStorageDisabled, got %v", err)
	}
}
