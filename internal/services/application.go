package services

import (
	"context"
	"errors"
	"io"

	"github.com/jobtrackr/apiserver/internal/events"
	"github.com/jobtrackr/apiserver/internal/storage"
	"github.com/jobtrackr/apiserver/types"
)

// ErrNoResume is returned when an application has no attached resume.
var ErrNoResume = errors.New("no resume attached")

// ErrResumeStorageDisabled is returned when no object-storage backend is
// configured.
var ErrResumeStorageDisabled = errors.New("resume storage is not configured")

// ApplicationRepository defines persistence operations for applications.
// Every operation on an existing record is scoped by the owner id.
type ApplicationRepository interface {
	ListByOwner(ctx context.Context, ownerID int) ([]types.Application, error)
	Get(ctx context.Context, id, ownerID int) (types.Application, error)
	Create(ctx context.Context, app types.Application) (types.Application, error)
	Update(ctx context.Context, app types.Application) (types.Application, error)
	Delete(ctx context.Context, id, ownerID int) error
	SetResume(ctx context.Context, id, ownerID int, resume types.ResumeAttachment) (types.Application, error)
	ClearResume(ctx context.Context, id, ownerID int) error
}

// ApplicationService encapsulates application use-cases. Events and resume
// storage are optional collaborators; CRUD semantics never depend on them.
type ApplicationService struct {
	repo    ApplicationRepository
	events  *events.Publisher
	resumes *storage.ResumeStore
}

func NewApplicationService(repo ApplicationRepository) *ApplicationService {
	return &ApplicationService{repo: repo}
}

// WithEvents enables best-effort event publishing.
func (s *ApplicationService) WithEvents(publisher *events.Publisher) *ApplicationService {
	s.events = publisher
	return s
}

// WithResumeStore enables resume attachments.
func (s *ApplicationService) WithResumeStore(resumes *storage.ResumeStore) *ApplicationService {
	s.resumes = resumes
	return s
}

// ResumesEnabled reports whether an object-storage backend is configured.
func (s *ApplicationService) ResumesEnabled() bool {
	return s.resumes != nil
}

func (s *ApplicationService) List(ctx context.Context, ownerID int) ([]types.Application, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *ApplicationService) Get(ctx context.Context, id, ownerID int) (types.Application, error) {
	return s.repo.Get(ctx, id, ownerID)
}

func (s *ApplicationService) Create(ctx context.Context, app types.Application) (types.Application, error) {
	created, err := s.repo.Create(ctx, app)
	if err != nil {
		return types.Application{}, err
	}
	s.emit(ctx, events.TypeApplicationCreated, created)
	return created, nil
}

func (s *ApplicationService) Update(ctx context.Context, app types.Application) (types.Application, error) {
	updated, err := s.repo.Update(ctx, app)
	if err != nil {
		return types.Application{}, err
	}
	s.emit(ctx, events.TypeApplicationUpdated, updated)
	return updated, nil
}

func (s *ApplicationService) Delete(ctx context.Context, id, ownerID int) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	if s.resumes != nil {
		// Orphaned objects are harmless; removal is best-effort.
		_ = s.resumes.Delete(ctx, s.resumes.Key(ownerID, id))
	}
	s.emit(ctx, events.TypeApplicationDeleted, types.Application{ID: id, UserID: ownerID})
	return nil
}

// AttachResume stores the uploaded file and records its location on the
// application. The ownership check rides on the owner-scoped SetResume
// update, but the record is fetched first so a missing record never
// produces a stray object upload.
func (s *ApplicationService) AttachResume(ctx context.Context, id, ownerID int, filename, contentType string, r io.Reader, size int64) (types.Application, error) {
	if s.resumes == nil {
		return types.Application{}, ErrResumeStorageDisabled
	}

	if _, err := s.repo.Get(ctx, id, ownerID); err != nil {
		return types.Application{}, err
	}

	key := s.resumes.Key(ownerID, id)
	if err := s.resumes.Put(ctx, key, r, size, contentType); err != nil {
		return types.Application{}, err
	}

	updated, err := s.repo.SetResume(ctx, id, ownerID, types.ResumeAttachment{
		ObjectKey:   key,
		Filename:    filename,
		ContentType: contentType,
	})
	if err != nil {
		return types.Application{}, err
	}
	s.emit(ctx, events.TypeResumeUploaded, updated)
	return updated, nil
}

// OpenResume returns a reader over the stored resume plus its metadata.
func (s *ApplicationService) OpenResume(ctx context.Context, id, ownerID int) (io.ReadCloser, types.ResumeAttachment, error) {
	if s.resumes == nil {
		return nil, types.ResumeAttachment{}, ErrResumeStorageDisabled
	}

	app, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		return nil, types.ResumeAttachment{}, err
	}
	if app.Resume == nil {
		return nil, types.ResumeAttachment{}, ErrNoResume
	}

	reader, err := s.resumes.Get(ctx, app.Resume.ObjectKey)
	if err != nil {
		return nil, types.ResumeAttachment{}, err
	}
	return reader, *app.Resume, nil
}

// RemoveResume deletes the stored file and clears the attachment columns.
func (s *ApplicationService) RemoveResume(ctx context.Context, id, ownerID int) error {
	if s.resumes == nil {
		return ErrResumeStorageDisabled
	}

	app, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if app.Resume == nil {
		return ErrNoResume
	}

	if err := s.resumes.Delete(ctx, app.Resume.ObjectKey); err != nil {
		return err
	}
	return s.repo.ClearResume(ctx, id, ownerID)
}

func (s *ApplicationService) emit(ctx context.Context, eventType string, app types.Application) {
	if s.events == nil {
		return
	}
	_ = s.events.Emit(ctx, events.ApplicationEvent{
		Type:          eventType,
		ApplicationID: app.ID,
		OwnerID:       app.UserID,
		Status:        app.Status,
	})
}
