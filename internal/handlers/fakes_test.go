package handlers_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jobtrackr/apiserver/internal/auth"
	"github.com/jobtrackr/apiserver/internal/handlers"
	"github.com/jobtrackr/apiserver/internal/services"
	"github.com/jobtrackr/apiserver/internal/store"
	"github.com/jobtrackr/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// newTestRouter wires the real handlers, services, and auth primitives
// over in-memory repositories, mirroring the route layout of
// server.New without a database.
func newTestRouter() (*chi.Mux, *auth.TokenService) {
	userRepo := newFakeUserRepo()
	appRepo := newFakeAppRepo()

	tokens := auth.NewTokenService(testSecret, time.Hour)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	userService := services.NewUserService(userRepo)
	appService := services.NewApplicationService(appRepo)

	authHandler := handlers.NewAuthHandler(userService, hasher, tokens)
	requireAuth := handlers.RequireAuth(tokens)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.Me)
			r.Route("/applications", func(r chi.Router) {
				handlers.ApplicationRouter(r, appService)
			})
		})
	})
	return router, tokens
}

// fakeUserRepo is an in-memory services.UserRepository with the same
// uniqueness semantics as the Postgres implementation.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]types.User)}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

// fakeAppRepo is an in-memory services.ApplicationRepository with the
// same owner-scoping semantics as the Postgres implementation: a record
// owned by someone else is indistinguishable from a missing one.
type fakeAppRepo struct {
	mu     sync.Mutex
	nextID int
	apps   map[int]types.Application
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{nextID: 1, apps: make(map[int]types.Application)}
}

func (r *fakeAppRepo) ListByOwner(ctx context.Context, ownerID int) ([]types.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apps := make([]types.Application, 0)
	for _, app := range r.apps {
		if app.UserID == ownerID {
			apps = append(apps, app)
		}
	}
	sort.Slice(apps, func(i, j int) bool {
		if !apps[i].DateApplied.Equal(apps[j].DateApplied) {
			return apps[i].DateApplied.After(apps[j].DateApplied)
		}
		return apps[i].ID > apps[j].ID
	})
	return apps, nil
}

func (r *fakeAppRepo) Get(ctx context.Context, id, ownerID int) (types.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.UserID != ownerID {
		return types.Application{}, store.ErrNotFound
	}
	return app, nil
}

func (r *fakeAppRepo) Create(ctx context.Context, app types.Application) (types.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	app.ID = r.nextID
	app.CreatedAt = now
	app.UpdatedAt = now
	r.nextID++
	r.apps[app.ID] = app
	return app, nil
}

func (r *fakeAppRepo) Update(ctx context.Context, app types.Application) (types.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.apps[app.ID]
	if !ok || existing.UserID != app.UserID {
		return types.Application{}, store.ErrNotFound
	}
	app.Resume = existing.Resume
	app.CreatedAt = existing.CreatedAt
	app.UpdatedAt = time.Now()
	r.apps[app.ID] = app
	return app, nil
}

func (r *fakeAppRepo) Delete(ctx context.Context, id, ownerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.UserID != ownerID {
		return store.ErrNotFound
	}
	delete(r.apps, id)
	return nil
}

func (r *fakeAppRepo) SetResume(ctx context.Context, id, ownerID int, resume types.ResumeAttachment) (types.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.UserID != ownerID {
		return types.Application{}, store.ErrNotFound
	}
	app.Resume = &resume
	app.UpdatedAt = time.Now()
	r.apps[id] = app
	return app, nil
}

func (r *fakeAppRepo) ClearResume(ctx context.Context, id, ownerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.UserID != ownerID {
		return store.ErrNotFound
	}
	app.Resume = nil
	app.UpdatedAt = time.Now()
	r.apps[id] = app
	return nil
}
