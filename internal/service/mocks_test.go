package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"creepycorners/internal/media"
	"creepycorners/internal/models"
	"creepycorners/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a testify mock for repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockUserRepository) Stats(ctx context.Context, id uint) (models.ProfileStats, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.ProfileStats), args.Error(1)
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, uint) (*models.Post, error)
	ownerIDFn    func(context.Context, uint) (uint, error)
	listFn       func(context.Context, repository.PostFilter) ([]*models.Post, error)
	searchFn     func(context.Context, string, int, int) ([]*models.Post, error)
	toggleLikeFn func(context.Context, uint, uint) (*models.LikeResult, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) OwnerID(ctx context.Context, id uint) (uint, error) {
	return s.ownerIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, filter repository.PostFilter) ([]*models.Post, error) {
	return s.listFn(ctx, filter)
}
func (s *postRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	return s.searchFn(ctx, query, limit, offset)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeResult, error) {
	return s.toggleLikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	unexpected := errors.New("unexpected call")
	return &postRepoStub{
		createFn:  func(context.Context, *models.Post) error { return unexpected },
		getByIDFn: func(context.Context, uint) (*models.Post, error) { return nil, unexpected },
		ownerIDFn: func(context.Context, uint) (uint, error) { return 0, unexpected },
		listFn: func(context.Context, repository.PostFilter) ([]*models.Post, error) {
			return nil, unexpected
		},
		searchFn: func(context.Context, string, int, int) ([]*models.Post, error) {
			return nil, unexpected
		},
		toggleLikeFn: func(context.Context, uint, uint) (*models.LikeResult, error) {
			return nil, unexpected
		},
	}
}

// mediaStoreStub records ingested and removed names.
type mediaStoreStub struct {
	mu        sync.Mutex
	ingestErr error
	ingested  []string
	removed   []string
}

func (s *mediaStoreStub) Ingest(_ context.Context, up *media.Upload) (*media.Reference, error) {
	if s.ingestErr != nil {
		return nil, s.ingestErr
	}
	if _, err := io.Copy(io.Discard, up.Body); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name := up.Filename
	s.ingested = append(s.ingested, name)
	return &media.Reference{
		Name: name,
		URL:  "http://localhost:8000/uploads/" + name,
		Kind: models.MediaKindForMIME(up.ContentType),
	}, nil
}

func (s *mediaStoreStub) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, name)
	return nil
}
