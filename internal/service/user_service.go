package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"creepycorners/internal/cache"
	"creepycorners/internal/media"
	"creepycorners/internal/middleware"
	"creepycorners/internal/models"
	"creepycorners/internal/repository"
	"creepycorners/internal/validation"
)

// UpdateProfileInput is a partial profile update. Empty fields are left as they are.
type UpdateProfileInput struct {
	UserID             uint
	Username           string
	DisplayName        string
	Bio                string
	ProfilePicture     string
	CoverPhoto         string
	ProfilePictureFile *media.Upload
	CoverPhotoFile     *media.Upload
}

// UserService reads profiles and applies profile edits.
type UserService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	media   MediaStore
	cache   *cache.Cache
}

func NewUserService(users repository.UserRepository, follows repository.FollowRepository, store MediaStore, c *cache.Cache) *UserService {
	return &UserService{users: users, follows: follows, media: store, cache: c}
}

// GetProfile returns the user with post and follow counts.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.users.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.Profile{User: user, Stats: stats}, nil
}

// GetPublicProfile is GetProfile as seen by viewerID: owner-only fields are
// removed for other viewers and Following reports whether the viewer follows the user.
func (s *UserService) GetPublicProfile(ctx context.Context, userID, viewerID uint) (*models.Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if userID == viewerID {
		return profile, nil
	}
	profile.User.Redact()
	if profile.Following, err = s.follows.IsFollowing(ctx, viewerID, userID); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies the non-empty fields of in. A username held by a
// different user fails with UsernameTaken and nothing is changed.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	current, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}

	if username := strings.TrimSpace(in.Username); username != "" && username != current.UsernameOrEmpty() {
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		owner, err := s.users.GetByUsername(ctx, username)
		switch {
		case err == nil && owner.ID != in.UserID:
			return nil, models.NewUsernameTakenError()
		case err != nil && !models.HasCode(err, models.CodeNotFound):
			return nil, err
		}
		fields["username"] = username
	}
	if v := strings.TrimSpace(in.DisplayName); v != "" {
		fields["display_name"] = v
	}
	if v := strings.TrimSpace(in.Bio); v != "" {
		fields["bio"] = v
	}
	if v := strings.TrimSpace(in.ProfilePicture); v != "" {
		fields["profile_picture"] = v
	}
	if v := strings.TrimSpace(in.CoverPhoto); v != "" {
		fields["cover_photo"] = v
	}

	var stored []string
	for column, up := range map[string]*media.Upload{
		"profile_picture": in.ProfilePictureFile,
		"cover_photo":     in.CoverPhotoFile,
	} {
		if up == nil {
			continue
		}
		if models.MediaKindForMIME(up.ContentType) != models.MediaKindImage {
			s.removeAll(ctx, stored)
			return nil, models.NewValidationError("Profile images must be images")
		}
		ref, err := s.media.Ingest(ctx, up)
		if err != nil {
			s.removeAll(ctx, stored)
			return nil, err
		}
		stored = append(stored, ref.Name)
		fields[column] = ref.URL
	}

	if err := s.users.UpdateProfile(ctx, in.UserID, fields); err != nil {
		s.removeAll(ctx, stored)
		if errors.Is(err, repository.ErrUsernameConflict) {
			return nil, models.NewUsernameTakenError()
		}
		return nil, err
	}
	if len(fields) > 0 {
		// cached pages of the user's posts embed the old profile
		s.cache.Bump(ctx, cache.UserFeedGenKey(in.UserID))
	}

	return s.users.GetByID(ctx, in.UserID)
}

func (s *UserService) removeAll(ctx context.Context, names []string) {
	for _, name := range names {
		if err := s.media.Remove(name); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove profile media",
				slog.String("file", name), slog.String("error", err.Error()))
		}
	}
}
