package service

import (
	"context"

	"creepycorners/internal/models"
	"creepycorners/internal/repository"
)

// FollowService toggles follow edges between users.
type FollowService struct {
	follows repository.FollowRepository
	notes   *NotificationService
}

func NewFollowService(follows repository.FollowRepository, notes *NotificationService) *FollowService {
	return &FollowService{follows: follows, notes: notes}
}

// ToggleFollow follows targetID if userID does not follow it yet, otherwise unfollows.
func (s *FollowService) ToggleFollow(ctx context.Context, userID, targetID uint) (*models.FollowResult, error) {
	if userID == targetID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	res, err := s.follows.Toggle(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}

	if res.Following {
		s.notes.Notify(ctx, NotifyInput{
			RecipientID: targetID,
			ActorID:     userID,
			Type:        models.NotificationFollow,
		})
	}
	return res, nil
}
