package service

import (
	"context"
	"fmt"
	"log/slog"

	"creepycorners/internal/middleware"
	"creepycorners/internal/models"
	"creepycorners/internal/notifications"
	"creepycorners/internal/repository"
)

// NotifyInput describes one interaction worth telling RecipientID about.
type NotifyInput struct {
	RecipientID uint
	ActorID     uint
	Type        models.NotificationType
	PostID      *uint
}

// NotificationService records notifications and publishes them to Redis.
type NotificationService struct {
	repo     repository.NotificationRepository
	notifier *notifications.Notifier
}

func NewNotificationService(repo repository.NotificationRepository, notifier *notifications.Notifier) *NotificationService {
	return &NotificationService{repo: repo, notifier: notifier}
}

// Notify is best effort: failures are logged and never surface to the caller's
// request. Users are not notified about their own actions.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) {
	if s == nil || in.RecipientID == 0 || in.RecipientID == in.ActorID {
		return
	}

	note := &models.Notification{
		UserID:  in.RecipientID,
		ActorID: in.ActorID,
		Type:    in.Type,
		PostID:  in.PostID,
		Message: notificationMessage(in.Type),
	}
	if err := s.repo.Create(ctx, note); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to store notification",
			slog.String("type", string(in.Type)), slog.String("error", err.Error()))
		return
	}
	if err := s.notifier.PublishUser(ctx, note); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			slog.Uint64("recipient", uint64(in.RecipientID)), slog.String("error", err.Error()))
	}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListForUser(ctx, userID, limit, offset)
}

// MarkAllRead marks every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func notificationMessage(t models.NotificationType) string {
	switch t {
	case models.NotificationLike:
		return "liked your post"
	case models.NotificationComment:
		return "commented on your post"
	case models.NotificationFollow:
		return "started following you"
	default:
		return fmt.Sprintf("sent you a %s", t)
	}
}
