package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// NotificationService announces upcoming and elapsed deadlines. The only
// implementation logs instead of delivering; actual delivery channels are
// out of scope.
type NotificationService interface {
	SendTaskReminder(ctx context.Context, userID int64, title string, dueDate time.Time)
	SendDueDateAlert(ctx context.Context, userID int64, title string, dueDate time.Time)
}

type logNotificationService struct {
	logger zerolog.Logger
}

func NewLogNotificationService(logger zerolog.Logger) NotificationService {
	return &logNotificationService{
		logger: logger,
	}
}

func (s *logNotificationService) SendTaskReminder(_ context.Context, userID int64, title string, dueDate time.Time) {
	s.logger.Info().
		Int64("user_id", userID).
		Str("title", title).
		Time("due_date", dueDate).
		Msg("task reminder: task is due soon")
}

func (s *logNotificationService) SendDueDateAlert(_ context.Context, userID int64, title string, dueDate time.Time) {
	s.logger.Info().
		Int64("user_id", userID).
		Str("title", title).
		Time("due_date", dueDate).
		Msg("due date alert: task is now due")
}
