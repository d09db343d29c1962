package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Service records in-app notifications and optionally mirrors them to
// email. Delivery is best effort: callers fire and forget, failures only
// show up in the logs.
type Service struct {
	store  StoreAPI
	mailer Mailer
	from   string
}

func New(store StoreAPI, mailer Mailer, from string) *Service {
	if from == "" {
		from = "no-reply@example.com"
	}
	return &Service{store: store, mailer: mailer, from: from}
}

func (s *Service) Notify(ctx context.Context, userID, ntype, title, body string) {
	if userID == "" {
		return
	}
	if err := s.store.CreateNotification(ctx, userID, ntype, title, body); err != nil {
		slog.Warn("notification create failed", "userId", userID, "type", ntype, "error", err)
		return
	}
	if s.mailer == nil {
		return
	}
	email, err := s.store.UserEmail(ctx, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "userId", userID, "error", err)
		return
	}
	if email == "" {
		return
	}
	if err := s.mailer.Send(ctx, s.from, email, title, body); err != nil {
		slog.Warn("notification email send failed", "userId", userID, "error", err)
	}
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}
