package services

import (
	"context"
	"errors"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/metrics"
	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

const defaultNotificationLimit = 50

// Notifier delivers a notification to a user on a best-effort basis
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, link string)
}

// RealtimePusher pushes to connected clients (the WebSocket hub)
type RealtimePusher interface {
	SendToUser(userID string, payload interface{}) bool
}

// DevicePusher sends a push message to a registered device token
type DevicePusher interface {
	Push(ctx context.Context, deviceToken string, n *models.Notification) error
}

// FCMPusher delivers through Firebase Cloud Messaging
type FCMPusher struct {
	client *messaging.Client
}

func NewFCMPusher(client *messaging.Client) *FCMPusher {
	return &FCMPusher{client: client}
}

func (p *FCMPusher) Push(ctx context.Context, deviceToken string, n *models.Notification) error {
	badge := 1
	_, err := p.client.Send(ctx, &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: map[string]string{
			"notificationId": n.ID,
			"link":           n.Link,
			"timestamp":      n.CreatedAt.Format(time.RFC3339),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "homeservices_fcm_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: n.Title,
						Body:  n.Message,
					},
					Sound: "default",
					Badge: &badge,
				},
			},
		},
	})
	return err
}

// NotificationService persists notifications and fans them out to live channels
type NotificationService struct {
	auth     *Authenticator
	repo     repositories.NotificationRepository
	users    repositories.UserRepository
	realtime RealtimePusher
	devices  DevicePusher
	log      *logrus.Logger
	now      func() time.Time
}

// NewNotificationService wires the store with optional push channels; nil
// pushers are skipped
func NewNotificationService(auth *Authenticator, repo repositories.NotificationRepository, users repositories.UserRepository, realtime RealtimePusher, devices DevicePusher, log *logrus.Logger) *NotificationService {
	return &NotificationService{
		auth:     auth,
		repo:     repo,
		users:    users,
		realtime: realtime,
		devices:  devices,
		log:      log,
		now:      time.Now,
	}
}

// Notify stores the notification, then pushes it. Failures are logged only.
func (s *NotificationService) Notify(ctx context.Context, userID, title, message, link string) {
	if userID == "" {
		return
	}
	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Link:      link,
		CreatedAt: s.now(),
	}
	entry := s.log.WithFields(logrus.Fields{"userId": userID, "title": title})

	if err := s.repo.Create(ctx, n); err != nil {
		entry.WithError(err).Error("failed to save notification")
		return
	}

	if s.realtime != nil {
		metrics.RecordPush("websocket", s.realtime.SendToUser(userID, n))
	}

	if s.devices == nil {
		return
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			entry.WithError(err).Warn("failed to load user for push")
		}
		return
	}
	if user.FCMToken == "" {
		return
	}
	err = s.devices.Push(ctx, user.FCMToken, n)
	metrics.RecordPush("fcm", err == nil)
	if err != nil {
		entry.WithError(err).Warn("failed to send FCM notification")
	}
}

// ListNotifications returns the caller's notifications, newest first
func (s *NotificationService) ListNotifications(ctx context.Context, token string, limit int64) ([]models.Notification, error) {
	id, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultNotificationLimit {
		limit = defaultNotificationLimit
	}
	list, err := s.repo.ListByUser(ctx, id.UID, limit)
	if err != nil {
		return nil, models.ErrUpstream("Failed to load notifications", err)
	}
	return list, nil
}

// MarkNotificationRead flags one of the caller's notifications as read
func (s *NotificationService) MarkNotificationRead(ctx context.Context, token, notificationID string) error {
	id, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, notificationID, id.UID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.ErrNotFound("Notification not found")
		}
		return models.ErrUpstream("Failed to update notification", err)
	}
	return nil
}

// MarkAllRead flags every unread notification of the caller and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, token string) (int64, error) {
	id, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.MarkAllRead(ctx, id.UID)
	if err != nil {
		return 0, models.ErrUpstream("Failed to update notifications", err)
	}
	return n, nil
}
