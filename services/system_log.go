package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/metrics"
	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

const (
	systemLogQueueSize    = 256
	systemLogWriteTimeout = 5 * time.Second
	systemLogReadLimit    = 100
)

// ActionLogger records privileged actions. Implementations never fail the caller.
type ActionLogger interface {
	LogAction(action, module, description string, actor *models.Actor, metadata map[string]interface{})
}

// SystemLogger writes audit entries from a background worker. Entries are
// dropped when the queue is full; write errors go to the process log.
type SystemLogger struct {
	repo   repositories.SystemLogRepository
	log    *logrus.Logger
	queue  chan models.SystemLog
	done   chan struct{}
	now    func() time.Time
	mu     sync.RWMutex
	closed bool
}

func NewSystemLogger(repo repositories.SystemLogRepository, log *logrus.Logger) *SystemLogger {
	l := &SystemLogger{
		repo:  repo,
		log:   log,
		queue: make(chan models.SystemLog, systemLogQueueSize),
		done:  make(chan struct{}),
		now:   time.Now,
	}
	go l.worker()
	return l
}

// LogAction enqueues an entry without blocking
func (l *SystemLogger) LogAction(action, module, description string, actor *models.Actor, metadata map[string]interface{}) {
	entry := models.SystemLog{
		ID:          uuid.NewString(),
		Action:      action,
		Module:      module,
		Description: description,
		Metadata:    metadata,
		Timestamp:   l.now(),
	}
	if actor != nil {
		entry.UserID = actor.UserID
		entry.UserName = actor.UserName
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		metrics.RecordSystemLog("dropped")
		return
	}

	select {
	case l.queue <- entry:
	default:
		metrics.RecordSystemLog("dropped")
		l.log.WithFields(logrus.Fields{
			"action": action,
			"module": module,
		}).Warn("system log queue full, dropping entry")
	}
}

func (l *SystemLogger) worker() {
	defer close(l.done)
	for entry := range l.queue {
		ctx, cancel := context.WithTimeout(context.Background(), systemLogWriteTimeout)
		err := l.repo.Create(ctx, &entry)
		cancel()
		if err != nil {
			metrics.RecordSystemLog("failed")
			l.log.WithError(err).WithFields(logrus.Fields{
				"action": entry.Action,
				"module": entry.Module,
			}).Error("system log write failed")
			continue
		}
		metrics.RecordSystemLog("written")
	}
}

// Close stops accepting entries and waits for the queue to drain or ctx to end
func (l *SystemLogger) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SystemLogService is the admin read side of the system log
type SystemLogService struct {
	auth *Authenticator
	repo repositories.SystemLogRepository
}

func NewSystemLogService(auth *Authenticator, repo repositories.SystemLogRepository) *SystemLogService {
	return &SystemLogService{auth: auth, repo: repo}
}

// GetSystemLogs returns the latest entries, newest first
func (s *SystemLogService) GetSystemLogs(ctx context.Context, token string) ([]models.SystemLog, error) {
	if _, err := s.auth.RequireRole(ctx, token, models.RoleAdmin); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListRecent(ctx, systemLogReadLimit)
	if err != nil {
		return nil, models.ErrUpstream("Failed to load system logs", err)
	}
	return logs, nil
}
