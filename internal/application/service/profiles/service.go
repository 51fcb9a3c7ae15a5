package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ebridge-portal/internal/domain/entity/activity"
	domain "ebridge-portal/internal/domain/entity/profiles"
	"ebridge-portal/internal/domain/entity/session"
	interfaces "ebridge-portal/internal/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrFetch       = errors.New("fetch profile")
	ErrPersistence = errors.New("profile could not be saved")
)

type Option func(*Service)

func WithPublisher(pub interfaces.EventPublisher) Option {
	return func(s *Service) { s.publisher = pub }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger.WithField("component", "profiles")
		}
	}
}

// Service reads and replaces the profile of the session user.
type Service struct {
	repo      interfaces.ProfileRepository
	publisher interfaces.EventPublisher
	logger    *logrus.Entry
	now       func() time.Time
}

func NewService(repo interfaces.ProfileRepository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: logrus.StandardLogger().WithField("component", "profiles"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored profile, or a blank one when the user has not saved any.
func (s *Service) Get(ctx context.Context, sess session.Session) (domain.Profile, error) {
	if sess.UserID == uuid.Nil {
		return domain.Profile{}, session.ErrAnonymous
	}
	p, err := s.repo.Get(ctx, sess.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Blank(sess.UserID), nil
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return *p, nil
}

// Update replaces the editable fields of the session user's profile.
func (s *Service) Update(ctx context.Context, sess session.Session, changes domain.Changes) (*domain.Profile, error) {
	if sess.UserID == uuid.Nil {
		return nil, session.ErrAnonymous
	}
	p, err := changes.Apply(sess.UserID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, &p); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.WithField("user_id", p.UserID).Info("profile updated")
	s.publish(ctx, activity.NewEvent(p.UserID, activity.KindProfileUpdated, map[string]any{
		"username": p.Username,
	}, p.UpdatedAt))
	return &p, nil
}

func (s *Service) Close() {
	s.repo.Close()
}

func (s *Service) publish(ctx context.Context, event activity.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("kind", event.Kind).Warn("publish activity event failed")
	}
}
