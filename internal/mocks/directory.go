package mocks

import (
	"context"
	"sync"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

// UserDirectory is an in-memory repository.UserRepository.
type UserDirectory struct {
	Users   []domain.User
	ListErr error
}

func (d *UserDirectory) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range d.Users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (d *UserDirectory) ListActive(context.Context) ([]domain.User, error) {
	if d.ListErr != nil {
		return nil, d.ListErr
	}
	var out []domain.User
	for _, u := range d.Users {
		if u.IsActive() {
			out = append(out, u)
		}
	}
	return out, nil
}

// SettingsStore is an in-memory repository.SettingsRepository.
type SettingsStore struct {
	mu       sync.Mutex
	settings map[string]domain.DigestSettings
}

func NewSettingsStore(settings ...domain.DigestSettings) *SettingsStore {
	s := &SettingsStore{settings: make(map[string]domain.DigestSettings)}
	for _, st := range settings {
		s.settings[st.UserID] = st
	}
	return s
}

func (s *SettingsStore) GetOrDefault(_ context.Context, userID string) (domain.DigestSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.settings[userID]; ok {
		return st, nil
	}
	return domain.DefaultDigestSettings(userID), nil
}

func (s *SettingsStore) Upsert(_ context.Context, settings domain.DigestSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[settings.UserID] = settings
	return nil
}

var (
	_ repository.UserRepository     = (*UserDirectory)(nil)
	_ repository.SettingsRepository = (*SettingsStore)(nil)
)
