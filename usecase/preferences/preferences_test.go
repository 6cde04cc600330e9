package preferences

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/internal/mocks"
)

func newUseCase(settings ...domain.DigestSettings) (*UseCase, *mocks.SettingsStore) {
	store := mocks.NewSettingsStore(settings...)
	users := &mocks.UserDirectory{Users: []domain.User{{ID: "u1", Status: "active"}}}
	return New(users, store, nil), store
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestGetReturnsDefaults(t *testing.T) {
	uc, _ := newUseCase()

	settings, err := uc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDigestSettings("u1"), settings)
}

func TestGetUnknownUser(t *testing.T) {
	uc, _ := newUseCase()

	_, err := uc.Get(context.Background(), "ghost")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestUpdateMergesPatch(t *testing.T) {
	uc, store := newUseCase(domain.DigestSettings{UserID: "u1", DigestEnabled: true, DigestHour: 9, NotificationsEnabled: true})

	updated, err := uc.Update(context.Background(), "u1", Patch{DigestHour: intPtr(7), NotificationsEnabled: boolPtr(false)})
	require.NoError(t, err)
	assert.True(t, updated.DigestEnabled)
	assert.Equal(t, 7, updated.DigestHour)
	assert.False(t, updated.NotificationsEnabled)

	stored, err := store.GetOrDefault(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestUpdateRejectsBadHour(t *testing.T) {
	uc, _ := newUseCase()

	_, err := uc.Update(context.Background(), "u1", Patch{DigestHour: intPtr(24)})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
