package repositories

import (
	"context"
	. "server/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLink(applicationID, token string, expiresAt time.Time) *CompletionLink {
	return &CompletionLink{
		Token:         token,
		ApplicationID: applicationID,
		ProviderID:    "prov-1",
		ProviderEmail: "jane@example.com",
		MissingFields: []string{"phone"},
		IssuedBy:      "admin",
		ExpiresAt:     expiresAt,
	}
}

func TestCompletionLinkRepository_CreateAndGetByToken(t *testing.T) {
	repo := NewCompletionLink(newRepoDB(t))
	ctx := context.Background()

	link := newLink("app-1", "tok-1", time.Now().Add(72*time.Hour))
	require.NoError(t, repo.Create(ctx, link))

	stored, err := repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "app-1", stored.ApplicationID)
	assert.Equal(t, []string{"phone"}, stored.MissingFields)
	assert.Nil(t, stored.UsedAt)
}

func TestCompletionLinkRepository_GetByTokenNotFound(t *testing.T) {
	repo := NewCompletionLink(newRepoDB(t))

	_, err := repo.GetByToken(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestCompletionLinkRepository_GetActiveByApplication(t *testing.T) {
	repo := NewCompletionLink(newRepoDB(t))
	ctx := context.Background()
	now := time.Now()

	// Expired and used links never count as active.
	require.NoError(t, repo.Create(ctx, newLink("app-1", "tok-expired", now.Add(-time.Hour))))

	used := newLink("app-1", "tok-used", now.Add(72*time.Hour))
	require.NoError(t, repo.Create(ctx, used))
	require.NoError(t, repo.MarkUsed(ctx, used.ID, now))

	_, err := repo.GetActiveByApplication(ctx, "app-1", now)
	assert.ErrorIs(t, err, ErrLinkNotFound)

	live := newLink("app-1", "tok-live", now.Add(72*time.Hour))
	require.NoError(t, repo.Create(ctx, live))

	active, err := repo.GetActiveByApplication(ctx, "app-1", now)
	require.NoError(t, err)
	assert.Equal(t, "tok-live", active.Token)
}

func TestCompletionLinkRepository_MarkUsedOnce(t *testing.T) {
	repo := NewCompletionLink(newRepoDB(t))
	ctx := context.Background()

	link := newLink("app-1", "tok-1", time.Now().Add(72*time.Hour))
	require.NoError(t, repo.Create(ctx, link))

	usedAt := time.Now()
	require.NoError(t, repo.MarkUsed(ctx, link.ID, usedAt))

	stored, err := repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, stored.UsedAt)

	// The used_at IS NULL guard rejects the second write.
	err = repo.MarkUsed(ctx, link.ID, time.Now())
	assert.ErrorIs(t, err, ErrLinkAlreadyUsed)
}
