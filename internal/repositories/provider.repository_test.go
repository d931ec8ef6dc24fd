package repositories

import (
	"context"
	. "server/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(applicationID, code string) *Provider {
	return &Provider{
		ApplicationID: applicationID,
		Code:          code,
		FirstName:     "Jane",
		LastName:      "Doe",
		Email:         "jane@example.com",
		Active:        true,
	}
}

func TestProviderRepository_CreateAndGet(t *testing.T) {
	repo := NewProvider(newRepoDB(t))
	ctx := context.Background()

	provider := newProvider("app-1", "PRV-AAAA0001")
	require.NoError(t, repo.Create(ctx, provider))
	assert.NotEmpty(t, provider.ID)

	byID, err := repo.GetByID(ctx, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, "PRV-AAAA0001", byID.Code)

	byApplication, err := repo.GetByApplicationID(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, provider.ID, byApplication.ID)
}

func TestProviderRepository_NotFound(t *testing.T) {
	repo := NewProvider(newRepoDB(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrProviderNotFound)

	_, err = repo.GetByApplicationID(ctx, "no-such-app")
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestProviderRepository_DuplicateApplicationID(t *testing.T) {
	repo := NewProvider(newRepoDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProvider("app-1", "PRV-AAAA0001")))

	err := repo.Create(ctx, newProvider("app-1", "PRV-BBBB0002"))
	assert.ErrorIs(t, err, ErrProviderExists)
}
