package repositories

import (
	"context"
	"errors"
	"server/internal/database"
	. "server/internal/models"
	"server/internal/services"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go/mock"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepoDB(t *testing.T) database.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&Application{}, &Provider{}, &CompletionLink{}))

	return database.DB{SQL: gormDB}
}

func newApplication(email string, status ApplicationStatus) *Application {
	return &Application{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       email,
		Status:      status,
		FormData:    map[string]any{"firstName": "Jane"},
		SubmittedAt: time.Now(),
	}
}

func TestApplicationRepository_CreateAndGet(t *testing.T) {
	repo := NewApplication(newRepoDB(t))
	ctx := context.Background()

	application := newApplication("jane@example.com", StatusPending)
	require.NoError(t, repo.Create(ctx, application))
	assert.NotEmpty(t, application.ID)

	stored, err := repo.GetByID(ctx, application.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", stored.Email)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Equal(t, "Jane", stored.FormData["firstName"])
}

func TestApplicationRepository_GetByIDNotFound(t *testing.T) {
	repo := NewApplication(newRepoDB(t))

	_, err := repo.GetByID(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestApplicationRepository_UpdateFormData(t *testing.T) {
	repo := NewApplication(newRepoDB(t))
	ctx := context.Background()

	application := newApplication("jane@example.com", StatusPending)
	require.NoError(t, repo.Create(ctx, application))

	require.NoError(t, repo.UpdateFormData(ctx, application.ID, map[string]any{
		"firstName": "Jane",
		"phone":     "555-0100",
	}))

	stored, err := repo.GetByID(ctx, application.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", stored.FormData["phone"])
}

func TestApplicationRepository_UpdateFormDataNotFound(t *testing.T) {
	repo := NewApplication(newRepoDB(t))

	err := repo.UpdateFormData(context.Background(), "no-such-id", map[string]any{"phone": "555-0100"})
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestApplicationRepository_SetProviderID(t *testing.T) {
	repo := NewApplication(newRepoDB(t))
	ctx := context.Background()

	application := newApplication("jane@example.com", StatusApproved)
	require.NoError(t, repo.Create(ctx, application))

	require.NoError(t, repo.SetProviderID(ctx, application.ID, "prov-1"))

	stored, err := repo.GetByID(ctx, application.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ProviderID)
	assert.Equal(t, "prov-1", *stored.ProviderID)

	err = repo.SetProviderID(ctx, "no-such-id", "prov-1")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

// matchCommand matches any cache command by its verb; the generated key in
// the command carries the row's uuid.
func matchCommand(verb string) gomock.Matcher {
	return mock.MatchFn(func(cmd []string) bool {
		return len(cmd) > 0 && cmd[0] == verb
	}, verb)
}

func TestApplicationRepository_RolledBackCreateLeavesNoCacheEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	cacheClient := mock.NewClient(ctrl)

	db := newRepoDB(t)
	db.Cache.General = cacheClient
	repo := NewApplication(db)
	transactionService := services.NewTransactionService(db)

	application := newApplication("jane@example.com", StatusPending)

	// While the transaction is open only an eviction may touch the cache;
	// any SET here would outlive the rollback.
	cacheClient.EXPECT().Do(gomock.Any(), matchCommand("DEL")).
		Return(mock.Result(mock.ValkeyInt64(0)))

	boom := errors.New("packet generation failed")
	err := transactionService.Execute(context.Background(), func(txCtx context.Context) error {
		require.NoError(t, repo.Create(txCtx, application))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// After the rollback the row is gone and the cache must not resurrect it.
	cacheClient.EXPECT().Do(gomock.Any(), mock.Match("GET", applicationCacheKey(application.ID))).
		Return(mock.Result(mock.ValkeyNil()))

	_, err = repo.GetByID(context.Background(), application.ID)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestApplicationRepository_TransactionalUpdateEvictsInsteadOfCaching(t *testing.T) {
	ctrl := gomock.NewController(t)
	cacheClient := mock.NewClient(ctrl)

	db := newRepoDB(t)
	db.Cache.General = cacheClient
	repo := NewApplication(db)
	transactionService := services.NewTransactionService(db)
	ctx := context.Background()

	application := newApplication("jane@example.com", StatusPending)
	cacheClient.EXPECT().Do(gomock.Any(), matchCommand("SET")).
		Return(mock.Result(mock.ValkeyString("OK")))
	require.NoError(t, repo.Create(ctx, application))

	// A status change inside a transaction must not land in the cache
	// before commit; the key is evicted instead.
	cacheClient.EXPECT().Do(gomock.Any(), mock.Match("DEL", applicationCacheKey(application.ID))).
		Return(mock.Result(mock.ValkeyInt64(1)))

	err := transactionService.Execute(ctx, func(txCtx context.Context) error {
		application.Status = StatusApproved
		return repo.Update(txCtx, application)
	})
	require.NoError(t, err)

	// The committed row comes back from the database on the next read and
	// repopulates the cache.
	cacheClient.EXPECT().Do(gomock.Any(), mock.Match("GET", applicationCacheKey(application.ID))).
		Return(mock.Result(mock.ValkeyNil()))
	cacheClient.EXPECT().Do(gomock.Any(), matchCommand("SET")).
		Return(mock.Result(mock.ValkeyString("OK")))

	stored, err := repo.GetByID(ctx, application.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)
}

func TestApplicationRepository_GetByStatus(t *testing.T) {
	repo := NewApplication(newRepoDB(t))
	ctx := context.Background()

	older := newApplication("old@example.com", StatusPending)
	older.SubmittedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, older))

	newer := newApplication("new@example.com", StatusPending)
	require.NoError(t, repo.Create(ctx, newer))

	approved := newApplication("done@example.com", StatusApproved)
	require.NoError(t, repo.Create(ctx, approved))

	pending, err := repo.GetByStatus(ctx, StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "new@example.com", pending[0].Email, "newest submission first")
	assert.Equal(t, "old@example.com", pending[1].Email)
}
