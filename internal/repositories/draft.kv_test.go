package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go/mock"
	"go.uber.org/mock/gomock"
)

func TestMemoryDraftKV_SetPastCapacityReturnsQuotaError(t *testing.T) {
	kv := NewMemoryDraftKV()
	kv.SetCapacity(16)

	err := kv.Set(context.Background(), "provider_app_app_1",
		map[string]string{"field": "a value well past sixteen bytes"}, time.Hour)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestValkeyDraftKV_MapsServerOOMToQuotaError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	kv := NewValkeyDraftKV(client)

	client.EXPECT().
		Do(gomock.Any(), matchCommand("SET")).
		Return(mock.ErrorResult(errors.New("OOM command not allowed when used memory > 'maxmemory'")))

	err := kv.Set(context.Background(), "provider_app_app_1",
		map[string]string{"field": "value"}, 0)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestValkeyDraftKV_PassesThroughOtherErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	kv := NewValkeyDraftKV(client)

	boom := errors.New("connection refused")
	client.EXPECT().
		Do(gomock.Any(), matchCommand("SET")).
		Return(mock.ErrorResult(boom))

	err := kv.Set(context.Background(), "provider_app_app_1",
		map[string]string{"field": "value"}, 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)
}
