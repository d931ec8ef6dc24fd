package services

import (
	"context"
	"errors"
	. "server/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_GeneratePacket(t *testing.T) {
	var generated *Application
	generator := GeneratorFunc(func(ctx context.Context, application *Application) error {
		generated = application
		return nil
	})
	service := NewDocumentService(generator, time.Second)

	application := &Application{FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, service.GeneratePacket(context.Background(), application))
	assert.Same(t, application, generated)
}

func TestDocumentService_GeneratePacketTimeout(t *testing.T) {
	generator := GeneratorFunc(func(ctx context.Context, application *Application) error {
		<-ctx.Done()
		return ctx.Err()
	})
	service := NewDocumentService(generator, 10*time.Millisecond)

	err := service.GeneratePacket(context.Background(), &Application{})
	assert.ErrorIs(t, err, ErrGenerationTimeout)
}

func TestDocumentService_GeneratePacketFailure(t *testing.T) {
	boom := errors.New("renderer unavailable")
	generator := GeneratorFunc(func(ctx context.Context, application *Application) error {
		return boom
	})
	service := NewDocumentService(generator, time.Second)

	err := service.GeneratePacket(context.Background(), &Application{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestDocumentService_GeneratePacketHonorsCallerCancel(t *testing.T) {
	generator := GeneratorFunc(func(ctx context.Context, application *Application) error {
		<-ctx.Done()
		return ctx.Err()
	})
	service := NewDocumentService(generator, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := service.GeneratePacket(ctx, &Application{})
	assert.Error(t, err)
}
