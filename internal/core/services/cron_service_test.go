package services

import (
	"context"
	"testing"
	"time"

	"tradenexus/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewCronService_RejectsBadSpec(t *testing.T) {
	f := newSessionFixture(t, 0)

	_, err := NewCronService(f.svc, newTestDataStore(), config.CronConfig{SessionSweep: "every now and then"}, zap.NewNop())
	assert.Error(t, err)
}

func TestCronService_Jobs(t *testing.T) {
	f := newSessionFixture(t, 0)
	store := newTestDataStore()
	ctx := context.Background()

	svc, err := NewCronService(f.svc, store, config.CronConfig{SessionSweep: "@every 15m", DataReset: "@daily"}, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, svc.cron.Entries(), 2)

	_, err = f.svc.Register(ctx, testProfile, RegisterInput{Name: "Temp"})
	require.NoError(t, err)
	f.clock = f.clock.Add(2 * time.Hour)
	svc.sweepSessions()
	_, ok := f.svc.Token(ctx, testProfile)
	assert.False(t, ok)

	store.DeleteCompany("COMP-100")
	svc.resetData()
	assert.Len(t, store.Companies(), 100)

	svc.Start()
	svc.Stop()
}
