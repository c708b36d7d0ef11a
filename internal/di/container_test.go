package di

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randhum/timeclock/internal/config"
	"github.com/randhum/timeclock/internal/queue"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TIME_CLOCK_DATA_DIR", dir)
	t.Setenv("TIME_CLOCK_PORT", "0")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestBuild_ConstructsFullGraph(t *testing.T) {
	cfg := newTestConfig(t)
	c, err := Build(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.DB.Close() })

	assert.NotNil(t, c.Store)
	assert.NotNil(t, c.ClockEngine)
	assert.NotNil(t, c.Router)
	assert.NotNil(t, c.Tags)
	assert.NotNil(t, c.Workers)
	assert.NotNil(t, c.Scheduler)
	assert.NotNil(t, c.HTTP)
}

func TestBuild_RegistersAllFourJobHandlers(t *testing.T) {
	cfg := newTestConfig(t)
	c, err := Build(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.DB.Close() })

	for _, jt := range []queue.JobType{
		queue.JobTypeWALCheckpoint,
		queue.JobTypeRawEntriesExport,
		queue.JobTypeBackupUpload,
		queue.JobTypeMaintenanceSweep,
	} {
		_, ok := c.Registry.Get(jt)
		assert.True(t, ok, "expected handler registered for %s", jt)
	}
}

func TestStartAndShutdown_DoesNotPanic(t *testing.T) {
	cfg := newTestConfig(t)
	c, err := Build(cfg, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Start(ctx))
	time.Sleep(10 * time.Millisecond)
	c.Shutdown()
}
