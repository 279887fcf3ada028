package kite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppLoggerFallsBackToNop(t *testing.T) {
	app := NewApp()
	logger := app.Logger()

	assert.NotNil(t, logger)
	// Must be safe without any logging module installed.
	logger.Infof("no-op %d", 1)
}

func TestAppLoggerUsesInstalledResource(t *testing.T) {
	app := NewApp()
	app.UseModules(LoggingModule{Prefix: "test", Debug: true})

	logger := app.Logger()
	_, ok := logger.(*DefaultLogger)
	assert.True(t, ok, "Installed logger resource should be returned")
	assert.True(t, logger.DebugEnabled())

	logger.SetDebug(false)
	assert.False(t, logger.DebugEnabled())
}
