package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, log.WARN, ParseLevel("warning"))
	assert.Equal(t, log.ERROR, ParseLevel(" error "))
	assert.Equal(t, log.OFF, ParseLevel("off"))
	assert.Equal(t, log.INFO, ParseLevel("verbose"))
	assert.Equal(t, log.INFO, ParseLevel(""))
}

func TestSetup_WritesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "server.log")
	e := echo.New()

	_, closer := Setup(e, "debug", file)
	t.Cleanup(func() { Setup(nil, "info", "") })

	log.Infof("session: swept %d expired sessions", 3)
	e.Logger.Warn("from echo")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "swept 3 expired sessions")
	assert.Contains(t, string(data), "from echo")
	assert.Equal(t, log.DEBUG, e.Logger.Level())
}
