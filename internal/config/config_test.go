package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanakrit/ledgerctl/internal/common"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadRequiresBaseURL(t *testing.T) {
	resetViper(t)

	_, err := Load()
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)
	viper.Set("api.base_url", "https://api.example.test/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test", cfg.APIBaseURL)
	// Report service falls back to the main host.
	assert.Equal(t, "https://api.example.test", cfg.ReportBaseURL)
	assert.NotEmpty(t, cfg.StatePath)
}

func TestLoadExplicitValues(t *testing.T) {
	resetViper(t)
	viper.Set("api.base_url", "https://api.example.test")
	viper.Set("api.report_base_url", "https://report.example.test/")
	viper.Set("api.ocr_base_url", "https://ocr.example.test")
	viper.Set("state.path", "/tmp/ledgerctl-test/state.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://report.example.test", cfg.ReportBaseURL)
	assert.Equal(t, "https://ocr.example.test", cfg.OCRBaseURL)
	assert.Equal(t, "/tmp/ledgerctl-test/state.db", cfg.StatePath)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("LEDGERCTL_TEST_DIR", "/opt/fonts")

	assert.Equal(t, "/opt/fonts/sarabun.ttf", ExpandPath("$LEDGERCTL_TEST_DIR/sarabun.ttf"))
	assert.Equal(t, "", ExpandPath(""))
	assert.NotContains(t, ExpandPath("~/fonts"), "~")
}
