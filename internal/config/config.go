// Package config provides configuration loading for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/thanakrit/ledgerctl/internal/common"
)

// Identity holds the identity-provider settings used for Google sign-in.
type Identity struct {
	ClientID     string
	ClientSecret string
}

// Fonts holds the Thai typeface files embedded into exported PDFs.
type Fonts struct {
	RegularPath string
	BoldPath    string
}

// Config is the resolved application configuration.
type Config struct {
	// APIBaseURL is the main accounting API.
	APIBaseURL string
	// ReportBaseURL is the separate report-generation API that runs the
	// asynchronous PDF jobs.
	ReportBaseURL string
	// OCRBaseURL is the OCR/bank-statement microservice.
	OCRBaseURL string

	Identity Identity
	Fonts    Fonts

	// StatePath is the SQLite file holding session and filter state.
	StatePath string
}

// Load resolves configuration from viper (config file and LEDGERCTL_ env
// vars) with defaults suitable for local use.
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL:    viper.GetString("api.base_url"),
		ReportBaseURL: viper.GetString("api.report_base_url"),
		OCRBaseURL:    viper.GetString("api.ocr_base_url"),
		Identity: Identity{
			ClientID:     viper.GetString("identity.client_id"),
			ClientSecret: viper.GetString("identity.client_secret"),
		},
		Fonts: Fonts{
			RegularPath: ExpandPath(viper.GetString("export.font_regular")),
			BoldPath:    ExpandPath(viper.GetString("export.font_bold")),
		},
		StatePath: ExpandPath(viper.GetString("state.path")),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("%w: api.base_url", common.ErrMissingConfig)
	}
	if cfg.ReportBaseURL == "" {
		// The report service shares the main host unless configured.
		cfg.ReportBaseURL = cfg.APIBaseURL
	}
	if cfg.StatePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.StatePath = filepath.Join(home, ".local", "share", "ledgerctl", "state.db")
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.ReportBaseURL = strings.TrimRight(cfg.ReportBaseURL, "/")
	cfg.OCRBaseURL = strings.TrimRight(cfg.OCRBaseURL, "/")

	return cfg, nil
}
