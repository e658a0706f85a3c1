package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.NotebookDir == "" {
		return errors.New("paths.notebook_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if err := c.validateSheet(); err != nil {
		return err
	}
	if err := c.validateAssets(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateSheet() error {
	if !c.Sheet.Enabled {
		return nil
	}
	if c.Sheet.OverridesURL == "" && c.Sheet.StatusWebhookURL == "" {
		return errors.New("sheet.overrides_url or sheet.status_webhook_url must be set when sheet.enabled is true")
	}
	if c.Sheet.RequestTimeout <= 0 {
		return errors.New("sheet.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateAssets() error {
	if !c.Assets.Enabled {
		return nil
	}
	if c.Assets.RequestTimeout <= 0 {
		return errors.New("assets.request_timeout must be positive (seconds)")
	}
	if c.Paths.AssetCacheDir == "" {
		return errors.New("paths.asset_cache_dir must be set when assets.enabled is true")
	}
	return nil
}
