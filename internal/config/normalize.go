package config

import "strings"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Sheet.OverridesURL = strings.TrimSpace(c.Sheet.OverridesURL)
	c.Sheet.StatusWebhookURL = strings.TrimSpace(c.Sheet.StatusWebhookURL)
	c.Sheet.Token = strings.TrimSpace(c.Sheet.Token)
	c.Runner.PythonBinary = strings.TrimSpace(c.Runner.PythonBinary)
	if c.Runner.PythonBinary == "" {
		c.Runner.PythonBinary = defaultPythonBinary
	}
	c.Runner.OutputDirName = strings.TrimSpace(c.Runner.OutputDirName)
	if c.Runner.OutputDirName == "" {
		c.Runner.OutputDirName = defaultOutputDirName
	}
	c.Report.Title = strings.TrimSpace(c.Report.Title)
	if c.Report.Title == "" {
		c.Report.Title = defaultReportTitle
	}
	c.Report.MergeTool = strings.TrimSpace(c.Report.MergeTool)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []*string{
		&c.Paths.NotebookDir,
		&c.Paths.OutputDir,
		&c.Paths.LogDir,
		&c.Paths.AssetCacheDir,
		&c.Registry.Path,
	}
	for _, field := range fields {
		if strings.TrimSpace(*field) == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}
