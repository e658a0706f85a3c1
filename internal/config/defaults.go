package config

const (
	defaultNotebookDir         = "~/notebook"
	defaultOutputDir           = "~/notebook/output"
	defaultLogDir              = "~/.local/share/labbook/logs"
	defaultAssetCacheDir       = "~/.cache/labbook/assets"
	defaultPythonBinary        = "python3"
	defaultOutputDirName       = "output"
	defaultSheetRequestTimeout = 10
	defaultAssetRequestTimeout = 30
	defaultReportTitle         = "Research Notebook"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			NotebookDir:   defaultNotebookDir,
			OutputDir:     defaultOutputDir,
			LogDir:        defaultLogDir,
			AssetCacheDir: defaultAssetCacheDir,
		},
		Runner: Runner{
			PythonBinary:  defaultPythonBinary,
			OutputDirName: defaultOutputDirName,
		},
		Sheet: Sheet{
			RequestTimeout: defaultSheetRequestTimeout,
		},
		Assets: Assets{
			Enabled:        true,
			RequestTimeout: defaultAssetRequestTimeout,
		},
		Report: Report{
			Title: defaultReportTitle,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
