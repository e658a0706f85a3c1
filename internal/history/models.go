package history

import "time"

// Run is a recorded orchestrator run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Succeeded  int
	Failed     int
	Skipped    int
	ReportPath string
}

// ModuleResult is one module's recorded outcome within a run.
type ModuleResult struct {
	RunID         string
	Position      int
	ModuleID      string
	Status        string
	ErrorDetail   string
	ArtifactPaths []string
	Duration      time.Duration
}

// Asset is a cached external asset indexed by module and reference.
type Asset struct {
	ModuleID  string
	Ref       string
	LocalPath string
	FetchedAt time.Time
}
