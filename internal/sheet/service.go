package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"labbook/internal/config"
	"labbook/internal/orchestrator"
	"labbook/internal/runner"
	"labbook/internal/services"
)

const userAgent = "Labbook-Go/0.1.0"

// Service is the spreadsheet surface exposed to the run command: enabled
// overrides before a run, a status row per module after it.
type Service interface {
	Overrides(ctx context.Context) (map[string]bool, error)
	PutStatus(ctx context.Context, summary *orchestrator.Summary) error
}

// NewService builds a sheet service backed by the configured export and
// webhook URLs. When the integration is disabled, a noop implementation is
// returned.
func NewService(cfg *config.Config) Service {
	if !cfg.Sheet.Enabled {
		return noopService{}
	}

	timeout := time.Duration(cfg.Sheet.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &httpService{
		overridesURL: strings.TrimSpace(cfg.Sheet.OverridesURL),
		statusURL:    strings.TrimSpace(cfg.Sheet.StatusWebhookURL),
		token:        strings.TrimSpace(cfg.Sheet.Token),
		client:       &http.Client{Timeout: timeout},
	}
}

type httpService struct {
	overridesURL string
	statusURL    string
	token        string
	client       *http.Client
}

// Overrides fetches the sheet's CSV export and returns the enabled flag per
// module id. Rows without a module_id are skipped; an unparseable enabled
// cell is skipped rather than guessed so a half-edited sheet cannot flip
// modules on.
func (s *httpService) Overrides(ctx context.Context) (map[string]bool, error) {
	if s.overridesURL == "" {
		return nil, nil
	}

	body, err := s.get(ctx, s.overridesURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return parseOverrides(body)
}

func parseOverrides(r io.Reader) (map[string]bool, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sheet header: %w", err)
	}

	idCol, enabledCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "module_id", "module", "id":
			if idCol == -1 {
				idCol = i
			}
		case "enabled":
			enabledCol = i
		}
	}
	if idCol == -1 || enabledCol == -1 {
		return nil, services.Wrap(services.ErrConfig, "sheet", "parse", "sheet export needs module_id and enabled columns", nil)
	}

	overrides := make(map[string]bool)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read sheet row: %w", err)
		}
		if idCol >= len(record) || enabledCol >= len(record) {
			continue
		}
		id := strings.TrimSpace(record[idCol])
		if id == "" {
			continue
		}
		enabled, ok := parseBoolCell(record[enabledCol])
		if !ok {
			continue
		}
		overrides[id] = enabled
	}
	return overrides, nil
}

func parseBoolCell(cell string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "1", "yes", "y":
		return true, true
	case "false", "0", "no", "n":
		return false, true
	default:
		return false, false
	}
}

type statusPayload struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Modules    []statusRow    `json:"modules"`
	Counts     map[string]int `json:"counts"`
}

type statusRow struct {
	ModuleID string `json:"module_id"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// PutStatus posts the run summary to the status webhook as one JSON document.
// Status reporting is advisory: callers log failures and keep going.
func (s *httpService) PutStatus(ctx context.Context, summary *orchestrator.Summary) error {
	if s.statusURL == "" || summary == nil {
		return nil
	}

	succeeded, failed, skipped := summary.Counts()
	payload := statusPayload{
		RunID:      summary.RunID,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		Counts: map[string]int{
			string(runner.StatusSuccess): succeeded,
			string(runner.StatusFailed):  failed,
			string(runner.StatusSkipped): skipped,
		},
	}
	for _, result := range summary.Results {
		payload.Modules = append(payload.Modules, statusRow{
			ModuleID: result.ModuleID,
			Status:   string(result.Status),
			Error:    result.ErrorDetail,
		})
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode status payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.statusURL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "sheet", "put status", "post status", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrTransient, "sheet", "put status", fmt.Sprintf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *httpService) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build sheet request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "sheet", "fetch", "fetch sheet export", err)
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, services.Wrap(services.ErrTransient, "sheet", "fetch", fmt.Sprintf("sheet export returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return resp.Body, nil
}

type noopService struct{}

func (noopService) Overrides(context.Context) (map[string]bool, error)     { return nil, nil }
func (noopService) PutStatus(context.Context, *orchestrator.Summary) error { return nil }
