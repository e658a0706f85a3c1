package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"labbook/internal/logging"
	"labbook/internal/services"
)

// merge concatenates the input PDFs into outPath using an external merge
// tool. The configured tool wins; otherwise pdfunite is preferred with
// ghostscript as the fallback.
func (c *Compiler) merge(ctx context.Context, inputs []string, outPath string) error {
	tool, err := c.resolveTool()
	if err != nil {
		return err
	}

	args := mergeArgs(tool, inputs, outPath)
	cmd := exec.CommandContext(ctx, tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.logger.Debug("merging artifacts", logging.String("tool", tool), logging.Int("inputs", len(inputs)))
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = fmt.Sprintf("%s failed", tool)
		}
		return services.Wrap(services.ErrExternalTool, "report", "merge", detail, err)
	}

	if info, statErr := os.Stat(outPath); statErr != nil || info.IsDir() {
		return services.Wrap(services.ErrExternalTool, "report", "merge", fmt.Sprintf("%s exited cleanly but produced no output at %s", tool, outPath), nil)
	}
	return nil
}

func (c *Compiler) resolveTool() (string, error) {
	if configured := strings.TrimSpace(c.cfg.Report.MergeTool); configured != "" {
		return configured, nil
	}
	for _, candidate := range []string{"pdfunite", "gs"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", services.Wrap(services.ErrExternalTool, "report", "merge", "no PDF merge tool found (install pdfunite or ghostscript, or set report.merge_tool)", nil)
}

// mergeArgs builds the argument list for the selected tool. Ghostscript has
// its own flag convention; every other tool is assumed to follow the
// pdfunite style of inputs followed by the output path.
func mergeArgs(tool string, inputs []string, outPath string) []string {
	if strings.HasPrefix(filepath.Base(tool), "gs") {
		args := []string{"-dBATCH", "-dNOPAUSE", "-q", "-sDEVICE=pdfwrite", "-sOutputFile=" + outPath, "-f"}
		return append(args, inputs...)
	}
	args := make([]string, 0, len(inputs)+1)
	args = append(args, inputs...)
	return append(args, outPath)
}
