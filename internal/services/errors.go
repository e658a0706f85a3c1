package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfig marks malformed or ambiguous registry/configuration input.
	// Config errors are fatal and surface before any module runs.
	ErrConfig = errors.New("configuration error")
	// ErrModuleExecution marks a failure inside a single module run. The
	// runner converts these into Failed results; they never abort the batch.
	ErrModuleExecution = errors.New("module execution error")
	// ErrCompile marks a report compilation failure, typically because no
	// artifacts were available to merge.
	ErrCompile = errors.New("compile error")
	// ErrExternalTool marks a failure invoking an external binary such as the
	// PDF merge tool.
	ErrExternalTool = errors.New("external tool error")
	// ErrNotFound marks a missing resource (asset, run record).
	ErrNotFound = errors.New("not found")
	// ErrTransient marks failures of external collaborators that degrade
	// gracefully, such as the sheet override fetch.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
