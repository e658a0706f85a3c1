package services

import "context"

type contextKey string

const (
	moduleIDKey  contextKey = "module_id"
	runIDKey     contextKey = "run_id"
	componentKey contextKey = "component"
)

// WithModuleID annotates context with the module identifier being executed.
func WithModuleID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, moduleIDKey, id)
}

// ModuleIDFromContext extracts the module identifier if present.
func ModuleIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(moduleIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with the orchestrator run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithComponent annotates context with the component name (runner, report,
// sheet, assets).
func WithComponent(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, name)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(componentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
