package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"labbook/internal/runner"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func statusCell(status runner.Status, colorize bool) string {
	label := string(status)
	if !colorize {
		return label
	}
	switch status {
	case runner.StatusSuccess:
		return ansiGreen + label + ansiReset
	case runner.StatusFailed:
		return ansiRed + label + ansiReset
	case runner.StatusSkipped:
		return ansiYellow + label + ansiReset
	default:
		return label
	}
}

func enabledCell(enabled bool) string {
	if enabled {
		return "yes"
	}
	return "no"
}
