package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const checkLabelWidth = 22

// renderCheckLine formats one preflight check outcome, colorized when the
// output is a terminal.
func renderCheckLine(name string, passed bool, detail string, colorize bool) string {
	status := "FAIL"
	color := ansiRed
	if passed {
		status = "OK"
		color = ansiGreen
	}
	line := fmt.Sprintf("  %-*s [%s]", checkLabelWidth, name+":", status)
	if detail != "" {
		line += " " + detail
	}
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func renderWarnLine(message string, colorize bool) string {
	line := "  " + message
	if colorize {
		return ansiYellow + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
