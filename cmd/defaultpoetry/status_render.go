package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		return statusKindColor(kind).Sprint(base)
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) *color.Color {
	var c *color.Color
	switch kind {
	case statusOK:
		c = color.New(color.FgGreen)
	case statusWarn:
		c = color.New(color.FgYellow)
	case statusError:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.FgBlue)
	}
	c.EnableColor()
	return c
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		blue := statusKindColor(statusInfo)
		line = blue.Sprint(line)
		rule = blue.Sprint(rule)
	}
	return []string{line, rule}
}
