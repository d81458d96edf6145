// styles.go: Terminal styles for log output
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/pingseran/eplog"
)

var (
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	levelStyles = map[eplog.Level]lipgloss.Style{
		eplog.LevelNone:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		eplog.LevelDebug:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		eplog.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		eplog.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		eplog.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		eplog.LevelTest:    lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	}
)

func levelStyle(l eplog.Level) lipgloss.Style {
	if s, ok := levelStyles[l]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
