package main

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).MarginBottom(1)
	noticeStyle = lipgloss.NewStyle().Foreground(colorBlue).PaddingLeft(1)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)
