package prompt

import "github.com/charmbracelet/lipgloss"

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func Heading(text string) string { return headingStyle.Render(text) }

func Success(text string) string { return successStyle.Render(text) }

func Failure(text string) string { return failureStyle.Render(text) }

func Muted(text string) string { return mutedStyle.Render(text) }
