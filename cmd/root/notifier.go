package root

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	warnTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Notifier prints session warnings and errors to stderr
type Notifier struct{}

func (Notifier) Warn(title, message string) {
	fmt.Fprintln(os.Stderr, warnTitleStyle.Render("⚠ "+title))
	fmt.Fprintln(os.Stderr, messageStyle.Render("  "+message))
}

func (Notifier) Error(message string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+message))
}
