package theme

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasklite/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
)

// HeaderStyle is used for the list title line.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// IDStyle renders the task id column.
var IDStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Width(5).
	Align(lipgloss.Right)

// OpenStyle renders the title of an open task.
var OpenStyle = lipgloss.NewStyle().
	Foreground(ColorWhite)

// DoneStyle renders the title of a completed task.
var DoneStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// DimmedStyle is used for timestamps and secondary text.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorSubtle)

// InfoStyle and ErrorStyle render notifications.
var (
	InfoStyle  = lipgloss.NewStyle().Foreground(ColorGreen)
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
)

// Checkbox returns the marker for a task's done state.
func Checkbox(done bool) string {
	if done {
		return InfoStyle.Render("[x]")
	}
	return "[ ]"
}

// RenderTask formats one task as a single list line.
func RenderTask(t model.Task) string {
	title := OpenStyle.Render(t.Title)
	if t.Done {
		title = DoneStyle.Render(t.Title)
	}
	created := DimmedStyle.Render(t.CreatedTime().Format(time.DateTime))
	return fmt.Sprintf("%s %s %s  %s", IDStyle.Render(fmt.Sprint(t.ID)), Checkbox(t.Done), title, created)
}

// RenderList formats a titled task list. An empty list renders a hint line.
func RenderList(header string, tasks []model.Task) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(header))
	b.WriteString("\n")
	if len(tasks) == 0 {
		b.WriteString(DimmedStyle.Render("  no tasks"))
		b.WriteString("\n")
		return b.String()
	}
	for _, t := range tasks {
		b.WriteString(RenderTask(t))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderNotification formats a notification according to its level.
func RenderNotification(n model.Notification) string {
	if n.Level == model.NotificationError {
		return ErrorStyle.Render("error: ") + n.Message
	}
	return InfoStyle.Render(n.Message)
}
