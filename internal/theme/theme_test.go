package theme

import (
	"strings"
	"testing"

	"github.com/nhle/tasklite/internal/model"
)

func TestRenderTask(t *testing.T) {
	line := RenderTask(model.Task{ID: 7, Title: "Buy milk", CreatedAt: 1700000000000})

	for _, want := range []string{"7", "[ ]", "Buy milk"} {
		if !strings.Contains(line, want) {
			t.Errorf("RenderTask() = %q, missing %q", line, want)
		}
	}
	if strings.Contains(line, "\n") {
		t.Errorf("RenderTask() should be a single line: %q", line)
	}
}

func TestRenderTask_Done(t *testing.T) {
	line := RenderTask(model.Task{ID: 1, Title: "Done thing", Done: true})
	if !strings.Contains(line, "[x]") {
		t.Errorf("RenderTask() = %q, want done marker", line)
	}
}

func TestRenderList_Empty(t *testing.T) {
	out := RenderList("Tasks", nil)
	if !strings.Contains(out, "Tasks") || !strings.Contains(out, "no tasks") {
		t.Errorf("RenderList() = %q", out)
	}
}

func TestRenderNotification(t *testing.T) {
	errLine := RenderNotification(model.Notification{Level: model.NotificationError, Message: "boom"})
	if !strings.Contains(errLine, "error") || !strings.Contains(errLine, "boom") {
		t.Errorf("RenderNotification(error) = %q", errLine)
	}
	info := RenderNotification(model.Notification{Level: model.NotificationInfo, Message: "No new tasks"})
	if !strings.Contains(info, "No new tasks") {
		t.Errorf("RenderNotification(info) = %q", info)
	}
}
