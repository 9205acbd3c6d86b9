package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/tasklite/internal/model"
	"github.com/nhle/tasklite/internal/source/remote"
)

type mockLister struct {
	tasks []model.Task
	err   error
}

func (m *mockLister) ListAll(ctx context.Context) ([]model.Task, error) {
	return m.tasks, m.err
}

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: 3, Title: "milk the cow", Done: false, CreatedAt: 3000},
		{ID: 2, Title: "Walk dog", Done: true, CreatedAt: 2000},
		{ID: 1, Title: "Buy Milk", Done: false, CreatedAt: 1000},
	}
}

func TestGetTodos(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := getTodos(&mockLister{tasks: sampleTasks()}, log.New())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var resp []remoteTodo
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 3 {
		t.Fatalf("expected 3 todos, got %d", len(resp))
	}
	want := remoteTodo{ID: "2", Title: "Walk dog", Completed: true, CreatedAt: 2000}
	if resp[1] != want {
		t.Fatalf("unexpected todo: %#v", resp[1])
	}
}

func TestGetTodosSearch(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/todos?q=MILK", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := getTodos(&mockLister{tasks: sampleTasks()}, log.New())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var resp []remoteTodo
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 || resp[0].ID != "3" || resp[1].ID != "1" {
		t.Fatalf("unexpected todos: %#v", resp)
	}
}

func TestGetTodosEmptyIsArray(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := getTodos(&mockLister{}, log.New())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestGetTodosStoreError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := getTodos(&mockLister{err: errors.New("disk I/O error")}, log.New())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500 got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"healthy":   {want: http.StatusOK},
		"unhealthy": {err: errors.New("closed"), want: http.StatusServiceUnavailable},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			srv := New(&mockLister{err: tc.err}, log.New())
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected status %d got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestExportIsImportable(t *testing.T) {
	srv := httptest.NewServer(New(&mockLister{tasks: sampleTasks()}, log.New()))
	defer srv.Close()

	tasks, err := remote.NewClient(srv.URL + "/todos").FetchTasks(context.Background())
	if err != nil {
		t.Fatalf("FetchTasks() failed: %v", err)
	}
	if len(tasks) != 3 || tasks[1].Title != "Walk dog" || !tasks[1].Completed {
		t.Fatalf("unexpected remote tasks: %+v", tasks)
	}
}
