package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/tasklite/internal/model"
	"github.com/nhle/tasklite/internal/store"
)

// ErrUnknownDeleteToken is returned by ConfirmDelete for a token that was
// never issued, was cancelled, or was already used.
var ErrUnknownDeleteToken = errors.New("unknown or expired delete token")

// DeleteRequest is a pending deletion waiting for the user to confirm it.
type DeleteRequest struct {
	Token  string
	TaskID int64
	Title  string
}

// Add creates a task and reloads the mirror. Returns the new task's id.
func (s *Session) Add(ctx context.Context, title string) (int64, error) {
	id, err := s.store.Insert(ctx, title, false)
	if err != nil {
		return 0, s.fail("adding task", err)
	}
	s.log.WithField("task_id", id).Debug("task added")

	if err := s.reload(ctx); err != nil {
		return id, s.fail("reloading tasks", err)
	}
	return id, nil
}

// Edit replaces the title of task id and reloads the mirror.
func (s *Session) Edit(ctx context.Context, id int64, title string) error {
	if err := s.store.UpdateTitle(ctx, id, title); err != nil {
		return s.fail("editing task", err)
	}
	s.log.WithField("task_id", id).Debug("task edited")

	if err := s.reload(ctx); err != nil {
		return s.fail("reloading tasks", err)
	}
	return nil
}

// ToggleDone flips the done flag of task id and patches that row in the
// mirror. Returns the new state.
func (s *Session) ToggleDone(ctx context.Context, id int64) (bool, error) {
	done, err := s.store.ToggleDone(ctx, id)
	if err != nil {
		return false, s.fail("toggling task", err)
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Done = done
			break
		}
	}
	s.mu.Unlock()
	return done, nil
}

// Delete removes task id and drops it from the mirror. Deleting an id that
// does not exist succeeds.
func (s *Session) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.fail("deleting task", err)
	}

	s.mu.Lock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.mu.Unlock()

	s.log.WithField("task_id", id).Debug("task deleted")
	return nil
}

// RequestDelete starts the two-step delete of task id. The returned token
// is passed to ConfirmDelete once the user agrees, or to CancelDelete.
func (s *Session) RequestDelete(id int64) (DeleteRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := findTask(s.tasks, id)
	if !ok {
		return DeleteRequest{}, &store.NotFoundError{ID: id}
	}

	req := DeleteRequest{
		Token:  uuid.NewString(),
		TaskID: task.ID,
		Title:  task.Title,
	}
	s.pending[req.Token] = req
	return req, nil
}

// ConfirmDelete performs the deletion previously requested under token.
// A token can be used once.
func (s *Session) ConfirmDelete(ctx context.Context, token string) error {
	s.mu.Lock()
	req, ok := s.pending[token]
	delete(s.pending, token)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("confirming delete: %w", ErrUnknownDeleteToken)
	}
	return s.Delete(ctx, req.TaskID)
}

// CancelDelete discards a pending delete request. Unknown tokens are ignored.
func (s *Session) CancelDelete(token string) {
	s.mu.Lock()
	delete(s.pending, token)
	s.mu.Unlock()
}

func findTask(tasks []model.Task, id int64) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
