package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/tasklite/internal/model"
	"github.com/nhle/tasklite/internal/source"
	appsync "github.com/nhle/tasklite/internal/sync"
)

// reloadTimeout bounds the reload that follows an interrupted import.
const reloadTimeout = 5 * time.Second

// Import merges the remote collection from src into the store and reloads
// the mirror. Syncing is reported for the whole call and cleared on every
// exit path.
//
// When the run fails after some rows were inserted the mirror is still
// reloaded so those rows are visible, and the partial count is returned
// alongside the error. That reload ignores cancellation of ctx.
func (s *Session) Import(ctx context.Context, src source.RemoteTaskSource) (appsync.ImportResult, error) {
	s.setFlag(func(st *Status) { st.Syncing = true })
	defer s.setFlag(func(st *Status) { st.Syncing = false })

	result, err := s.importer.Import(ctx, src)
	if err != nil {
		if result.Inserted > 0 {
			reloadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reloadTimeout)
			defer cancel()
			if reloadErr := s.reload(reloadCtx); reloadErr != nil {
				err = errors.Join(err, fmt.Errorf("reloading tasks: %w", reloadErr))
			}
		}
		return result, s.fail("importing tasks", err)
	}

	if err := s.reload(ctx); err != nil {
		return result, s.fail("reloading tasks", err)
	}
	s.notify(model.NotificationInfo, importSummary(result.Inserted))
	return result, nil
}

// LastSync reports the outcome of the most recent import.
func (s *Session) LastSync() appsync.SyncStatus {
	return s.importer.Status()
}

func importSummary(inserted int) string {
	switch inserted {
	case 0:
		return "No new tasks"
	case 1:
		return "Imported 1 new task"
	default:
		return fmt.Sprintf("Imported %d new tasks", inserted)
	}
}
