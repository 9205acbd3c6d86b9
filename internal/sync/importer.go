package sync

import (
	"context"
	"fmt"
	"io"
	gosync "sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nhle/tasklite/internal/model"
	"github.com/nhle/tasklite/internal/source"
)

// defaultFetchTimeout is the maximum time allowed for a single fetch operation.
const defaultFetchTimeout = 30 * time.Second

// TaskWriter is the subset of the store used by an import run.
type TaskWriter interface {
	ListTitles(ctx context.Context) ([]string, error)
	InsertAt(ctx context.Context, title string, done bool, createdAt time.Time) (int64, error)
}

// ImportResult summarises an import run. Inserted is accurate even when
// the run fails part way through.
type ImportResult struct {
	Inserted int
}

// SyncStatus describes the most recent import run.
type SyncStatus struct {
	LastSync     time.Time
	LastInserted int
	Error        error
}

// Options configures an Importer.
type Options struct {
	// FetchTimeout bounds the remote fetch. Zero means 30 seconds.
	FetchTimeout time.Duration

	// Logger receives run summaries. Nil discards them.
	Logger *log.Logger

	// Now supplies the run timestamp. Nil means time.Now.
	Now func() time.Time
}

// Importer merges a remote task collection into the local store, adding
// only tasks whose normalized title is not already present.
type Importer struct {
	store        TaskWriter
	fetchTimeout time.Duration
	log          *log.Logger
	now          func() time.Time

	mu     gosync.Mutex
	status SyncStatus
}

// New creates an Importer writing to w.
func New(w TaskWriter, opts Options) *Importer {
	im := &Importer{
		store:        w,
		fetchTimeout: opts.FetchTimeout,
		log:          opts.Logger,
		now:          opts.Now,
	}
	if im.fetchTimeout <= 0 {
		im.fetchTimeout = defaultFetchTimeout
	}
	if im.log == nil {
		im.log = log.New()
		im.log.SetOutput(io.Discard)
	}
	if im.now == nil {
		im.now = time.Now
	}
	return im
}

// Import runs one reconciliation pass against src.
//
// The run timestamp and the baseline of existing titles are captured once,
// before the fetch; local edits made while the fetch is in flight are not
// seen by this run. A fetch failure aborts before anything is written.
// An insert failure stops the loop and is returned together with the
// number of rows already inserted. Cancelling ctx after the fetch stops
// the loop between inserts; rows already written are kept. A ctx that is
// already cancelled is reported as a RemoteFetchError and nothing is read.
func (im *Importer) Import(ctx context.Context, src source.RemoteTaskSource) (ImportResult, error) {
	var result ImportResult
	runAt := im.now()

	if err := ctx.Err(); err != nil {
		return im.finish(runAt, result, &source.RemoteFetchError{Err: err})
	}

	titles, err := im.store.ListTitles(ctx)
	if err != nil {
		return im.finish(runAt, result, fmt.Errorf("reading existing titles: %w", err))
	}
	seen := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		seen[model.NormalizeTitle(t)] = struct{}{}
	}

	remote, err := im.fetch(ctx, src)
	if err != nil {
		return im.finish(runAt, result, err)
	}

	for _, item := range remote {
		key := model.NormalizeTitle(item.Title)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return im.finish(runAt, result, fmt.Errorf("import interrupted: %w", err))
		}

		if _, err := im.store.InsertAt(ctx, item.Title, item.Completed, runAt); err != nil {
			return im.finish(runAt, result, fmt.Errorf("inserting %q: %w", item.Title, err))
		}
		seen[key] = struct{}{}
		result.Inserted++
	}

	return im.finish(runAt, result, nil)
}

// fetch calls src under the fetch timeout. Errors that are not already
// RemoteFetchErrors are wrapped so callers see a single error kind.
func (im *Importer) fetch(ctx context.Context, src source.RemoteTaskSource) ([]source.RemoteTask, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, im.fetchTimeout)
	defer cancel()

	remote, err := src.FetchTasks(fetchCtx)
	if err != nil {
		if source.IsRemoteFetchError(err) {
			return nil, err
		}
		return nil, &source.RemoteFetchError{Err: err}
	}
	return remote, nil
}

// finish records the run in the status and logs its outcome.
func (im *Importer) finish(runAt time.Time, result ImportResult, err error) (ImportResult, error) {
	im.mu.Lock()
	im.status = SyncStatus{
		LastSync:     runAt,
		LastInserted: result.Inserted,
		Error:        err,
	}
	im.mu.Unlock()

	entry := im.log.WithField("inserted", result.Inserted)
	if err != nil {
		entry.WithError(err).Warn("remote import failed")
	} else {
		entry.Info("remote import finished")
	}
	return result, err
}

// Status returns the outcome of the most recent run.
func (im *Importer) Status() SyncStatus {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.status
}
