package app

import (
	"context"
	"fmt"
	"io"
	gosync "sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nhle/tasklite/internal/model"
	"github.com/nhle/tasklite/internal/search"
	"github.com/nhle/tasklite/internal/source"
	appsync "github.com/nhle/tasklite/internal/sync"
)

// TaskStore is the subset of store.Store the session uses.
type TaskStore interface {
	ListAll(ctx context.Context) ([]model.Task, error)
	Insert(ctx context.Context, title string, done bool) (int64, error)
	UpdateTitle(ctx context.Context, id int64, title string) error
	ToggleDone(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// Importer runs one remote import pass and remembers how the last one went.
type Importer interface {
	Import(ctx context.Context, src source.RemoteTaskSource) (appsync.ImportResult, error)
	Status() appsync.SyncStatus
}

// Status reports which long-running operations are in flight.
type Status struct {
	Loading    bool `json:"loading"`
	Refreshing bool `json:"refreshing"`
	Syncing    bool `json:"syncing"`
}

// Options configures a Session.
type Options struct {
	// Logger receives operation failures. Nil discards them.
	Logger *log.Logger

	// Notifier, when set, is called with every notification as it is
	// raised, in addition to queueing it for Notifications.
	Notifier func(model.Notification)

	// Now stamps notifications. Nil means time.Now.
	Now func() time.Time
}

// Session is the entry point for callers: it holds the in-memory mirror of
// the store, the current search query and the status flags.
//
// Add, Edit and Import reload the mirror from the store. ToggleDone and
// Delete patch the single affected row. Callers must not issue mutating
// calls concurrently; the session does not order them.
type Session struct {
	store    TaskStore
	importer Importer
	log      *log.Logger
	notifier func(model.Notification)
	now      func() time.Time

	mu            gosync.RWMutex
	tasks         []model.Task
	query         string
	status        Status
	notifications []model.Notification
	pending       map[string]DeleteRequest
}

// New creates a session. Loading is reported until the first Load finishes.
func New(s TaskStore, im Importer, opts Options) *Session {
	sess := &Session{
		store:    s,
		importer: im,
		log:      opts.Logger,
		notifier: opts.Notifier,
		now:      opts.Now,
		tasks:    []model.Task{},
		status:   Status{Loading: true},
		pending:  make(map[string]DeleteRequest),
	}
	if sess.log == nil {
		sess.log = log.New()
		sess.log.SetOutput(io.Discard)
	}
	if sess.now == nil {
		sess.now = time.Now
	}
	return sess
}

// Load performs the initial read of the store.
func (s *Session) Load(ctx context.Context) error {
	s.setFlag(func(st *Status) { st.Loading = true })
	defer s.setFlag(func(st *Status) { st.Loading = false })

	if err := s.reload(ctx); err != nil {
		return s.fail("loading tasks", err)
	}
	return nil
}

// Refresh rereads the store on user request.
func (s *Session) Refresh(ctx context.Context) error {
	s.setFlag(func(st *Status) { st.Refreshing = true })
	defer s.setFlag(func(st *Status) { st.Refreshing = false })

	if err := s.reload(ctx); err != nil {
		return s.fail("refreshing tasks", err)
	}
	return nil
}

// Status returns a snapshot of the status flags.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetSearch replaces the current search query.
func (s *Session) SetSearch(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// Search returns the current search query.
func (s *Session) Search() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Tasks returns the mirror filtered by the current search query.
func (s *Session) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return search.Filter(cloneTasks(s.tasks), s.query)
}

// AllTasks returns the unfiltered mirror, newest first.
func (s *Session) AllTasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.tasks)
}

// Notifications drains and returns the queued notifications, oldest first.
func (s *Session) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notifications
	s.notifications = nil
	return out
}

// reload replaces the mirror with the current store contents. The mirror
// is left untouched when the read fails.
func (s *Session) reload(ctx context.Context) error {
	tasks, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return nil
}

func (s *Session) setFlag(fn func(*Status)) {
	s.mu.Lock()
	fn(&s.status)
	s.mu.Unlock()
}

// notify queues a notification and forwards it to the notifier.
func (s *Session) notify(level model.NotificationLevel, msg string) {
	n := model.Notification{Level: level, Message: msg, CreatedAt: s.now()}
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()
	if s.notifier != nil {
		s.notifier(n)
	}
}

// fail logs err, raises an error notification and returns err unchanged so
// callers can still match it with errors.As.
func (s *Session) fail(op string, err error) error {
	s.log.WithField("op", op).WithError(err).Warn("operation failed")
	s.notify(model.NotificationError, fmt.Sprintf("%s: %v", op, err))
	return err
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}
