// Package app wires the core together and exposes the interface the UI layer
// (here, the CLI) calls into. The UI owns all prompts and rendering; the app
// owns state, persistence and sync.
package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/aaexhub/laohu-todo/pkg/birthday"
	"github.com/aaexhub/laohu-todo/pkg/config"
	"github.com/aaexhub/laohu-todo/pkg/gist"
	"github.com/aaexhub/laohu-todo/pkg/model"
	"github.com/aaexhub/laohu-todo/pkg/store"
	syncx "github.com/aaexhub/laohu-todo/pkg/sync"
	"github.com/aaexhub/laohu-todo/pkg/tasks"
)

// App owns the component lifecycle: one store, one repository, one sync
// coordinator, explicitly constructed and torn down.
type App struct {
	Settings  *config.Settings
	Log       *zap.SugaredLogger
	Tasks     *tasks.Repository
	Birthdays *birthday.Repository
	Sync      *syncx.Coordinator
}

// New loads local state and builds the sync coordinator from the persisted
// sync configuration. A missing credential leaves sync unconfigured; the app
// still works fully local.
func New(settings *config.Settings, log *zap.SugaredLogger) *App {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	st := store.New(settings.TasksPath(), log)
	repo := tasks.New(st, log)

	gistID, token := repo.SyncConfig()
	var remote syncx.Remote
	if token != "" {
		client, err := gist.NewClient(token, log)
		if err != nil {
			log.Warnw("could not build remote client, staying local-only", "error", err)
		} else {
			remote = client
		}
	}
	coord := syncx.New(repo, remote, gistID, log)
	repo.SetOnChange(coord.NotifyChange)

	return &App{
		Settings:  settings,
		Log:       log,
		Tasks:     repo,
		Birthdays: birthday.New(settings.BirthdaysPath(), log),
		Sync:      coord,
	}
}

// Close drains in-flight background pushes and flushes the logger.
func (a *App) Close() {
	a.Sync.Wait()
	_ = a.Log.Sync()
}

// AddTask appends a new active task built from the given fields.
func (a *App) AddTask(t model.Task) (model.Task, error) {
	return a.Tasks.Add(t)
}

// UpdateTask merges fields into the task with the given id.
func (a *App) UpdateTask(id string, f tasks.Fields) {
	a.Tasks.Update(id, f)
}

// DeleteTask removes an active task. The caller confirms destructive intent.
func (a *App) DeleteTask(id string) {
	a.Tasks.Remove(id)
}

// CompleteTask archives an active task.
func (a *App) CompleteTask(id string) (model.Task, bool) {
	return a.Tasks.Complete(id)
}

// UncompleteTask forces an active task back to pending.
func (a *App) UncompleteTask(id string) bool {
	return a.Tasks.Uncomplete(id)
}

// ListActiveTasksSorted returns active tasks in priority order.
func (a *App) ListActiveTasksSorted() []model.Task {
	return a.Tasks.ListActive()
}

// ListArchivedTasks returns archived tasks, newest first.
func (a *App) ListArchivedTasks() []model.Task {
	return a.Tasks.ListArchived()
}

// SyncStatus reports the coordinator's state.
func (a *App) SyncStatus() syncx.Status {
	return a.Sync.Status()
}

// SyncNow runs a pull (which pushes when local is fresher). This is the
// startup reconcile and the `sync` command.
func (a *App) SyncNow(ctx context.Context) error {
	return a.Sync.Bootstrap(ctx)
}

// ConfigureSync stores the credential and optional document id, rebuilds the
// remote client and bootstraps. Unlike background sync, failures here are
// returned so the user sees e.g. an invalid token right away.
func (a *App) ConfigureSync(ctx context.Context, token, gistID string) error {
	a.Tasks.SetSyncConfig(gistID, token)

	// Drain pushes still running on the outgoing coordinator; once it is
	// swapped out, Close no longer waits on it.
	a.Sync.Wait()

	var remote syncx.Remote
	if token != "" {
		client, err := gist.NewClient(token, a.Log)
		if err != nil {
			return err
		}
		remote = client
	}

	coord := syncx.New(a.Tasks, remote, gistID, a.Log)
	a.Tasks.SetOnChange(coord.NotifyChange)
	a.Sync = coord

	if remote == nil {
		return nil
	}
	return coord.Bootstrap(ctx)
}
