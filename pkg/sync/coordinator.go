package sync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aaexhub/laohu-todo/pkg/model"
	"github.com/aaexhub/laohu-todo/pkg/tasks"
)

// Status is the coordinator's externally visible state.
type Status string

const (
	StatusUnconfigured  Status = "unconfigured"
	StatusBootstrapping Status = "bootstrapping"
	StatusPulling       Status = "pulling"
	StatusPushing       Status = "pushing"
	StatusSynced        Status = "synced"
)

// DefaultInterval is how often the periodic timer republishes local state.
// Pushing even when nothing changed heals a previous push that failed
// silently.
const DefaultInterval = 5 * time.Minute

// Remote is the single-document store the coordinator mirrors state to.
type Remote interface {
	CreateDocument(ctx context.Context, env model.Envelope) (string, error)
	ReadDocument(ctx context.Context, id string) (model.Envelope, error)
	WriteDocument(ctx context.Context, id string, env model.Envelope) error
}

// Coordinator reconciles the local repository with the remote document using
// last-writer-wins on the envelope timestamp. Local mutations are never
// rolled back: every remote failure degrades to local-only operation.
type Coordinator struct {
	repo   *tasks.Repository
	remote Remote
	log    *zap.SugaredLogger

	mu     sync.Mutex
	status Status
	gistID string

	pushMu  sync.Mutex
	pushing bool
	pending bool
	wg      sync.WaitGroup
}

// New builds a coordinator. remote may be nil, in which case every operation
// is a no-op and the status stays unconfigured.
func New(repo *tasks.Repository, remote Remote, gistID string, log *zap.SugaredLogger) *Coordinator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	status := StatusUnconfigured
	if remote != nil {
		status = StatusBootstrapping
	}
	return &Coordinator{
		repo:   repo,
		remote: remote,
		log:    log,
		status: status,
		gistID: gistID,
	}
}

// Status reports the current sync state.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Coordinator) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// Bootstrap ensures a remote document exists, then pulls. Called at startup
// and after (re)configuration; its error is the one failure surfaced to the
// user interactively.
func (c *Coordinator) Bootstrap(ctx context.Context) error {
	if c.remote == nil {
		return nil
	}

	c.mu.Lock()
	id := c.gistID
	c.mu.Unlock()

	if id == "" {
		c.setStatus(StatusBootstrapping)
		newID, err := c.remote.CreateDocument(ctx, c.repo.StampForPush())
		if err != nil {
			c.log.Warnw("bootstrap failed, staying local-only", "error", err)
			return err
		}
		c.mu.Lock()
		c.gistID = newID
		c.mu.Unlock()
		c.repo.SetGistID(newID)
		c.setStatus(StatusSynced)
		return nil
	}

	return c.Pull(ctx)
}

// Pull reads the remote envelope and resolves the conflict by last-writer-
// wins: a strictly newer remote replaces the local collections wholesale,
// otherwise local state is republished. There is no field-level merge.
func (c *Coordinator) Pull(ctx context.Context) error {
	if c.remote == nil {
		return nil
	}
	c.mu.Lock()
	id := c.gistID
	c.mu.Unlock()
	if id == "" {
		return c.Bootstrap(ctx)
	}

	prev := c.Status()
	c.setStatus(StatusPulling)
	env, err := c.remote.ReadDocument(ctx, id)
	if err != nil {
		c.log.Warnw("pull failed, keeping local state", "error", err)
		c.setStatus(prev)
		return err
	}

	// ISO-8601 stamps are fixed width UTC, so string order is time order.
	if env.LastUpdate > c.repo.LastUpdate() {
		c.repo.Replace(env)
		c.log.Infow("remote was newer, replaced local collections",
			"remote", env.LastUpdate)
		c.setStatus(StatusSynced)
		return nil
	}
	if err := c.Push(ctx); err != nil {
		c.setStatus(prev)
		return err
	}
	return nil
}

// Push publishes the local envelope with a fresh lastUpdate, overwriting the
// remote document unconditionally. A no-op when sync is unconfigured.
func (c *Coordinator) Push(ctx context.Context) error {
	if c.remote == nil {
		return nil
	}
	c.mu.Lock()
	id := c.gistID
	c.mu.Unlock()
	if id == "" {
		return nil
	}

	prev := c.Status()
	c.setStatus(StatusPushing)
	if err := c.remote.WriteDocument(ctx, id, c.repo.StampForPush()); err != nil {
		c.log.Warnw("push failed, continuing local-only", "error", err)
		c.setStatus(prev)
		return err
	}
	c.setStatus(StatusSynced)
	return nil
}

// NotifyChange schedules a background push. Pushes are serialized behind a
// single-flight guard: at most one request is in flight, and any number of
// notifications arriving meanwhile coalesce into one trailing push. Failures
// are logged, never surfaced.
func (c *Coordinator) NotifyChange() {
	if c.remote == nil {
		return
	}

	c.pushMu.Lock()
	if c.pushing {
		c.pending = true
		c.pushMu.Unlock()
		return
	}
	c.pushing = true
	c.pushMu.Unlock()

	c.wg.Add(1)
	go c.pushLoop()
}

func (c *Coordinator) pushLoop() {
	defer c.wg.Done()
	for {
		if err := c.Push(context.Background()); err != nil {
			c.log.Debugw("background push failed", "error", err)
		}

		c.pushMu.Lock()
		if !c.pending {
			c.pushing = false
			c.pushMu.Unlock()
			return
		}
		c.pending = false
		c.pushMu.Unlock()
	}
}

// Run pushes on a fixed interval until ctx is cancelled. The interval push is
// unconditional; it is the only retry mechanism for failed pushes.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Push(ctx); err != nil {
				c.log.Debugw("periodic push failed", "error", err)
			}
		}
	}
}

// Wait blocks until all in-flight background pushes have drained. Called at
// teardown so a fire-and-forget push is not cut off mid-request.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
