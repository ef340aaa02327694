package tasks

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aaexhub/laohu-todo/pkg/model"
	"github.com/aaexhub/laohu-todo/pkg/store"
)

// Fields carries the optional task fields for Update. Nil pointers leave the
// existing value untouched, matching the object-spread merge of the original
// client.
type Fields struct {
	Name     *string
	Type     *string
	Priority *string
	Deadline *string
	Note     *string
}

func (f Fields) apply(t *model.Task) {
	if f.Name != nil {
		t.Name = *f.Name
	}
	if f.Type != nil {
		t.Type = *f.Type
	}
	if f.Priority != nil {
		t.Priority = *f.Priority
	}
	if f.Deadline != nil {
		t.Deadline = *f.Deadline
	}
	if f.Note != nil {
		t.Note = *f.Note
	}
}

// Repository owns the in-memory task collections and writes every mutation
// through to its store before returning. The local copy is the source of
// truth; remote sync is notified after the fact and can never roll a
// mutation back.
type Repository struct {
	mu       sync.Mutex
	st       *store.Store
	state    *store.State
	log      *zap.SugaredLogger
	onChange func()
}

// New loads prior state from st and returns a repository over it.
func New(st *store.Store, log *zap.SugaredLogger) *Repository {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Repository{
		st:    st,
		state: st.Load(),
		log:   log,
	}
}

// SetOnChange registers a hook fired after every successful mutating save.
// The sync coordinator uses it to schedule a background push.
func (r *Repository) SetOnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// save persists the full state with a fresh lastUpdate stamp. The stamp is
// clamped so lastUpdate never goes backwards even if the wall clock does.
// Callers must hold r.mu.
func (r *Repository) save() {
	stamp := model.NowStamp()
	if stamp < r.state.LastUpdate {
		stamp = r.state.LastUpdate
	}
	r.state.LastUpdate = stamp
	if err := r.st.Save(r.state); err != nil {
		r.log.Errorw("failed to save local state", "error", err)
	}
}

func (r *Repository) notify() {
	r.mu.Lock()
	fn := r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Add validates and appends a new active task. Only Name, Type, Priority,
// Deadline and Note are taken from t; everything else is assigned here.
func (r *Repository) Add(t model.Task) (model.Task, error) {
	if strings.TrimSpace(t.Name) == "" {
		return model.Task{}, &model.ValidationError{Msg: "task name must not be empty"}
	}
	if _, err := model.ParseDeadline(t.Deadline); err != nil {
		return model.Task{}, &model.ValidationError{Msg: err.Error()}
	}

	task := model.Task{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(t.Name),
		Type:      t.Type,
		Priority:  t.Priority,
		Deadline:  t.Deadline,
		Note:      t.Note,
		Completed: false,
		Status:    model.StatusPending,
		CreatedAt: model.NowStamp(),
	}

	r.mu.Lock()
	r.state.Tasks = append(r.state.Tasks, task)
	r.save()
	r.mu.Unlock()

	r.notify()
	return task, nil
}

// Update merges the supplied fields into the active task with the given id.
// A missing id is a silent no-op, matching the original client.
func (r *Repository) Update(id string, f Fields) {
	r.mu.Lock()
	changed := false
	for i := range r.state.Tasks {
		if r.state.Tasks[i].ID == id {
			f.apply(&r.state.Tasks[i])
			changed = true
			break
		}
	}
	if changed {
		r.save()
	}
	r.mu.Unlock()

	if changed {
		r.notify()
	}
}

// Remove deletes the active task with the given id. Confirmation of
// destructive intent is the caller's concern.
func (r *Repository) Remove(id string) {
	r.mu.Lock()
	changed := false
	for i := range r.state.Tasks {
		if r.state.Tasks[i].ID == id {
			r.state.Tasks = append(r.state.Tasks[:i], r.state.Tasks[i+1:]...)
			changed = true
			break
		}
	}
	if changed {
		r.save()
	}
	r.mu.Unlock()

	if changed {
		r.notify()
	}
}

// Complete archives the active task with the given id: it is removed from the
// active list and prepended to the archive in the same operation, so it never
// exists in both. The transition is one-way.
func (r *Repository) Complete(id string) (model.Task, bool) {
	r.mu.Lock()
	var archived model.Task
	found := false
	for i := range r.state.Tasks {
		if r.state.Tasks[i].ID == id {
			archived = r.state.Tasks[i]
			archived.Completed = true
			archived.Status = model.StatusDone
			archived.ArchiveID = archiveID(time.Now(), len(r.state.ArchivedTasks)+1)
			archived.ArchivedAt = model.NowStamp()
			r.state.Tasks = append(r.state.Tasks[:i], r.state.Tasks[i+1:]...)
			r.state.ArchivedTasks = append([]model.Task{archived}, r.state.ArchivedTasks...)
			found = true
			break
		}
	}
	if found {
		r.save()
	}
	r.mu.Unlock()

	if found {
		r.notify()
	}
	return archived, found
}

// Uncomplete forces a still-active task back to pending. It never touches the
// archive; archiving is irreversible through this path.
func (r *Repository) Uncomplete(id string) bool {
	r.mu.Lock()
	found := false
	for i := range r.state.Tasks {
		if r.state.Tasks[i].ID == id {
			r.state.Tasks[i].Completed = false
			r.state.Tasks[i].Status = model.StatusPending
			found = true
			break
		}
	}
	if found {
		r.save()
	}
	r.mu.Unlock()

	if found {
		r.notify()
	}
	return found
}

// ListActive returns the active tasks ordered by priority rank, ties keeping
// insertion order.
func (r *Repository) ListActive() []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]model.Task(nil), r.state.Tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		return model.PriorityRank(out[i].Priority) < model.PriorityRank(out[j].Priority)
	})
	return out
}

// ListArchived returns archived tasks, newest first.
func (r *Repository) ListArchived() []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Task(nil), r.state.ArchivedTasks...)
}

// Find returns the active task with the given id.
func (r *Repository) Find(id string) (model.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.state.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Stats counts active tasks per known priority label.
func (r *Repository) Stats() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[string]int{
		model.PriorityA1: 0,
		model.PriorityA2: 0,
		model.PriorityB1: 0,
		model.PriorityC:  0,
	}
	for _, t := range r.state.Tasks {
		if _, ok := counts[t.Priority]; ok {
			counts[t.Priority]++
		}
	}
	return counts
}

// Envelope returns a snapshot of the collections for syncing.
func (r *Repository) Envelope() model.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Envelope().Clone()
}

// LastUpdate returns the stamp written by the most recent save.
func (r *Repository) LastUpdate() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.LastUpdate
}

// StampForPush refreshes lastUpdate, persists it quietly (no change
// notification, to avoid a push scheduling another push), and returns the
// envelope to publish.
func (r *Repository) StampForPush() model.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.save()
	return r.state.Envelope().Clone()
}

// Replace overwrites both collections with the remote's copy after the remote
// side won conflict resolution. It saves but deliberately does not fire the
// change hook: pulled state must not immediately push back.
func (r *Repository) Replace(env model.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Tasks = env.Tasks
	r.state.ArchivedTasks = env.ArchivedTasks
	r.save()
}

// SyncConfig returns the persisted remote document id and credential.
func (r *Repository) SyncConfig() (gistID, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.GistID, r.state.Token
}

// SetSyncConfig stores the remote document id and credential alongside the
// task data. Quiet save: changing configuration is not a data mutation.
func (r *Repository) SetSyncConfig(gistID, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.GistID = gistID
	r.state.Token = token
	r.save()
}

// SetGistID records the id of a freshly created remote document.
func (r *Repository) SetGistID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.GistID = id
	r.save()
}

// archiveID builds the human-readable archive label: the archive date plus a
// zero-padded sequence. It is a display label, not a globally unique id.
func archiveID(now time.Time, seq int) string {
	return fmt.Sprintf("%s%03d", now.Format("20060102"), seq)
}
