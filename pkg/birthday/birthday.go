package birthday

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aaexhub/laohu-todo/pkg/model"
)

// DateLayout is the value produced by an HTML date input.
const DateLayout = "2006-01-02"

// Birthday is one reminder entry. Field names mirror the persisted JSON
// record of the original client.
type Birthday struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Relation  string `json:"relation,omitempty"`
	Email     string `json:"email,omitempty"`
	Note      string `json:"note,omitempty"`
	Reminder  bool   `json:"reminder"`
	CreatedAt string `json:"createdAt"`
}

type state struct {
	Birthdays []Birthday `json:"birthdays"`
}

// Repository owns the birthday list, persisted as its own logical store
// separate from the task record.
type Repository struct {
	mu    sync.Mutex
	path  string
	state state
	log   *zap.SugaredLogger
}

// New loads the birthday store at path. Missing or malformed data fails soft
// to an empty list.
func New(path string, log *zap.SugaredLogger) *Repository {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	r := &Repository{path: path, log: log}

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnw("could not open birthday store, starting empty", "path", path, "error", err)
		}
		return r
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&r.state); err != nil {
		log.Warnw("could not parse birthday store, starting empty", "path", path, "error", err)
		r.state = state{}
	}
	return r
}

// save must be called with r.mu held.
func (r *Repository) save() {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		r.log.Errorw("failed to create birthday store directory", "error", err)
		return
	}
	data, err := json.MarshalIndent(r.state, "", "  ")
	if err != nil {
		r.log.Errorw("failed to encode birthday store", "error", err)
		return
	}
	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		r.log.Errorw("failed to write birthday store", "error", err)
		return
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		r.log.Errorw("failed to replace birthday store", "error", err)
	}
}

// Add validates and appends a new birthday entry.
func (r *Repository) Add(b Birthday) (Birthday, error) {
	if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Date) == "" {
		return Birthday{}, &model.ValidationError{Msg: "birthday name and date are both required"}
	}
	if _, err := time.ParseInLocation(DateLayout, b.Date, time.Local); err != nil {
		return Birthday{}, &model.ValidationError{Msg: fmt.Sprintf("invalid birthday date %q (want %s)", b.Date, DateLayout)}
	}

	b.ID = uuid.New().String()
	b.Name = strings.TrimSpace(b.Name)
	b.CreatedAt = model.NowStamp()

	r.mu.Lock()
	r.state.Birthdays = append(r.state.Birthdays, b)
	r.save()
	r.mu.Unlock()
	return b, nil
}

// Fields carries the optional birthday fields for Update. Nil pointers leave
// the existing value untouched, so a name-only edit cannot disturb the
// reminder flag.
type Fields struct {
	Name     *string
	Date     *string
	Relation *string
	Email    *string
	Note     *string
	Reminder *bool
}

// Update merges the supplied fields into the entry with the given id; silent
// no-op when absent. A malformed date is rejected before any state change.
func (r *Repository) Update(id string, f Fields) error {
	if f.Date != nil {
		if _, err := time.ParseInLocation(DateLayout, *f.Date, time.Local); err != nil {
			return &model.ValidationError{Msg: fmt.Sprintf("invalid birthday date %q (want %s)", *f.Date, DateLayout)}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.state.Birthdays {
		if r.state.Birthdays[i].ID != id {
			continue
		}
		cur := &r.state.Birthdays[i]
		if f.Name != nil {
			cur.Name = strings.TrimSpace(*f.Name)
		}
		if f.Date != nil {
			cur.Date = *f.Date
		}
		if f.Relation != nil {
			cur.Relation = *f.Relation
		}
		if f.Email != nil {
			cur.Email = *f.Email
		}
		if f.Note != nil {
			cur.Note = *f.Note
		}
		if f.Reminder != nil {
			cur.Reminder = *f.Reminder
		}
		r.save()
		return nil
	}
	return nil
}

// Remove deletes the entry with the given id; silent no-op when absent.
func (r *Repository) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.state.Birthdays {
		if r.state.Birthdays[i].ID == id {
			r.state.Birthdays = append(r.state.Birthdays[:i], r.state.Birthdays[i+1:]...)
			r.save()
			return
		}
	}
}

// Entry holds a birthday together with its countdown.
type Entry struct {
	Birthday
	Days int
}

// All returns every birthday sorted by days until the next occurrence.
func (r *Repository) All(today time.Time) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, 0, len(r.state.Birthdays))
	for _, b := range r.state.Birthdays {
		days, err := DaysUntil(b.Date, today)
		if err != nil {
			continue
		}
		out = append(out, Entry{Birthday: b, Days: days})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Days < out[j].Days })
	return out
}

// ThisMonth returns birthdays falling in today's calendar month, ordered by
// day of month.
func (r *Repository) ThisMonth(today time.Time) []Entry {
	var out []Entry
	for _, e := range r.All(today) {
		d, err := time.ParseInLocation(DateLayout, e.Date, time.Local)
		if err != nil {
			continue
		}
		if d.Month() == today.Month() {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, _ := time.ParseInLocation(DateLayout, out[i].Date, time.Local)
		dj, _ := time.ParseInLocation(DateLayout, out[j].Date, time.Local)
		return di.Day() < dj.Day()
	})
	return out
}

// Upcoming returns at most limit birthdays falling within the next `within`
// days, excluding today.
func (r *Repository) Upcoming(today time.Time, within, limit int) []Entry {
	var out []Entry
	for _, e := range r.All(today) {
		if e.Days > 0 && e.Days <= within {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DaysUntil counts whole days from today until the next occurrence of the
// birthday. A birthday earlier this year wraps to next year; today counts
// as zero.
func DaysUntil(dateStr string, today time.Time) (int, error) {
	d, err := time.ParseInLocation(DateLayout, dateStr, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid birthday date %q: %w", dateStr, err)
	}

	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	next := time.Date(today.Year(), d.Month(), d.Day(), 0, 0, 0, 0, today.Location())
	if next.Before(midnight) {
		next = time.Date(today.Year()+1, d.Month(), d.Day(), 0, 0, 0, 0, today.Location())
	}

	// Round so a DST-shortened day still counts as a whole day.
	return int(math.Round(next.Sub(midnight).Hours() / 24)), nil
}

// MailtoURL builds the greeting mail link for an entry with an email address.
func MailtoURL(b Birthday) (string, bool) {
	if b.Email == "" {
		return "", false
	}
	v := url.Values{}
	v.Set("subject", "🎂 生日快乐！")
	v.Set("body", fmt.Sprintf("亲爱的%s：\n\n祝你生日快乐！愿你新的一岁里，工作顺利，身体健康，万事如意！", b.Name))
	u := url.URL{Scheme: "mailto", Opaque: b.Email, RawQuery: strings.ReplaceAll(v.Encode(), "+", "%20")}
	return u.String(), true
}
