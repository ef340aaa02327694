package birthday

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Reminder thresholds, in days before the birthday. Same-day reminders always
// fire; the 3 and 7 day ones respect the entry's reminder flag.
var thresholds = []int{0, 3, 7}

// Reminder is one due notification produced by a sweep.
type Reminder struct {
	Entry Entry
	Title string
	Body  string
}

// Ledger records which reminders have already fired so repeated sweeps on the
// same day stay quiet. One entry per (birthday, year, threshold).
type Ledger struct {
	Fired map[string]time.Time `json:"fired"`
	Path  string               `json:"-"`
	dirty bool
}

// NewLedger loads the ledger at path, starting empty when absent.
func NewLedger(path string) (*Ledger, error) {
	l := &Ledger{
		Fired: make(map[string]time.Time),
		Path:  path,
	}
	if _, err := os.Stat(path); err == nil {
		if err := l.Load(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Ledger) Load() error {
	f, err := os.Open(l.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&l.Fired)
}

func (l *Ledger) Save() error {
	if !l.dirty {
		return nil
	}
	dir := filepath.Dir(l.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	f, err := os.Create(l.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(l.Fired); err != nil {
		return err
	}
	l.dirty = false
	return nil
}

func (l *Ledger) key(id string, year, days int) string {
	return fmt.Sprintf("%s/%d/%d", id, year, days)
}

func (l *Ledger) mark(id string, year, days int, now time.Time) bool {
	k := l.key(id, year, days)
	if _, fired := l.Fired[k]; fired {
		return false
	}
	l.Fired[k] = now
	l.dirty = true
	return true
}

// Sweep returns the reminders due today that have not fired yet and marks
// them in the ledger. Call Save afterwards to persist the marks.
func (l *Ledger) Sweep(entries []Entry, now time.Time) []Reminder {
	var due []Reminder
	for _, e := range entries {
		for _, days := range thresholds {
			if e.Days != days {
				continue
			}
			if days > 0 && !e.Reminder {
				continue
			}
			if !l.mark(e.ID, now.Year(), days, now) {
				continue
			}
			due = append(due, makeReminder(e, days))
		}
	}
	return due
}

func makeReminder(e Entry, days int) Reminder {
	date, _ := time.ParseInLocation(DateLayout, e.Date, time.Local)
	label := fmt.Sprintf("%d月%d日", int(date.Month()), date.Day())

	switch days {
	case 0:
		return Reminder{
			Entry: e,
			Title: fmt.Sprintf("🎂 今天是 %s 的生日！", e.Name),
			Body:  "别忘了送上祝福",
		}
	case 3:
		return Reminder{
			Entry: e,
			Title: fmt.Sprintf("🎂 提醒：%s 的生日还有3天", e.Name),
			Body:  fmt.Sprintf("生日：%s", label),
		}
	default:
		return Reminder{
			Entry: e,
			Title: fmt.Sprintf("🎂 提醒：%s 的生日还有1周", e.Name),
			Body:  fmt.Sprintf("生日：%s", label),
		}
	}
}
