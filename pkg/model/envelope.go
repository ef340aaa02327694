package model

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// stampLayout is the fixed-width UTC form produced by Date.toISOString in the
// original client. Fixed width keeps lexicographic comparison equivalent to
// chronological comparison.
const stampLayout = "2006-01-02T15:04:05.000Z"

// Envelope is the unit exchanged with the remote document store: both task
// collections plus a freshness timestamp.
type Envelope struct {
	Tasks         []Task `json:"tasks"`
	ArchivedTasks []Task `json:"archivedTasks"`
	LastUpdate    string `json:"lastUpdate,omitempty"`
}

// Stamp formats t as an envelope timestamp.
func Stamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

// NowStamp returns the current time as an envelope timestamp.
func NowStamp() string {
	return Stamp(time.Now())
}

// DecodeEnvelope parses an envelope from its JSON form. Missing fields decode
// to empty collections so records written by older clients stay readable.
func DecodeEnvelope(r io.Reader) (Envelope, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode envelope json: %w", err)
	}
	return env, nil
}

// Encode serializes the envelope to its JSON wire form.
func (e Envelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy of the envelope, so callers can hand it to
// concurrent work without racing the owner.
func (e Envelope) Clone() Envelope {
	out := Envelope{LastUpdate: e.LastUpdate}
	if e.Tasks != nil {
		out.Tasks = append([]Task(nil), e.Tasks...)
	}
	if e.ArchivedTasks != nil {
		out.ArchivedTasks = append([]Task(nil), e.ArchivedTasks...)
	}
	return out
}
