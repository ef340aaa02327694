package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aaexhub/laohu-todo/pkg/model"
)

func TestLoadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "tasks.json"), nil)
	state := s.Load()
	if len(state.Tasks) != 0 || len(state.ArchivedTasks) != 0 {
		t.Errorf("expected empty state for missing file, got %+v", state)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	state := New(path, nil).Load()
	if len(state.Tasks) != 0 || state.LastUpdate != "" {
		t.Errorf("malformed file must fail soft to empty state, got %+v", state)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")
	s := New(path, nil)

	in := &State{
		Tasks: []model.Task{
			{ID: "a", Name: "Report", Priority: model.PriorityA1, Status: model.StatusPending},
		},
		ArchivedTasks: []model.Task{
			{ID: "b", Name: "Old", Completed: true, Status: model.StatusDone, ArchiveID: "20240305001"},
		},
		LastUpdate: model.NowStamp(),
		GistID:     "abc123",
		Token:      "ghp_secret",
	}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out := s.Load()
	if len(out.Tasks) != 1 || out.Tasks[0].Name != "Report" {
		t.Errorf("tasks did not round-trip: %+v", out.Tasks)
	}
	if len(out.ArchivedTasks) != 1 || out.ArchivedTasks[0].ArchiveID != "20240305001" {
		t.Errorf("archive did not round-trip: %+v", out.ArchivedTasks)
	}
	if out.GistID != "abc123" || out.Token != "ghp_secret" {
		t.Errorf("sync config did not round-trip: %+v", out)
	}
	if out.LastUpdate != in.LastUpdate {
		t.Errorf("expected lastUpdate %q, got %q", in.LastUpdate, out.LastUpdate)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not survive a successful save")
	}
}

func TestEnvelopeExcludesSyncConfig(t *testing.T) {
	st := &State{GistID: "abc", Token: "secret", LastUpdate: "2024-03-05T10:00:00.000Z"}
	env := st.Envelope()
	data, err := env.Encode()
	if err != nil {
		t.Fatal(err)
	}
	for _, banned := range []string{"abc", "secret", "gistId", "token"} {
		if strings.Contains(string(data), banned) {
			t.Errorf("envelope must not leak sync config, found %q in %s", banned, data)
		}
	}
}
