package model

import (
	"strings"
	"testing"
	"time"
)

func TestPriorityRank(t *testing.T) {
	order := []string{PriorityA1, PriorityA2, PriorityB1, PriorityC, "X9", ""}
	for i := 1; i < len(order); i++ {
		if PriorityRank(order[i-1]) > PriorityRank(order[i]) {
			t.Errorf("expected rank(%q) <= rank(%q), got %d > %d",
				order[i-1], order[i], PriorityRank(order[i-1]), PriorityRank(order[i]))
		}
	}
	if PriorityRank("B2") != PriorityRank("whatever") {
		t.Error("all unknown priorities should share the last rank")
	}
}

func TestParseDeadline(t *testing.T) {
	got, err := ParseDeadline("2024-03-05T14:30")
	if err != nil {
		t.Fatalf("ParseDeadline failed: %v", err)
	}
	want := time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, err := ParseDeadline(""); err != nil {
		t.Errorf("empty deadline should be allowed, got %v", err)
	}
	if _, err := ParseDeadline("tomorrow"); err == nil {
		t.Error("expected error for a non-parseable deadline")
	}
}

func TestStampOrdering(t *testing.T) {
	t1 := Stamp(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	t2 := Stamp(time.Date(2024, 3, 5, 10, 0, 1, 0, time.UTC))
	if !(t1 < t2) {
		t.Errorf("expected lexicographic order to follow time order: %q vs %q", t1, t2)
	}
	if !strings.HasSuffix(t1, "Z") {
		t.Errorf("stamps must be UTC with a Z suffix, got %q", t1)
	}
}

func TestDecodeEnvelopeMissingFields(t *testing.T) {
	env, err := DecodeEnvelope(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	if len(env.Tasks) != 0 || len(env.ArchivedTasks) != 0 {
		t.Errorf("missing fields should decode to empty collections, got %+v", env)
	}
	if env.LastUpdate != "" {
		t.Errorf("expected empty lastUpdate, got %q", env.LastUpdate)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env := Envelope{
		Tasks: []Task{{
			ID: "t1", Name: "Report", Priority: PriorityA1,
			Status: StatusPending, CreatedAt: NowStamp(),
		}},
		ArchivedTasks: []Task{{
			ID: "t0", Name: "Old", Completed: true,
			Status: StatusDone, ArchiveID: "20240305001",
		}},
		LastUpdate: NowStamp(),
	}

	data, err := env.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	back, err := DecodeEnvelope(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	if len(back.Tasks) != 1 || back.Tasks[0].Name != "Report" {
		t.Errorf("active tasks did not round-trip: %+v", back.Tasks)
	}
	if len(back.ArchivedTasks) != 1 || back.ArchivedTasks[0].Status != StatusDone {
		t.Errorf("archived tasks did not round-trip: %+v", back.ArchivedTasks)
	}
	if back.LastUpdate != env.LastUpdate {
		t.Errorf("expected lastUpdate %q, got %q", env.LastUpdate, back.LastUpdate)
	}
}
