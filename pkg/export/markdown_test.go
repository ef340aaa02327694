package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aaexhub/laohu-todo/pkg/model"
)

func TestWriteAndParseRoundTrip(t *testing.T) {
	active := []model.Task{
		{ID: "a", Name: "Report", Priority: model.PriorityA1, Deadline: "2024-03-05T14:00", Status: model.StatusPending},
		{ID: "b", Name: "买菜", Priority: model.PriorityC, Status: model.StatusPending},
	}
	archived := []model.Task{
		{ID: "c", Name: "Old chore", Priority: model.PriorityB1, Completed: true, Status: model.StatusDone, ArchiveID: "20240305001"},
	}

	var buf bytes.Buffer
	if err := Write(&buf, active, archived); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"- [ ] [A1] Report <2024-03-05T14:00>", "- [ ] [C] 买菜", "- [x] [B1] Old chore (20240305001)"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing line %q in output:\n%s", want, out)
		}
	}

	parsed, err := Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parsed) != 3 {
		t.Fatalf("expected 3 items, got %d", len(parsed))
	}

	if parsed[0].Name != "Report" || parsed[0].Priority != model.PriorityA1 || parsed[0].Deadline != "2024-03-05T14:00" {
		t.Errorf("first item did not round-trip: %+v", parsed[0])
	}
	if parsed[0].Completed {
		t.Error("open item parsed as completed")
	}
	if !parsed[2].Completed {
		t.Error("archived item must parse as completed")
	}
}

func TestParseSkipsNonItems(t *testing.T) {
	input := `# 任务清单

Some prose to ignore.

## 进行中
- [ ] plain task
- not a checkbox
* [ ] wrong bullet
`
	parsed, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Name != "plain task" {
		t.Errorf("expected exactly the one checklist item, got %+v", parsed)
	}
}

func TestParseWithoutPriorityOrDeadline(t *testing.T) {
	parsed, err := Parse(strings.NewReader("- [x] done thing\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed) != 1 {
		t.Fatalf("expected one item, got %d", len(parsed))
	}
	got := parsed[0]
	if got.Name != "done thing" || !got.Completed || got.Priority != "" || got.Deadline != "" {
		t.Errorf("unexpected parse result: %+v", got)
	}
}
