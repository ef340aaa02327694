// Package export round-trips task lists through a plain Markdown checklist,
// so tasks can be pasted into notes or bulk-imported from one.
package export

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aaexhub/laohu-todo/pkg/model"
)

// Write renders the active and archived lists as a Markdown checklist.
func Write(w io.Writer, active, archived []model.Task) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# 任务清单")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "## 进行中")
	for _, t := range active {
		fmt.Fprintln(bw, line(t))
	}
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "## 已归档")
	for _, t := range archived {
		fmt.Fprintln(bw, line(t))
	}

	return bw.Flush()
}

func line(t model.Task) string {
	box := " "
	if t.Completed {
		box = "x"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "- [%s]", box)
	if t.Priority != "" {
		fmt.Fprintf(&sb, " [%s]", t.Priority)
	}
	fmt.Fprintf(&sb, " %s", t.Name)
	if t.Deadline != "" {
		fmt.Fprintf(&sb, " <%s>", t.Deadline)
	}
	if t.ArchiveID != "" {
		fmt.Fprintf(&sb, " (%s)", t.ArchiveID)
	}
	return sb.String()
}

var itemRegex = regexp.MustCompile(`^- \[( |x|X)\]\s*(?:\[([A-Za-z0-9]+)\]\s*)?(.*?)(?:\s+<([^>]+)>)?(?:\s+\(\w+\))?\s*$`)

// Parse reads a Markdown checklist back into bare tasks. Only the name,
// priority, deadline and completion flag survive the round trip; ids and
// timestamps are assigned on import. Lines that are not checklist items are
// skipped.
func Parse(r io.Reader) ([]model.Task, error) {
	scanner := bufio.NewScanner(r)
	var out []model.Task

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		matches := itemRegex.FindStringSubmatch(line)
		if len(matches) == 0 {
			continue
		}

		name := strings.TrimSpace(matches[3])
		if name == "" {
			continue
		}
		task := model.Task{
			Name:      name,
			Priority:  matches[2],
			Deadline:  matches[4],
			Completed: matches[1] != " ",
		}
		out = append(out, task)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checklist: %w", err)
	}
	return out, nil
}
