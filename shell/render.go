package shell

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/progress"
	"github.com/farxan99/OsSimulator/service/allocator"
	"github.com/farxan99/OsSimulator/service/cache"
)

// Snapshot is the serialisable state of the simulator
type Snapshot struct {
	Tasks    []*task.Task   `json:"tasks"`
	Ready    []task.ID      `json:"ready"`
	Blocked  []task.ID      `json:"blocked"`
	New      []task.ID      `json:"new"`
	PageSize int            `json:"pageSize"`
	Cache    cache.Stats    `json:"cache"`
	Counters map[string]int `json:"counters"`
}

func (s *Shell) snapshot(ctx context.Context) *Snapshot {
	counters := s.kernel.Progress()
	return &Snapshot{
		Tasks:    s.kernel.Tasks(ctx),
		Ready:    s.kernel.ReadyQueue(),
		Blocked:  s.kernel.BlockedQueue(),
		New:      s.kernel.NewQueue(),
		PageSize: s.kernel.PageSize(),
		Cache:    s.kernel.Allocator().Cache().Stats(),
		Counters: countersOf(&counters),
	}
}

func countersOf(p *progress.Progress) map[string]int {
	return map[string]int{
		"created":    p.CreatedTasks,
		"admitted":   p.AdmittedTasks,
		"dispatched": p.DispatchedTasks,
		"terminated": p.TerminatedTasks,
		"destroyed":  p.DestroyedTasks,
		"live":       p.Live(),
	}
}

func (s *Shell) show(ctx context.Context, command *Command) error {
	view := strings.ToLower(command.StringOr(0, "tasks"))
	s.mux.Lock()
	defer s.mux.Unlock()
	_, _ = s.bold.Fprintf(s.out, "== %v ==\n", view)
	switch view {
	case "tasks":
		return s.renderTasks(s.kernel.Tasks(ctx))
	case "ready":
		return s.renderQueue(ctx, s.kernel.ReadyQueue())
	case "blocked":
		return s.renderQueue(ctx, s.kernel.BlockedQueue())
	case "new":
		return s.renderQueue(ctx, s.kernel.NewQueue())
	case "cache":
		return s.renderCache()
	case "regions":
		return s.renderRegions()
	case "stats":
		return s.renderStats()
	}
	return fmt.Errorf("line %d: show: unknown view %q", command.Line, view)
}

func (s *Shell) renderTasks(tasks []*task.Task) error {
	table := tablewriter.NewWriter(s.out)
	table.Header("ID", "State", "Owner", "Priority", "Burst", "Arrival")
	for _, aTask := range tasks {
		_ = table.Append(
			strconv.Itoa(int(aTask.ID)),
			string(aTask.State),
			aTask.Owner,
			strconv.Itoa(aTask.Priority),
			strconv.Itoa(aTask.BurstTime),
			strconv.Itoa(aTask.ArrivalTime),
		)
	}
	return table.Render()
}

func (s *Shell) renderQueue(ctx context.Context, ids []task.ID) error {
	tasks := make([]*task.Task, 0, len(ids))
	for _, id := range ids {
		if aTask, ok := s.kernel.Task(ctx, id); ok {
			tasks = append(tasks, aTask)
		}
	}
	return s.renderTasks(tasks)
}

func (s *Shell) renderCache() error {
	flux := s.kernel.Allocator().Cache()
	table := tablewriter.NewWriter(s.out)
	table.Header("Rank", "Block", "Owner")
	for i, entry := range flux.Entries() {
		_ = table.Append(strconv.Itoa(i+1), entry.Key.String(), strconv.Itoa(entry.Owner))
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(s.out, "%d/%d frames, least recently used first\n", flux.Len(), flux.Capacity())
	return nil
}

func (s *Shell) renderRegions() error {
	table := tablewriter.NewWriter(s.out)
	table.Header("Task", "Magnitude", "Cell Size", "Cells", "Resident")
	for _, region := range s.kernel.Allocator().Regions() {
		_ = table.Append(
			strconv.Itoa(int(region.TaskID)),
			strconv.Itoa(region.Magnitude),
			strconv.Itoa(region.CellSize),
			strconv.Itoa(region.Len()),
			strconv.Itoa(s.resident(region)),
		)
	}
	return table.Render()
}

// resident counts the region cells currently held by the flux cache
func (s *Shell) resident(region *allocator.Region) int {
	flux := s.kernel.Allocator().Cache()
	count := 0
	for _, cell := range region.Cells {
		if flux.Contains(cell.Page) {
			count++
		}
	}
	return count
}

func (s *Shell) renderStats() error {
	counters := s.kernel.Progress()
	stats := s.kernel.Allocator().Cache().Stats()
	table := tablewriter.NewWriter(s.out)
	table.Header("Metric", "Value")
	rows := [][2]string{
		{"created", strconv.Itoa(counters.CreatedTasks)},
		{"admitted", strconv.Itoa(counters.AdmittedTasks)},
		{"dispatched", strconv.Itoa(counters.DispatchedTasks)},
		{"destroyed", strconv.Itoa(counters.DestroyedTasks)},
		{"live", strconv.Itoa(counters.Live())},
		{"new", strconv.Itoa(counters.NewTasks)},
		{"ready", strconv.Itoa(counters.ReadyTasks)},
		{"waiting", strconv.Itoa(counters.WaitingTasks)},
		{"page size", strconv.Itoa(s.kernel.PageSize())},
		{"flux hits", strconv.Itoa(stats.Hits)},
		{"flux misses", strconv.Itoa(stats.Misses)},
		{"flux evictions", strconv.Itoa(stats.Evictions)},
		{"flux hit ratio", strconv.FormatFloat(stats.HitRatio(), 'f', 2, 64)},
	}
	for _, row := range rows {
		_ = table.Append(row[0], row[1])
	}
	return table.Render()
}
