// Package shell interprets line oriented simulator scripts:
//
//	create 5 1        # burst 5, priority 1
//	submit 3
//	admit
//	dispatch SJF
//	show tasks
//
// Every command maps onto a kernel or allocator operation; per-ID commands
// report whether the operation was applied.
package shell

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/sync/errgroup"

	ossim "github.com/farxan99/OsSimulator"
	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/service/kernel"
)

// Shell executes commands against a simulator service
type Shell struct {
	service   *ossim.Service
	kernel    *kernel.Service
	out       io.Writer
	algorithm string
	progress  bool
	trace     bool
	colors    bool
	mux       sync.Mutex

	bold   *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
}

// Option customises the shell
type Option func(s *Shell)

// WithColors enables ANSI colours
func WithColors(enabled bool) Option {
	return func(s *Shell) {
		s.colors = enabled
	}
}

// WithProgress renders a progress bar for batch dispatch
func WithProgress(enabled bool) Option {
	return func(s *Shell) {
		s.progress = enabled
	}
}

// WithTrace echoes kernel and cache events as JSON lines after each command
func WithTrace(enabled bool) Option {
	return func(s *Shell) {
		s.trace = enabled
	}
}

// New creates a shell writing to out
func New(service *ossim.Service, out io.Writer, opts ...Option) *Shell {
	ret := &Shell{
		service:   service,
		kernel:    service.Runtime().Kernel(),
		out:       out,
		algorithm: service.Config().Kernel.Algorithm,
		bold:      color.New(color.Bold),
		green:     color.New(color.FgGreen),
		yellow:    color.New(color.FgYellow),
		red:       color.New(color.FgRed),
	}
	for _, opt := range opts {
		opt(ret)
	}
	for _, c := range []*color.Color{ret.bold, ret.green, ret.yellow, ret.red} {
		if ret.colors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return ret
}

// RunURL loads a script through the service resource loader and runs it
func (s *Shell) RunURL(ctx context.Context, URL string) error {
	script, ok, err := s.service.Meta().Load(ctx, URL)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("script not found: %v", URL)
	}
	return s.Run(ctx, script)
}

// Run parses and executes a script, stopping at the first failing command
func (s *Shell) Run(ctx context.Context, script []byte) error {
	commands, err := Parse(script)
	if err != nil {
		return err
	}
	for _, command := range commands {
		if err = s.Execute(ctx, command); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs a single command
func (s *Shell) Execute(ctx context.Context, command *Command) error {
	err := s.execute(ctx, command)
	if s.trace {
		s.flushEvents()
	}
	return err
}

func (s *Shell) execute(ctx context.Context, command *Command) error {
	switch command.Name {
	case "create", "submit":
		return s.create(ctx, command)
	case "destroy", "suspend", "resume", "block", "wakeup":
		return s.transition(ctx, command)
	case "priority":
		return s.priority(ctx, command)
	case "admit":
		s.printf(s.green, "Admitted %d task(s)\n", s.kernel.AdmitNewArrivals(ctx))
		return nil
	case "select":
		return s.selectTask(ctx, command)
	case "dispatch":
		return s.dispatch(ctx, command)
	case "run":
		return s.runAll(ctx, command)
	case "provision":
		return s.provision(ctx, command)
	case "evict":
		return s.evict()
	case "spawn":
		return s.spawn(ctx, command)
	case "show":
		return s.show(ctx, command)
	case "save":
		return s.save(ctx, command)
	case "trace":
		s.trace = command.StringOr(0, "on") != "off"
		return nil
	}
	return fmt.Errorf("line %d: unknown command %q", command.Line, command.Name)
}

func (s *Shell) create(ctx context.Context, command *Command) error {
	burst, err := command.Int(0)
	if err != nil {
		return err
	}
	priority, err := command.IntOr(1, 0)
	if err != nil {
		return err
	}
	arrival, err := command.IntOr(2, 0)
	if err != nil {
		return err
	}
	var id task.ID
	if command.Name == "submit" {
		id, err = s.kernel.Submit(ctx, burst, arrival, priority)
	} else {
		id, err = s.kernel.CreateTask(ctx, burst, arrival, priority)
	}
	if err != nil {
		return err
	}
	if created, ok := s.kernel.Task(ctx, id); ok {
		s.printf(s.green, "%v\n", created)
	}
	return nil
}

func (s *Shell) transition(ctx context.Context, command *Command) error {
	value, err := command.Int(0)
	if err != nil {
		return err
	}
	id := task.ID(value)
	var applied bool
	switch command.Name {
	case "destroy":
		applied = s.kernel.DestroyTask(ctx, id)
	case "suspend":
		applied = s.kernel.SuspendTask(ctx, id)
	case "resume":
		applied = s.kernel.ResumeTask(ctx, id)
	case "block":
		applied = s.kernel.BlockTask(ctx, id)
	case "wakeup":
		applied = s.kernel.WakeupTask(ctx, id)
	}
	s.report(command.Name, id, applied)
	return nil
}

func (s *Shell) priority(ctx context.Context, command *Command) error {
	value, err := command.Int(0)
	if err != nil {
		return err
	}
	priority, err := command.Int(1)
	if err != nil {
		return err
	}
	s.report(command.Name, task.ID(value), s.kernel.ChangePriority(ctx, task.ID(value), priority))
	return nil
}

func (s *Shell) report(operation string, id task.ID, applied bool) {
	if applied {
		s.printf(s.green, "%v %d: applied\n", operation, id)
		return
	}
	s.printf(s.yellow, "%v %d: no-op\n", operation, id)
}

func (s *Shell) selectTask(ctx context.Context, command *Command) error {
	selected, err := s.kernel.Select(ctx, command.StringOr(0, s.algorithm))
	if err != nil {
		return err
	}
	if selected == nil {
		s.printf(s.yellow, "No task selected\n")
		return nil
	}
	s.printf(s.green, "Selected %v\n", selected)
	return nil
}

func (s *Shell) dispatch(ctx context.Context, command *Command) error {
	dispatched, err := s.kernel.DispatchOne(ctx, command.StringOr(0, s.algorithm))
	if err != nil {
		return err
	}
	if dispatched == nil {
		s.printf(s.yellow, "No task selected\n")
		return nil
	}
	s.printf(s.green, "Dispatched %v\n", dispatched)
	return nil
}

// runAll dispatches until the ready queue is empty
func (s *Shell) runAll(ctx context.Context, command *Command) error {
	algorithm := command.StringOr(0, s.algorithm)
	pending := len(s.kernel.ReadyQueue())
	var bar *progressbar.ProgressBar
	if s.progress && pending > 0 {
		bar = progressbar.NewOptions(pending,
			progressbar.OptionSetWriter(s.out),
			progressbar.OptionSetDescription("Dispatching "+algorithm),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionEnableColorCodes(s.colors),
		)
	}
	count := 0
	for {
		dispatched, err := s.kernel.DispatchOne(ctx, algorithm)
		if err != nil {
			return err
		}
		if dispatched == nil {
			break
		}
		count++
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
		_, _ = fmt.Fprintln(s.out)
	}
	s.printf(s.green, "Dispatched %d task(s) with %v\n", count, algorithm)
	return nil
}

func (s *Shell) provision(ctx context.Context, command *Command) error {
	owner, err := command.Int(0)
	if err != nil {
		return err
	}
	magnitude, err := command.Int(1)
	if err != nil {
		return err
	}
	region, err := s.kernel.Allocator().Provision(ctx, task.ID(owner), magnitude)
	if err != nil {
		return err
	}
	s.printf(s.green, "Provisioned %d cell(s) for %d\n", region.Len(), owner)
	return nil
}

func (s *Shell) evict() error {
	victim, ok := s.kernel.Allocator().Cache().Evict()
	if !ok {
		s.printf(s.yellow, "Flux cache is empty\n")
		return nil
	}
	s.printf(s.green, "Flux Shift: Expelled %v (owner %d)\n", victim.Key, victim.Owner)
	return nil
}

// spawn creates count tasks from a bounded group of concurrent workers
func (s *Shell) spawn(ctx context.Context, command *Command) error {
	count, err := command.Int(0)
	if err != nil {
		return err
	}
	workers, err := command.IntOr(1, 1)
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < count; i++ {
		burst := i%10 + 1
		arrival := i
		g.Go(func() error {
			_, err := s.kernel.CreateTask(ctx, burst, arrival, 0)
			return err
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}
	s.printf(s.green, "Spawned %d task(s) with %d worker(s)\n", count, workers)
	return nil
}

func (s *Shell) save(ctx context.Context, command *Command) error {
	if len(command.Args) == 0 {
		return fmt.Errorf("line %d: save: missing location", command.Line)
	}
	data, err := sonnet.Marshal(s.snapshot(ctx))
	if err != nil {
		return err
	}
	location := command.Args[0].Text
	if err = s.service.Meta().Upload(ctx, location, data); err != nil {
		return err
	}
	s.printf(s.green, "Saved snapshot to %v\n", location)
	return nil
}

// flushEvents prints every pending event of the untyped stream as JSON
func (s *Shell) flushEvents() {
	for _, e := range s.service.Events().Drain() {
		data, err := sonnet.Marshal(e)
		if err != nil {
			continue
		}
		s.mux.Lock()
		_, _ = fmt.Fprintf(s.out, "%s\n", data)
		s.mux.Unlock()
	}
}

func (s *Shell) printf(c *color.Color, format string, args ...interface{}) {
	s.mux.Lock()
	defer s.mux.Unlock()
	_, _ = c.Fprintf(s.out, format, args...)
}
