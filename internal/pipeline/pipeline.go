// Package pipeline drives the analysis of several units: it reads them,
// orders them by their imports, analyses independent units in parallel and
// feeds the interfaces of finished units to the ones that import them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/iface"
	"tern/internal/observ"
	"tern/internal/project"
	"tern/internal/sema"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/trace"
	"tern/internal/types"
	"tern/internal/unitfile"
)

// Options configure Run.
type Options struct {
	Jobs           int // 0 = GOMAXPROCS
	MaxDiagnostics int
	Prelude        []string
	InterfaceDirs  []string
	// EmitDir receives the interface file of every analysed module when set.
	EmitDir string
	// StopAfter ends every unit's analysis after the named stage. Interfaces
	// are only exported from fully analysed units.
	StopAfter string
	Progress  ProgressSink
	Timer     *observ.Timer
}

// UnitResult is everything known about one unit after the run.
type UnitResult struct {
	Path       string
	Meta       project.UnitMeta
	Unit       *ast.Unit
	Analysis   sema.Result
	Interfaces []*iface.File
	// Bag holds the unit's diagnostics, deduplicated and sorted.
	Bag     *diag.Bag
	Skipped bool
	Elapsed time.Duration

	pre  *diag.Bag // reading and ordering problems
	node int       // index in the unit graph, -1 when absent
}

// Graph returns the last graph built for the unit, nil when it was never
// analysed.
func (u *UnitResult) Graph() *sema.Graph {
	if len(u.Analysis.Graphs) == 0 {
		return nil
	}
	return u.Analysis.Final()
}

func (u *UnitResult) HasErrors() bool {
	return u.Bag != nil && u.Bag.HasErrors()
}

// Result of one run. Units keep the order of the paths given to Run.
type Result struct {
	RunID      string
	FileSet    *source.FileSet
	Units      []*UnitResult
	Batches    [][]int // indices into Units
	Interfaces []*iface.File
}

func (r *Result) HasErrors() bool {
	for _, u := range r.Units {
		if u.HasErrors() {
			return true
		}
	}
	return false
}

// Diagnostics lists every unit's diagnostics, unit by unit.
func (r *Result) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, u := range r.Units {
		if u.Bag != nil {
			out = append(out, u.Bag.Items()...)
		}
	}
	return out
}

// ErrorCount counts error diagnostics over all units.
func (r *Result) ErrorCount() int {
	n := 0
	for _, u := range r.Units {
		if u.Bag != nil {
			n += u.Bag.ErrorCount()
		}
	}
	return n
}

type runner struct {
	opts     Options
	sink     ProgressSink
	res      *Result
	resolver *symbols.MapResolver
	gen      *types.VarGen
	graph    *unitGraph
}

// Run analyses the units stored at paths. Problems in the units are
// diagnostics; the returned error is reserved for I/O failures around them
// (interface directories, emitted interfaces) and cancellation.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	runID := trace.FromContext(ctx).RunID()
	if runID == "" {
		runID = trace.NewRunID()
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "check")
	span.WithExtra("run_id", runID).WithExtra("units", strconv.Itoa(len(paths)))
	defer span.End("")

	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	r := &runner{
		opts:     opts,
		sink:     opts.Progress,
		res:      &Result{RunID: runID, FileSet: source.NewFileSet()},
		resolver: symbols.NewMapResolver(),
		gen:      types.NewVarGen(),
	}
	if r.sink == nil {
		r.sink = nopSink{}
	}
	for _, p := range paths {
		r.res.Units = append(r.res.Units, &UnitResult{Path: p, pre: diag.NewBag(opts.MaxDiagnostics), node: -1})
		r.sink.OnEvent(Event{Unit: p, Stage: StageRead, Status: StatusQueued})
	}

	if err := r.loadInterfaces(ctx); err != nil {
		return nil, err
	}
	r.read(ctx)
	r.order(ctx)
	if err := r.analyze(ctx); err != nil {
		return nil, err
	}
	r.finish()
	return r.res, nil
}

func (r *runner) loadInterfaces(ctx context.Context) error {
	_, span := trace.Start(ctx, trace.ScopeStage, "interfaces")
	idx := r.opts.Timer.Begin("interfaces")
	for _, dir := range r.opts.InterfaceDirs {
		files, err := iface.LoadDir(r.resolver, dir)
		if err != nil {
			r.opts.Timer.End(idx, "error")
			span.End("error")
			return err
		}
		r.res.Interfaces = append(r.res.Interfaces, files...)
	}
	note := fmt.Sprintf("files=%d", len(r.res.Interfaces))
	r.opts.Timer.End(idx, note)
	span.End(note)
	return nil
}

func (r *runner) read(ctx context.Context) {
	_, span := trace.Start(ctx, trace.ScopeStage, "read")
	idx := r.opts.Timer.Begin("read")
	failed := 0
	for _, u := range r.res.Units {
		start := time.Now()
		r.sink.OnEvent(Event{Unit: u.Path, Stage: StageRead, Status: StatusWorking})
		if err := r.readUnit(u); err != nil {
			failed++
			u.Skipped = true
			r.sink.OnEvent(Event{Unit: u.Path, Stage: StageRead, Status: StatusError, Err: err, Elapsed: time.Since(start)})
			continue
		}
		u.Elapsed += time.Since(start)
	}
	note := fmt.Sprintf("units=%d failed=%d", len(r.res.Units), failed)
	r.opts.Timer.End(idx, note)
	span.End(note)
}

func (r *runner) readUnit(u *UnitResult) error {
	fs := r.res.FileSet
	id, err := fs.Load(u.Path)
	if err != nil {
		// пустой виртуальный файл, чтобы у диагностики был путь
		stub := fs.AddVirtual(u.Path, nil)
		u.pre.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: stub}, "failed to load file: "+err.Error()))
		return err
	}
	unit, err := unitfile.Read(fs, id)
	if err != nil {
		var ue *unitfile.Error
		if errors.As(err, &ue) {
			u.pre.Add(diag.NewError(diag.IODecodeError, ue.Span, ue.Message))
		} else {
			u.pre.Add(diag.NewError(diag.IODecodeError, source.Span{File: id}, err.Error()))
		}
		return err
	}
	u.Unit = unit
	u.Meta = project.DescribeUnit(unit, u.Path, fs.Get(id).Content)
	return nil
}

func (r *runner) order(ctx context.Context) {
	_, span := trace.Start(ctx, trace.ScopeStage, "order")
	idx := r.opts.Timer.Begin("order")
	r.graph = buildUnitGraph(r.res.Units)
	r.res.Batches = r.graph.batches
	for _, ui := range r.graph.skipped {
		u := r.res.Units[ui]
		u.Skipped = true
		r.sink.OnEvent(Event{Unit: u.Path, Stage: StageOrder, Status: StatusSkipped})
	}
	note := fmt.Sprintf("batches=%d", len(r.res.Batches))
	r.opts.Timer.End(idx, note)
	span.End(note)
}

func (r *runner) analyze(ctx context.Context) error {
	ctx, span := trace.Start(ctx, trace.ScopeStage, "analyze")
	defer span.End("")
	for n, batch := range r.res.Batches {
		bctx, bspan := trace.Start(ctx, trace.ScopeStage, "batch "+strconv.Itoa(n))
		err := r.analyzeBatch(bctx, batch)
		bspan.End(fmt.Sprintf("units=%d", len(batch)))
		if err != nil {
			return err
		}
		for _, ui := range batch {
			if err := r.export(r.res.Units[ui]); err != nil {
				return err
			}
		}
	}
	r.graph.reportBrokenDeps()
	return nil
}

func (r *runner) analyzeBatch(ctx context.Context, batch []int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(r.opts.Jobs, len(batch)))
	for _, ui := range batch {
		u := r.res.Units[ui]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			r.sink.OnEvent(Event{Unit: u.Path, Stage: StageAnalyze, Status: StatusWorking})
			idx := r.opts.Timer.Begin("analyze " + u.Meta.Name)
			res, err := sema.Analyze(gctx, u.Unit, sema.Options{
				Resolver:       r.resolver,
				Gen:            r.gen,
				Prelude:        r.opts.Prelude,
				MaxDiagnostics: r.opts.MaxDiagnostics,
			}, r.opts.StopAfter)
			if err != nil {
				r.opts.Timer.End(idx, "error")
				return fmt.Errorf("%s: %w", u.Path, err)
			}
			u.Analysis = res
			final := res.Final()
			r.opts.Timer.End(idx, fmt.Sprintf("defs=%d diags=%d", len(final.Defs), final.Bag.Len()))
			u.Elapsed += time.Since(start)
			return nil
		})
	}
	return g.Wait()
}

// export registers the unit's modules with the resolver so later batches
// can import them, and writes their interfaces when asked to.
func (r *runner) export(u *UnitResult) error {
	g := u.Graph()
	if g == nil {
		return nil
	}
	r.graph.settle(u, g)
	if r.opts.StopAfter != "" && g.Stage != "bind" {
		return nil
	}
	start := time.Now()
	r.sink.OnEvent(Event{Unit: u.Path, Stage: StageExport, Status: StatusWorking})
	files, err := iface.Export(g)
	if err != nil {
		return err
	}
	for _, f := range files {
		if !r.graph.owns(u, f.Module) {
			continue
		}
		if err := iface.Register(r.resolver, f); err != nil {
			return fmt.Errorf("%s: %w", u.Path, err)
		}
		if r.opts.EmitDir != "" {
			if err := iface.WriteFile(r.opts.EmitDir, f); err != nil {
				return fmt.Errorf("emit interface of %s: %w", f.Module, err)
			}
		}
		u.Interfaces = append(u.Interfaces, f)
	}
	u.Elapsed += time.Since(start)
	return nil
}

func (r *runner) finish() {
	for _, u := range r.res.Units {
		u.Bag = u.pre.Clone()
		if g := u.Graph(); g != nil {
			u.Bag.Merge(g.Bag)
		}
		u.Bag.Dedup()
		u.Bag.Sort()
		status := StatusDone
		switch {
		case u.Bag.HasErrors():
			status = StatusError
		case u.Skipped:
			status = StatusSkipped
		}
		r.sink.OnEvent(Event{Unit: u.Path, Stage: StageAnalyze, Status: status, Elapsed: u.Elapsed})
	}
}
