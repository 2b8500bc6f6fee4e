package sema

import (
	"context"
	"fmt"

	"tern/internal/ast"
	"tern/internal/trace"
)

// Stage is one step of the analysis after Declare.
type Stage struct {
	Name string
	Run  func(context.Context, *Graph) *Graph
}

// Stages lists the steps Analyze runs after Declare, in order.
var Stages = []Stage{
	{Name: "shuffle", Run: Shuffle},
	{Name: "qualify", Run: Qualify},
	{Name: "order", Run: Order},
	{Name: "check", Run: Check},
	{Name: "bind", Run: Bind},
}

// Result holds the graph after every stage that ran, Declare first.
type Result struct {
	Graphs []*Graph
}

// Final is the graph of the last stage that ran.
func (r Result) Final() *Graph {
	return r.Graphs[len(r.Graphs)-1]
}

// Stage returns the graph produced by the named stage.
func (r Result) Stage(name string) (*Graph, bool) {
	for _, g := range r.Graphs {
		if g.Stage == name {
			return g, true
		}
	}
	return nil, false
}

// Analyze runs every stage over unit. stopAfter names the last stage to
// run; empty runs them all. Stages keep running after errors: every stage
// tolerates the placeholders earlier stages leave behind.
func Analyze(ctx context.Context, unit *ast.Unit, opts Options, stopAfter string) (Result, error) {
	if stopAfter != "" && stopAfter != "declare" && !knownStage(stopAfter) {
		return Result{}, fmt.Errorf("unknown stage %q", stopAfter)
	}
	ctx, span := trace.Start(ctx, trace.ScopeUnit, "unit:"+unit.Name)
	defer span.End("")

	g := Declare(ctx, unit, opts)
	res := Result{Graphs: []*Graph{g}}
	if stopAfter == "declare" {
		return res, nil
	}
	for _, st := range Stages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		g = st.Run(ctx, g)
		res.Graphs = append(res.Graphs, g)
		if st.Name == stopAfter {
			break
		}
	}
	span.WithExtra("diagnostics", fmt.Sprint(g.Bag.Len()))
	return res, nil
}

func knownStage(name string) bool {
	for _, st := range Stages {
		if st.Name == name {
			return true
		}
	}
	return false
}
