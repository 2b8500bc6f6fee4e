package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/pipeline"
)

func TestProgressModelTracksUnits(t *testing.T) {
	events := make(chan pipeline.Event)
	m := NewProgressModel("checking", []string{"a.unit.yaml", "b.unit.yaml"}, events).(*progressModel)

	m.Update(eventMsg(pipeline.Event{Unit: "a.unit.yaml", Stage: pipeline.StageAnalyze, Status: pipeline.StatusWorking}))
	require.Equal(t, "analysing", m.items[0].status)
	require.InDelta(t, 0.25, m.percent(), 1e-9)

	m.Update(eventMsg(pipeline.Event{Unit: "a.unit.yaml", Stage: pipeline.StageAnalyze, Status: pipeline.StatusDone}))
	m.Update(eventMsg(pipeline.Event{Unit: "b.unit.yaml", Stage: pipeline.StageOrder, Status: pipeline.StatusSkipped}))
	require.InDelta(t, 1.0, m.percent(), 1e-9)

	// неизвестный юнит игнорируется
	m.Update(eventMsg(pipeline.Event{Unit: "c.unit.yaml", Stage: pipeline.StageRead, Status: pipeline.StatusWorking}))

	m.Update(doneMsg{})
	view := m.View()
	require.Contains(t, view, "done: checking")
	require.Contains(t, view, "skipped")
	require.Contains(t, view, "a.unit.yaml")
	require.Contains(t, view, "2/2 units")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	long := truncate("long-unit-name", 7)
	require.True(t, strings.HasSuffix(long, "..."), long)
	require.LessOrEqual(t, len(long), 7)
	require.Equal(t, "日", truncate("日本語", 2))
}
