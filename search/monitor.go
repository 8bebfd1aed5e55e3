package search

import (
	"fmt"
	"io"

	"github.com/poiesic/dashboard/core"
)

// Monitor provides hooks to observe the ranking process.
// Implement this interface to trace which entries land in which tier and
// how the budget was chosen.
type Monitor interface {
	Start(query string)
	ExactHit(entry core.Entry)
	IncludeHit(entry core.Entry)
	Budget(matchedCategories, budget int)
	Finish(results []core.Entry)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)          {}
func (n *noopMonitor) ExactHit(_ core.Entry)   {}
func (n *noopMonitor) IncludeHit(_ core.Entry) {}
func (n *noopMonitor) Budget(_, _ int)         {}
func (n *noopMonitor) Finish(_ []core.Entry)   {}

// TraceMonitor writes a human readable trace of a search to a writer.
// Write errors are ignored.
type TraceMonitor struct {
	w io.Writer
}

var _ Monitor = (*TraceMonitor)(nil)

// NewTraceMonitor creates a TraceMonitor writing to w.
func NewTraceMonitor(w io.Writer) *TraceMonitor {
	return &TraceMonitor{w: w}
}

func (m *TraceMonitor) Start(query string) {
	fmt.Fprintf(m.w, "query %q\n", query)
}

func (m *TraceMonitor) ExactHit(entry core.Entry) {
	fmt.Fprintf(m.w, "  exact   %-14s %3d %s\n", entry.Category, entry.Id, entry.Title)
}

func (m *TraceMonitor) IncludeHit(entry core.Entry) {
	fmt.Fprintf(m.w, "  include %-14s %3d %s\n", entry.Category, entry.Id, entry.Title)
}

func (m *TraceMonitor) Budget(matchedCategories, budget int) {
	fmt.Fprintf(m.w, "  %d categories matched, budget %d\n", matchedCategories, budget)
}

func (m *TraceMonitor) Finish(results []core.Entry) {
	fmt.Fprintf(m.w, "  %d results\n", len(results))
}
