package flow

import "github.com/hupe1980/blogmesh/core"

// Next identifies the stage the runner executes after a controller visit.
type Next int

const (
	NextEnd Next = iota
	NextResearcher
	NextGenerator
)

func (n Next) String() string {
	switch n {
	case NextResearcher:
		return "researcher"
	case NextGenerator:
		return "generator"
	default:
		return "end"
	}
}

// Route selects the successor of the controller: a done record ends the
// run, the first iteration goes through research, later ones straight to
// generation.
func Route(s *core.State) Next {
	switch {
	case s.Route == core.RouteDone:
		return NextEnd
	case s.Iteration <= 1:
		return NextResearcher
	default:
		return NextGenerator
	}
}
