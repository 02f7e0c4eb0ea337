package mockserver

import (
	"github.com/form3tech-oss/mock-server/internal/app/metrics"
	log "github.com/sirupsen/logrus"
)

type Outcome int

const (
	NotFound Outcome = iota
	Matched
)

func (o Outcome) String() string {
	if o == Matched {
		return metrics.OutcomeMatched
	}
	return metrics.OutcomeNotFound
}

type DispatchResult struct {
	Outcome  Outcome
	File     string
	Response PlannedResponse
}

type Dispatcher struct {
	matcher *Matcher
}

func NewDispatcher(matcher *Matcher) *Dispatcher {
	return &Dispatcher{matcher: matcher}
}

// Dispatch resolves a request to a planned response. Any failure to read the
// fixture directory is reported as NotFound.
func (d *Dispatcher) Dispatch(req RequestDescriptor) DispatchResult {
	fixture, err := d.matcher.Match(req)
	if err != nil {
		log.Errorf("unable to match '%s %s'. %s", req.Method, req.Path, err.Error())
		return DispatchResult{Outcome: NotFound}
	}
	if fixture == nil {
		return DispatchResult{Outcome: NotFound}
	}

	return DispatchResult{
		Outcome:  Matched,
		File:     fixture.File,
		Response: Plan(fixture),
	}
}
