package conformance

import (
	"context"
	"time"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teenytinyai/teenytiny-conformance/openai"
)

// Target carries the immutable configuration every scenario receives: where
// the server under test lives and which credential opens it.
type Target struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client builds the default transport client for the target.
func (t Target) Client() *openai.Client {
	return openai.NewClient(t.BaseURL, t.APIKey, t.Timeout)
}

// ClientWithKey builds a client with a different credential. Scenarios use
// this instead of mutating a shared client.
func (t Target) ClientWithKey(apiKey string) *openai.Client {
	return openai.NewClient(t.BaseURL, apiKey, t.Timeout)
}

// Scenario is one independent conformance check: it either passes or
// returns a failure naming the invariant that broke.
type Scenario struct {
	Name string
	Run  func(ctx context.Context, target Target) error
}

// Suite is a named ordered batch of scenarios sharing a theme. Scenarios
// within a suite run one at a time and the suite aborts on its first
// failure; the remaining scenarios are reported as never run.
type Suite struct {
	Name      string
	Scenarios []Scenario
}

// State is the lifecycle of one scenario within a run.
type State string

const (
	StateNotRun State = "not run"
	StatePassed State = "passed"
	StateFailed State = "failed"
)

// Result is the outcome of one scenario.
type Result struct {
	Suite    string
	Scenario string
	State    State
	Kind     FailureKind
	Err      error
	Duration time.Duration
}

// Summary aggregates a run into counts; the run as a whole passes only when
// Failed and NotRun are both zero.
type Summary struct {
	Total  int
	Passed int
	Failed int
	NotRun int
}

// Summarize counts results per state.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, res := range results {
		switch res.State {
		case StatePassed:
			s.Passed++
		case StateFailed:
			s.Failed++
		default:
			s.NotRun++
		}
	}
	return s
}

// Runner executes suites against one target and aggregates results.
type Runner struct {
	Target Target
	Suites []Suite
	Logger glog.Logger
}

// Run executes the suites concurrently, since they share nothing mutable
// beyond the read-only target configuration, and returns results in suite
// order. Ordering within a suite is strictly sequential.
func (r *Runner) Run(ctx context.Context) []Result {
	perSuite := make([][]Result, len(r.Suites))

	grp, grpCtx := errgroup.WithContext(ctx)
	for i, suite := range r.Suites {
		grp.Go(func() error {
			perSuite[i] = r.runSuite(grpCtx, suite)
			return nil
		})
	}
	_ = grp.Wait()

	var results []Result
	for _, suiteResults := range perSuite {
		results = append(results, suiteResults...)
	}
	return results
}

func (r *Runner) runSuite(ctx context.Context, suite Suite) []Result {
	results := make([]Result, 0, len(suite.Scenarios))
	aborted := false

	for _, scenario := range suite.Scenarios {
		if aborted {
			results = append(results, Result{
				Suite:    suite.Name,
				Scenario: scenario.Name,
				State:    StateNotRun,
			})
			continue
		}

		start := time.Now()
		err := scenario.Run(ctx, r.Target)
		duration := time.Since(start)

		if err != nil {
			// Fail fast: the rest of this suite never runs.
			aborted = true
			results = append(results, Result{
				Suite:    suite.Name,
				Scenario: scenario.Name,
				State:    StateFailed,
				Kind:     KindOf(err),
				Err:      err,
				Duration: duration,
			})
			if r.Logger != nil {
				r.Logger.Warn("scenario failed",
					zap.String("suite", suite.Name),
					zap.String("scenario", scenario.Name),
					zap.String("kind", string(KindOf(err))),
					zap.Duration("duration", duration),
					zap.Error(err),
				)
			}
			continue
		}

		results = append(results, Result{
			Suite:    suite.Name,
			Scenario: scenario.Name,
			State:    StatePassed,
			Duration: duration,
		})
		if r.Logger != nil {
			r.Logger.Info("scenario passed",
				zap.String("suite", suite.Name),
				zap.String("scenario", scenario.Name),
				zap.Duration("duration", duration),
			)
		}
	}

	return results
}
