// Package optimize drives hyperparameter search candidates. Each
// candidate is one fully isolated simulation run; candidates share no
// mutable state, so they fan out across workers without locking.
package optimize

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/yanun0323/logs"

	"main/internal/engine"
	"main/internal/hyper"
)

// ErrUnprofitableBaseline reports a base strategy whose validation run
// lost money; the search is not started for it.
var ErrUnprofitableBaseline = errors.New("baseline run has non-positive total P&L")

// Factory builds the isolated run for one DNA candidate.
type Factory func(dna string) (*engine.Engine, error)

// Candidate is one evaluated parameter set.
type Candidate struct {
	DNA     string
	Results *engine.Results
}

// Precheck runs the base strategy (empty DNA, declared defaults) and
// rejects the search when it is not profitable to begin with.
func Precheck(ctx context.Context, factory Factory) error {
	run, err := factory("")
	if err != nil {
		return err
	}
	results, err := run.Run(ctx)
	if err != nil {
		return err
	}
	if results.TotalPnL <= 0 {
		return ErrUnprofitableBaseline
	}
	return nil
}

// RandomDNA draws one gene string for the given specs.
func RandomDNA(specs []hyper.Spec, rng *rand.Rand) string {
	genes := make([]byte, len(specs))
	for i := range genes {
		genes[i] = byte(40 + rng.Intn(80))
	}
	return string(genes)
}

// Search evaluates n random candidates across the given number of
// workers and returns them ordered as completed, plus the best one by
// total P&L. Candidate runs that fail are logged and skipped.
func Search(ctx context.Context, specs []hyper.Spec, factory Factory, n, workers int, seed int64) ([]Candidate, *Candidate, error) {
	if len(specs) == 0 {
		return nil, nil, errors.New("strategy declares no hyperparameters")
	}
	if workers <= 0 {
		workers = 1
	}

	rng := rand.New(rand.NewSource(seed))
	jobs := make(chan string)
	out := make(chan Candidate)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dna := range jobs {
				run, err := factory(dna)
				if err != nil {
					logs.Warnf("candidate %q: build: %v", dna, err)
					continue
				}
				results, err := run.Run(ctx)
				if err != nil {
					logs.Warnf("candidate %q: run: %v", dna, err)
					continue
				}
				out <- Candidate{DNA: dna, Results: results}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- RandomDNA(specs, rng):
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	var candidates []Candidate
	var best *Candidate
	for c := range out {
		candidates = append(candidates, c)
		if best == nil || c.Results.TotalPnL > best.Results.TotalPnL {
			cc := c
			best = &cc
		}
	}

	if err := ctx.Err(); err != nil {
		return candidates, best, err
	}
	return candidates, best, nil
}
