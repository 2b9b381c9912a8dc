package battery

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"statlab/domain/core"
	"statlab/domain/permutation"
	"statlab/internal"
	"statlab/ports"
)

// PermutationEngine runs Monte Carlo permutation tests. It pools the samples,
// reshuffles the pooled buffer once per trial, re-splits it into groups of the
// original sizes and recomputes the statistic to build the null distribution.
//
// Trials run sequentially on the calling goroutine.
type PermutationEngine struct {
	rngPort ports.RNGPort
	logger  *internal.Logger
}

var _ ports.BatteryPort = (*PermutationEngine)(nil)

// NewPermutationEngine creates an engine drawing randomness from rngPort
func NewPermutationEngine(rngPort ports.RNGPort, logger *internal.Logger) *PermutationEngine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PermutationEngine{
		rngPort: rngPort,
		logger:  logger.WithComponent("PermutationEngine"),
	}
}

// Run executes the permutation test described by req.
//
// Invalid input is rejected before any trial runs. A statistic error, on the
// observed grouping or on any trial, aborts the whole run and is returned
// wrapped in core.ErrStatistic. The context is checked between trials.
func (pe *PermutationEngine) Run(ctx context.Context, req permutation.Request) (*permutation.Result, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = "permutation-test"
	}
	tail := req.Tail
	if tail == "" {
		tail = permutation.TailTwoSided
	}

	start := time.Now()
	result, err := pe.run(ctx, name, tail, req)
	elapsed := time.Since(start)

	if err != nil {
		permutationRunsTotal.WithLabelValues(name, "error").Inc()
		pe.logger.Warn("%s aborted after %s: %v", name, elapsed, err)
		return nil, err
	}

	permutationRunsTotal.WithLabelValues(name, "ok").Inc()
	permutationTrialsTotal.WithLabelValues(name).Add(float64(result.Trials))
	permutationDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	pe.logger.Debug("%s: %d trials in %s, observed=%.6g p=%.4f", name, result.Trials, elapsed, result.Observed, result.PValue)

	return result, nil
}

func (pe *PermutationEngine) run(ctx context.Context, name string, tail permutation.Tail, req permutation.Request) (*permutation.Result, error) {
	observed, err := evaluate(req.Statistic, req.Samples)
	if err != nil {
		return nil, core.NewStatisticError("observed statistic", err)
	}

	rng, err := pe.rngPort.SeededStream(ctx, name, req.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create RNG stream for %s: %w", name, err)
	}

	pool := newPool(req.Samples)
	groups := make([]permutation.Sample, len(pool.sizes))
	nullDistribution := make([]float64, 0, req.Trials)

	for i := 0; i < req.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pool.shuffle(rng)
		pool.split(groups)

		value, err := evaluate(req.Statistic, groups)
		if err != nil {
			return nil, core.NewStatisticError(fmt.Sprintf("trial %d", i+1), err)
		}
		nullDistribution = append(nullDistribution, value)

		if req.Progress != nil {
			req.Progress(i+1, req.Trials)
		}
	}

	pValue, extreme := EmpiricalPValue(observed, nullDistribution, tail)

	return &permutation.Result{
		RunID:            core.NewRunID(),
		Name:             name,
		Observed:         observed,
		NullDistribution: nullDistribution,
		PValue:           pValue,
		ExtremeCount:     extreme,
		Trials:           req.Trials,
		Tail:             tail,
		Seed:             req.Seed,
		GroupSizes:       append([]int(nil), pool.sizes...),
		Fingerprint:      fingerprint(name, tail, req),
		CompletedAt:      core.Now(),
	}, nil
}

// ValidateRequest checks every precondition of a permutation test
func ValidateRequest(req permutation.Request) error {
	if req.Statistic == nil {
		return core.ErrNilStatistic
	}
	if len(req.Samples) < 2 {
		return fmt.Errorf("%w: got %d", core.ErrTooFewSamples, len(req.Samples))
	}
	for i, sample := range req.Samples {
		if len(sample) == 0 {
			return fmt.Errorf("%w: sample %d has no observations", core.ErrEmptySample, i)
		}
		for j, v := range sample {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: sample %d position %d is %v", core.ErrNonFiniteValue, i, j, v)
			}
		}
	}
	if req.Trials < 1 || req.Trials > permutation.MaxTrials {
		return fmt.Errorf("%w: %d not in [1, %d]", core.ErrInvalidTrials, req.Trials, permutation.MaxTrials)
	}
	switch req.Tail {
	case "", permutation.TailTwoSided, permutation.TailGreater, permutation.TailLess,
		permutation.TailGreaterStrict, permutation.TailLessStrict:
	default:
		return core.NewValidationError("tail", string(req.Tail))
	}
	return nil
}

// EmpiricalPValue returns the fraction of null values at least as extreme as
// observed for the given tail, along with the raw count.
func EmpiricalPValue(observed float64, nullDistribution []float64, tail permutation.Tail) (float64, int) {
	if len(nullDistribution) == 0 {
		return 1.0, 0
	}

	extremeCount := 0
	for _, nullStat := range nullDistribution {
		switch tail {
		case permutation.TailGreater:
			if nullStat >= observed {
				extremeCount++
			}
		case permutation.TailLess:
			if nullStat <= observed {
				extremeCount++
			}
		case permutation.TailGreaterStrict:
			if nullStat > observed {
				extremeCount++
			}
		case permutation.TailLessStrict:
			if nullStat < observed {
				extremeCount++
			}
		default:
			if math.Abs(nullStat) >= math.Abs(observed) {
				extremeCount++
			}
		}
	}

	return float64(extremeCount) / float64(len(nullDistribution)), extremeCount
}

// fingerprint identifies the input of a run: same fingerprint, same null distribution
func fingerprint(name string, tail permutation.Tail, req permutation.Request) core.Hash {
	groups := make([][]float64, len(req.Samples))
	for i, s := range req.Samples {
		groups[i] = s
	}
	labels := []string{name, string(tail), strconv.Itoa(req.Trials), strconv.FormatInt(req.Seed, 10)}
	return core.InputFingerprint(labels, groups)
}

func evaluate(statistic permutation.Statistic, samples []permutation.Sample) (float64, error) {
	value, err := statistic(samples)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("statistic returned %v", value)
	}
	return value, nil
}

// pool is the concatenation of all samples. Only its order ever changes.
type pool struct {
	values []float64
	sizes  []int
}

func newPool(samples []permutation.Sample) *pool {
	total := 0
	for _, s := range samples {
		total += len(s)
	}

	p := &pool{
		values: make([]float64, 0, total),
		sizes:  make([]int, len(samples)),
	}
	for i, s := range samples {
		p.values = append(p.values, s...)
		p.sizes[i] = len(s)
	}
	return p
}

// shuffle applies a uniform Fisher-Yates permutation in place
func (p *pool) shuffle(rng *rand.Rand) {
	rng.Shuffle(len(p.values), func(i, j int) {
		p.values[i], p.values[j] = p.values[j], p.values[i]
	})
}

// split points dst at contiguous runs of the pool matching the original sizes.
// dst aliases the pool, so it is only valid until the next shuffle.
func (p *pool) split(dst []permutation.Sample) {
	offset := 0
	for i, size := range p.sizes {
		dst[i] = p.values[offset : offset+size : offset+size]
		offset += size
	}
}
