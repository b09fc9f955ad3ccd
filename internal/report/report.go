// Package report aggregates batch results into per-policy summaries and
// renders regret trajectories.
package report

import (
	"github.com/spachava753/bestarm/internal/models"
)

// PolicySummary aggregates the completed runs of one policy.
type PolicySummary struct {
	Policy      models.PolicyKind `json:"policy"`
	Runs        int               `json:"runs"`
	Failures    int               `json:"failures"`
	StoppedRuns int               `json:"stopped_runs"`
	// StoppedFraction is the share of completed runs that stopped
	// voluntarily rather than timing out.
	StoppedFraction float64 `json:"stopped_fraction"`
	// CorrectRate is the share of completed runs identifying the true
	// best arm.
	CorrectRate float64 `json:"correct_rate"`
	MeanSteps   float64 `json:"mean_steps"`
	// MeanStepsToStop averages steps over stopped runs only; nil when no
	// run stopped.
	MeanStepsToStop *float64  `json:"mean_steps_to_stop"`
	MeanFinalRegret float64   `json:"mean_final_regret"`
	MeanPulls       []float64 `json:"mean_pulls"`
	// MeanRegretCurve is the mean cumulative-regret trajectory across
	// runs; shorter runs are extended by holding their final value.
	MeanRegretCurve []float64 `json:"mean_regret_curve"`
}

// BatchReport is the aggregate view of one batch, in configured policy order.
type BatchReport struct {
	BatchID  string                  `json:"batch_id"`
	Name     string                  `json:"name"`
	Truth    models.EnvironmentTruth `json:"environment"`
	Policies []PolicySummary         `json:"policies"`
}

// Build aggregates a batch into its report.
func Build(batch *models.BatchResult) *BatchReport {
	rep := &BatchReport{
		BatchID:  batch.BatchID,
		Name:     batch.Name,
		Truth:    batch.Truth,
		Policies: make([]PolicySummary, 0, len(batch.Policies)),
	}

	failuresByPolicy := make(map[models.PolicyKind]int)
	for _, f := range batch.Failures {
		failuresByPolicy[f.Policy]++
	}

	for _, kind := range batch.Policies {
		runs := batch.Results[kind]
		ps := PolicySummary{
			Policy:   kind,
			Runs:     len(runs),
			Failures: failuresByPolicy[kind],
		}

		if len(runs) == 0 {
			rep.Policies = append(rep.Policies, ps)
			continue
		}

		k := len(batch.Truth.TrueMeans)
		ps.MeanPulls = make([]float64, k)

		var totalSteps, stopSteps int
		var correct int
		var totalFinalRegret float64
		maxSteps := 0

		for _, r := range runs {
			totalSteps += r.Steps
			if r.Stopped {
				ps.StoppedRuns++
				stopSteps += r.Steps
			}
			if r.BestArm != nil && *r.BestArm == batch.Truth.BestArm {
				correct++
			}
			for a, n := range r.Pulls {
				ps.MeanPulls[a] += float64(n)
			}
			if len(r.CumulativeRegrets) > 0 {
				totalFinalRegret += r.CumulativeRegrets[len(r.CumulativeRegrets)-1]
			}
			if r.Steps > maxSteps {
				maxSteps = r.Steps
			}
		}

		n := float64(len(runs))
		ps.StoppedFraction = float64(ps.StoppedRuns) / n
		ps.CorrectRate = float64(correct) / n
		ps.MeanSteps = float64(totalSteps) / n
		ps.MeanFinalRegret = totalFinalRegret / n
		for a := range ps.MeanPulls {
			ps.MeanPulls[a] /= n
		}
		if ps.StoppedRuns > 0 {
			mean := float64(stopSteps) / float64(ps.StoppedRuns)
			ps.MeanStepsToStop = &mean
		}

		ps.MeanRegretCurve = meanCurve(runs, maxSteps)

		rep.Policies = append(rep.Policies, ps)
	}

	return rep
}

// meanCurve averages regret trajectories step-wise. A run that ended before
// maxSteps contributes its final cumulative regret for the remaining steps,
// the standard convention for stopped runs.
func meanCurve(runs []models.RunResult, maxSteps int) []float64 {
	if maxSteps == 0 {
		return nil
	}

	curve := make([]float64, maxSteps)
	for _, r := range runs {
		final := 0.0
		if len(r.CumulativeRegrets) > 0 {
			final = r.CumulativeRegrets[len(r.CumulativeRegrets)-1]
		}
		for t := 0; t < maxSteps; t++ {
			if t < len(r.CumulativeRegrets) {
				curve[t] += r.CumulativeRegrets[t]
			} else {
				curve[t] += final
			}
		}
	}

	n := float64(len(runs))
	for t := range curve {
		curve[t] /= n
	}
	return curve
}
