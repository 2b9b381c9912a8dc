package diagnostics

import (
	"math"
)

// DefaultAlpha is the significance level used when none is configured
const DefaultAlpha = 0.05

// Row status markers shown by the dashboard
const (
	StatusPass = "✔️"
	StatusFail = "❌"
)

// Decision table method names
const (
	MethodLevene      = "Levene"
	MethodShapiroA    = "Shapiro group A"
	MethodShapiroB    = "Shapiro group B"
	MethodTTest       = "T-test"
	MethodWelch       = "Welch t-test"
	MethodResampling  = "Resampling"
	MethodMannWhitney = "Mann-Whitney"
)

// DecisionRow is one line of the decision table. PValue is nil when the
// diagnostic could not be computed.
type DecisionRow struct {
	Method      string   `json:"method"`
	PValue      *float64 `json:"p_value"`
	Passed      bool     `json:"passed"`
	Status      string   `json:"status"`
	Information string   `json:"information"`
	Error       string   `json:"error,omitempty"`
}

// DecisionTable combines the closed-form diagnostics with a resampling p-value
type DecisionTable struct {
	Alpha float64       `json:"alpha"`
	Rows  []DecisionRow `json:"rows"`
}

// Row returns the row for method, or nil
func (t *DecisionTable) Row(method string) *DecisionRow {
	for i := range t.Rows {
		if t.Rows[i].Method == method {
			return &t.Rows[i]
		}
	}
	return nil
}

type outcome struct {
	p   float64
	err error
}

func (o outcome) below(alpha float64) bool { return o.err == nil && o.p < alpha }
func (o outcome) above(alpha float64) bool { return o.err == nil && o.p > alpha }

// BuildDecisionTable runs Levene, Shapiro-Wilk on each group, Student's and
// Welch's t-tests and Mann-Whitney on groupA and groupB and combines them with
// resamplingP.
// A diagnostic that fails to compute is reported as a failing row rather than
// failing the table.
func BuildDecisionTable(groupA, groupB []float64, resamplingP, alpha float64) *DecisionTable {
	if alpha <= 0 || alpha >= 1 || math.IsNaN(alpha) {
		alpha = DefaultAlpha
	}

	var levene, shapiroA, shapiroB, tTest, welch, mannWhitney outcome

	if res, err := Levene(groupA, groupB); err != nil {
		levene.err = err
	} else {
		levene.p = res.PValue
	}
	if res, err := ShapiroWilk(groupA); err != nil {
		shapiroA.err = err
	} else {
		shapiroA.p = res.PValue
	}
	if res, err := ShapiroWilk(groupB); err != nil {
		shapiroB.err = err
	} else {
		shapiroB.p = res.PValue
	}
	if res, err := StudentTTest(groupA, groupB); err != nil {
		tTest.err = err
	} else {
		tTest.p = res.PValue
	}
	if res, err := WelchTTest(groupA, groupB); err != nil {
		welch.err = err
	} else {
		welch.p = res.PValue
	}
	if res, err := MannWhitney(groupA, groupB); err != nil {
		mannWhitney.err = err
	} else {
		mannWhitney.p = res.PValue
	}
	resampling := outcome{p: resamplingP}

	normal := shapiroA.above(alpha) && shapiroB.above(alpha)
	assumptionsHold := normal && levene.above(alpha)

	return &DecisionTable{
		Alpha: alpha,
		Rows: []DecisionRow{
			newRow(MethodLevene, levene, levene.above(alpha), "Groups from same variance population"),
			newRow(MethodShapiroA, shapiroA, shapiroA.above(alpha), "Group A drawn from Normal distribution"),
			newRow(MethodShapiroB, shapiroB, shapiroB.above(alpha), "Group B drawn from Normal distribution"),
			newRow(MethodTTest, tTest, tTest.below(alpha) && assumptionsHold, "Reject null hypothesis (Levene & Shapiro OK)"),
			newRow(MethodWelch, welch, welch.below(alpha) && normal, "Reject null hypothesis (Shapiro OK)"),
			newRow(MethodResampling, resampling, resampling.below(alpha), "Reject null hypothesis (Non-parametric)"),
			newRow(MethodMannWhitney, mannWhitney, mannWhitney.below(alpha), "Reject null hypothesis (rank-based)"),
		},
	}
}

func newRow(method string, o outcome, passed bool, info string) DecisionRow {
	row := DecisionRow{
		Method:      method,
		Passed:      passed,
		Status:      StatusFail,
		Information: info,
	}
	if passed {
		row.Status = StatusPass
	}
	if o.err != nil {
		row.Error = o.err.Error()
		return row
	}
	p := o.p
	row.PValue = &p
	return row
}
