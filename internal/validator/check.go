package validator

import (
	"github.com/shopspring/decimal"

	"pajakos/internal/domain"
	"pajakos/internal/faktur"
)

// RateContext carries the detected document rate into row validation.
type RateContext struct {
	Rate decimal.Decimal
	Tier faktur.RateTier
}

// CheckResult is a single validation finding for one row field. Penalty is
// the multiplier applied to the row confidence when the check failed;
// penalties compound multiplicatively so several small issues stack but no
// single check zeroes out a row on its own.
type CheckResult struct {
	Passed    bool
	FieldPath string
	Expected  string
	Actual    string
	Message   string
	Penalty   float64
}

// RowCheck is a single built-in validation rule applied to every line item.
type RowCheck interface {
	Key() string
	Name() string
	Severity() domain.CheckSeverity
	Apply(item *faktur.LineItem, rc RateContext) []CheckResult
}

// rowCheck is the shared implementation backing the built-in checks.
type rowCheck struct {
	key      string
	name     string
	severity domain.CheckSeverity
	apply    func(item *faktur.LineItem, rc RateContext) []CheckResult
}

func (c *rowCheck) Key() string                    { return c.key }
func (c *rowCheck) Name() string                   { return c.name }
func (c *rowCheck) Severity() domain.CheckSeverity { return c.severity }

func (c *rowCheck) Apply(item *faktur.LineItem, rc RateContext) []CheckResult {
	return c.apply(item, rc)
}

func fmtAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
