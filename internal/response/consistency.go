package response

import (
	"fmt"
	"math"

	"github.com/russellconstruction9/RRsolutions/internal/currency"
)

// Finding codes reported by CheckBudget.
const (
	FindingLineItemSum     = "line_item_sum"
	FindingSubtotal        = "subtotal_mismatch"
	FindingTotal           = "total_mismatch"
	FindingFilenameBudget  = "filename_budget_mismatch"
	defaultBudgetTolerance = 0.01
)

// Finding is one arithmetic inconsistency in a generated budget.
type Finding struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CheckOptions tunes CheckBudget.
type CheckOptions struct {
	// Tolerance is the allowed difference in dollars. Zero means one cent.
	Tolerance float64
	// ExpectedTotal is the authoritative total, when one is known.
	ExpectedTotal *float64
}

// CheckBudget verifies the budget adds up. Absent amounts are skipped, never
// treated as zero, except that a missing sales tax or overhead line counts as
// nothing added to the subtotal.
func CheckBudget(b *ProjectBudget, opts CheckOptions) []Finding {
	if b == nil {
		return nil
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = defaultBudgetTolerance
	}
	off := func(a, b float64) bool { return math.Abs(a-b) > tol }

	var findings []Finding

	var sum float64
	allTotals := len(b.LineItems) > 0
	for i, it := range b.LineItems {
		if it.TotalBudget.Valid {
			sum += it.TotalBudget.Value
		} else {
			allTotals = false
		}
		if it.MaterialBudget.Valid && it.LaborBudget.Valid && it.TotalBudget.Valid {
			parts := it.MaterialBudget.Value + it.LaborBudget.Value
			if off(parts, it.TotalBudget.Value) {
				findings = append(findings, Finding{
					Code: FindingLineItemSum,
					Message: fmt.Sprintf("line item %d (%s): material %s + labor %s = %s, but total is %s",
						i+1, it.Category.Or("unnamed"), it.MaterialBudget, it.LaborBudget,
						currency.Format(parts), it.TotalBudget),
				})
			}
		}
	}

	if allTotals && b.Subtotal.Valid && off(sum, b.Subtotal.Value) {
		findings = append(findings, Finding{
			Code: FindingSubtotal,
			Message: fmt.Sprintf("line items sum to %s, but subtotal is %s",
				currency.Format(sum), b.Subtotal),
		})
	}

	if b.Subtotal.Valid && b.TotalProjectBudget.Valid {
		expected := b.Subtotal.Value
		if b.SalesTax.Valid {
			expected += b.SalesTax.Value
		}
		if b.OverheadAndProfit.Valid {
			expected += b.OverheadAndProfit.Value
		}
		if off(expected, b.TotalProjectBudget.Value) {
			findings = append(findings, Finding{
				Code: FindingTotal,
				Message: fmt.Sprintf("subtotal + tax + overhead & profit = %s, but total is %s",
					currency.Format(expected), b.TotalProjectBudget),
			})
		}
	}

	if opts.ExpectedTotal != nil && b.TotalProjectBudget.Valid && off(*opts.ExpectedTotal, b.TotalProjectBudget.Value) {
		findings = append(findings, Finding{
			Code: FindingFilenameBudget,
			Message: fmt.Sprintf("total is %s, but the estimate filename names %s",
				b.TotalProjectBudget, currency.Format(*opts.ExpectedTotal)),
		})
	}

	return findings
}
