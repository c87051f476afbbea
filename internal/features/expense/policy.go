package expense

import (
	"context"
	"fmt"

	"github.com/d5/tengo/v2"
)

// EvaluatePolicy runs one policy script against an expense. The script
// sees amount, category, currency, project_id and submitter_role and must
// assign the boolean `approve`. A script that fails to compile or run
// counts as "no approval" rather than failing the submission.
func EvaluatePolicy(ctx context.Context, policy *ApprovalPolicy, exp *Expense, submitterRole string) (bool, error) {
	script := tengo.NewScript([]byte(policy.Expression))

	script.Add("amount", exp.Amount)
	script.Add("category", exp.Category)
	script.Add("currency", exp.Currency)
	script.Add("project_id", exp.ProjectID)
	script.Add("submitter_role", submitterRole)

	compiled, err := script.RunContext(ctx)
	if err != nil {
		return false, fmt.Errorf("policy %q: %w", policy.Name, err)
	}

	return compiled.Get("approve").Bool(), nil
}
