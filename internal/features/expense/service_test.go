package expense

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-opshub/internal/authz"
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestEvaluatePolicyApproves(t *testing.T) {
	policy := &ApprovalPolicy{
		Name:       "small-expenses",
		Expression: `approve := amount <= 100.0 && category != "travel"`,
	}
	exp := &Expense{Amount: 42.50, Category: "meals"}

	approved, err := EvaluatePolicy(context.Background(), policy, exp, "analyst")
	if err != nil {
		t.Fatalf("EvaluatePolicy() error = %v", err)
	}
	if !approved {
		t.Error("small non-travel expense should auto-approve")
	}
}

func TestEvaluatePolicyDenies(t *testing.T) {
	policy := &ApprovalPolicy{
		Name:       "small-expenses",
		Expression: `approve := amount <= 100.0 && category != "travel"`,
	}

	cases := []struct {
		name string
		exp  *Expense
	}{
		{"over limit", &Expense{Amount: 250, Category: "meals"}},
		{"travel", &Expense{Amount: 10, Category: "travel"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			approved, err := EvaluatePolicy(context.Background(), policy, tc.exp, "analyst")
			if err != nil {
				t.Fatalf("EvaluatePolicy() error = %v", err)
			}
			if approved {
				t.Error("expense should not auto-approve")
			}
		})
	}
}

func TestEvaluatePolicySeesSubmitterRole(t *testing.T) {
	policy := &ApprovalPolicy{
		Name:       "manager-equipment",
		Expression: `approve := submitter_role == "project_manager" && amount <= 1000.0`,
	}
	exp := &Expense{Amount: 800, Category: "equipment"}

	approved, err := EvaluatePolicy(context.Background(), policy, exp, "project_manager")
	if err != nil {
		t.Fatalf("EvaluatePolicy() error = %v", err)
	}
	if !approved {
		t.Error("manager equipment purchase under limit should approve")
	}

	approved, err = EvaluatePolicy(context.Background(), policy, exp, "analyst")
	if err != nil {
		t.Fatalf("EvaluatePolicy() error = %v", err)
	}
	if approved {
		t.Error("same expense from an analyst should not approve")
	}
}

func TestEvaluatePolicyBrokenScript(t *testing.T) {
	policy := &ApprovalPolicy{Name: "broken", Expression: `approve := (`}

	if _, err := EvaluatePolicy(context.Background(), policy, &Expense{}, ""); err == nil {
		t.Fatal("broken script must return an error")
	}
}

type fakeExpenseRepo struct {
	expenses map[string]*Expense
	policies []ApprovalPolicy
	updates  map[string]bson.M
	flagged  int64
}

func newFakeExpenseRepo(policies ...ApprovalPolicy) *fakeExpenseRepo {
	return &fakeExpenseRepo{
		expenses: make(map[string]*Expense),
		policies: policies,
		updates:  make(map[string]bson.M),
	}
}

func (f *fakeExpenseRepo) Create(ctx context.Context, exp *Expense) error {
	exp.ID = primitive.NewObjectID()
	f.expenses[exp.ID.Hex()] = exp
	return nil
}

func (f *fakeExpenseRepo) FindByID(ctx context.Context, id string) (*Expense, error) {
	if e, ok := f.expenses[id]; ok {
		return e, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeExpenseRepo) List(ctx context.Context, filter bson.M, limit, offset int64) ([]Expense, int64, error) {
	var out []Expense
	for _, e := range f.expenses {
		if by, ok := filter["submitted_by"]; ok && e.SubmittedBy != by {
			continue
		}
		if st, ok := filter["status"]; ok && e.Status != st {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeExpenseRepo) Update(ctx context.Context, id string, update bson.M) error {
	f.updates[id] = update
	if e, ok := f.expenses[id]; ok {
		if v, ok := update["status"]; ok {
			e.Status = v.(string)
		}
	}
	return nil
}

func (f *fakeExpenseRepo) Delete(ctx context.Context, id string) error {
	delete(f.expenses, id)
	return nil
}

func (f *fakeExpenseRepo) FlagPendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	for _, e := range f.expenses {
		if e.Status == StatusPending && e.CreatedAt.Before(cutoff) {
			e.Status = StatusFlagged
			f.flagged++
		}
	}
	return f.flagged, nil
}

func (f *fakeExpenseRepo) CreatePolicy(ctx context.Context, policy *ApprovalPolicy) error {
	policy.ID = primitive.NewObjectID()
	f.policies = append(f.policies, *policy)
	return nil
}

func (f *fakeExpenseRepo) FindPolicyByID(ctx context.Context, id string) (*ApprovalPolicy, error) {
	return nil, mongo.ErrNoDocuments
}

func (f *fakeExpenseRepo) ListActivePolicies(ctx context.Context) ([]ApprovalPolicy, error) {
	var out []ApprovalPolicy
	for _, p := range f.policies {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeExpenseRepo) ListPolicies(ctx context.Context) ([]ApprovalPolicy, error) {
	return f.policies, nil
}

func (f *fakeExpenseRepo) UpdatePolicy(ctx context.Context, id string, update bson.M) error {
	return nil
}

func (f *fakeExpenseRepo) DeletePolicy(ctx context.Context, id string) error {
	return nil
}

type fakeAccess struct {
	users    map[string]*models.User
	resolver *authz.Resolver
}

func (f *fakeAccess) CheckPermission(ctx context.Context, userID string, module models.Module, action models.Action) (bool, error) {
	return false, nil
}

func (f *fakeAccess) CheckProjectPermission(ctx context.Context, userID string, projectID string, module models.Module, action models.Action) (bool, error) {
	return false, nil
}

func (f *fakeAccess) LoadUser(ctx context.Context, userID string) (*models.User, *models.Role, error) {
	return f.users[userID], nil, nil
}

func (f *fakeAccess) Resolver() *authz.Resolver {
	return f.resolver
}

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, int64, error) {
	return nil, 0, nil
}

func TestSubmitExpenseAutoApproval(t *testing.T) {
	submitterID := primitive.NewObjectID().Hex()
	repo := newFakeExpenseRepo(ApprovalPolicy{
		Name:       "petty-cash",
		Expression: `approve := amount < 50.0`,
		Priority:   1,
		IsActive:   true,
	})
	access := &fakeAccess{
		users: map[string]*models.User{
			submitterID: {DisplayName: "Sam", Role: models.RoleAnalyst, IsActive: true},
		},
		resolver: authz.NewResolver(&config.Config{}),
	}
	svc := NewExpenseService(repo, access, noopAudit{}, zap.NewNop())

	exp, err := svc.SubmitExpense(context.Background(), &SubmitExpenseRequest{
		Title:    "Office snacks",
		Category: "meals",
		Amount:   20,
	}, submitterID)
	if err != nil {
		t.Fatalf("SubmitExpense() error = %v", err)
	}

	if exp.Status != StatusApproved {
		t.Errorf("status = %q, want approved", exp.Status)
	}
	if !exp.AutoApproved || exp.PolicyName != "petty-cash" {
		t.Errorf("auto approval not recorded: %+v", exp)
	}
}

func TestSubmitExpenseStaysPending(t *testing.T) {
	submitterID := primitive.NewObjectID().Hex()
	repo := newFakeExpenseRepo(ApprovalPolicy{
		Name:       "petty-cash",
		Expression: `approve := amount < 50.0`,
		Priority:   1,
		IsActive:   true,
	})
	access := &fakeAccess{
		users: map[string]*models.User{
			submitterID: {DisplayName: "Sam", Role: models.RoleAnalyst, IsActive: true},
		},
		resolver: authz.NewResolver(&config.Config{}),
	}
	svc := NewExpenseService(repo, access, noopAudit{}, zap.NewNop())

	exp, err := svc.SubmitExpense(context.Background(), &SubmitExpenseRequest{
		Title:    "Conference travel",
		Category: "travel",
		Amount:   1200,
	}, submitterID)
	if err != nil {
		t.Fatalf("SubmitExpense() error = %v", err)
	}
	if exp.Status != StatusPending {
		t.Errorf("status = %q, want pending", exp.Status)
	}
}

func TestSubmitExpenseSkipsBrokenPolicy(t *testing.T) {
	submitterID := primitive.NewObjectID().Hex()
	repo := newFakeExpenseRepo(
		ApprovalPolicy{Name: "broken", Expression: `approve := (`, Priority: 1, IsActive: true},
		ApprovalPolicy{Name: "petty-cash", Expression: `approve := amount < 50.0`, Priority: 2, IsActive: true},
	)
	access := &fakeAccess{
		users: map[string]*models.User{
			submitterID: {DisplayName: "Sam", Role: models.RoleAnalyst, IsActive: true},
		},
		resolver: authz.NewResolver(&config.Config{}),
	}
	svc := NewExpenseService(repo, access, noopAudit{}, zap.NewNop())

	exp, err := svc.SubmitExpense(context.Background(), &SubmitExpenseRequest{
		Title:    "Stationery",
		Category: "other",
		Amount:   15,
	}, submitterID)
	if err != nil {
		t.Fatalf("SubmitExpense() error = %v", err)
	}
	if exp.Status != StatusApproved || exp.PolicyName != "petty-cash" {
		t.Errorf("broken policy must be skipped, later policy applied: %+v", exp)
	}
}

func TestDecideExpenseOnce(t *testing.T) {
	repo := newFakeExpenseRepo()
	exp := &Expense{ID: primitive.NewObjectID(), Status: StatusPending}
	repo.expenses[exp.ID.Hex()] = exp
	access := &fakeAccess{resolver: authz.NewResolver(&config.Config{})}
	svc := NewExpenseService(repo, access, noopAudit{}, zap.NewNop())

	if err := svc.ApproveExpense(context.Background(), exp.ID.Hex(), "mgr", "ok"); err != nil {
		t.Fatalf("ApproveExpense() error = %v", err)
	}

	err := svc.RejectExpense(context.Background(), exp.ID.Hex(), "mgr", "changed my mind")
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("second decision error = %v, want ErrAlreadyDecided", err)
	}
}

func TestFlaggedExpenseStillDecidable(t *testing.T) {
	repo := newFakeExpenseRepo()
	exp := &Expense{ID: primitive.NewObjectID(), Status: StatusFlagged}
	repo.expenses[exp.ID.Hex()] = exp
	access := &fakeAccess{resolver: authz.NewResolver(&config.Config{})}
	svc := NewExpenseService(repo, access, noopAudit{}, zap.NewNop())

	if err := svc.ApproveExpense(context.Background(), exp.ID.Hex(), "mgr", ""); err != nil {
		t.Fatalf("ApproveExpense() on flagged expense error = %v", err)
	}
}

func TestListExpensesScopedToSubmitter(t *testing.T) {
	mine := primitive.NewObjectID().Hex()
	other := primitive.NewObjectID().Hex()
	repo := newFakeExpenseRepo()
	a := &Expense{ID: primitive.NewObjectID(), SubmittedBy: mine, Status: StatusPending}
	b := &Expense{ID: primitive.NewObjectID(), SubmittedBy: other, Status: StatusPending}
	repo.expenses[a.ID.Hex()] = a
	repo.expenses[b.ID.Hex()] = b

	access := &fakeAccess{
		users: map[string]*models.User{
			mine: {DisplayName: "Sam", Role: models.RoleAnalyst, IsActive: true},
		},
		resolver: authz.NewResolver(&config.Config{}),
	}
	svc := NewExpenseService(repo, access, noopAudit{}, zap.NewNop())

	expenses, _, err := svc.ListExpenses(context.Background(), mine, "", 1, 20)
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(expenses) != 1 || expenses[0].SubmittedBy != mine {
		t.Errorf("analyst must only see own expenses, got %d", len(expenses))
	}
}

func TestFlagStalePending(t *testing.T) {
	repo := newFakeExpenseRepo()
	old := &Expense{ID: primitive.NewObjectID(), Status: StatusPending, CreatedAt: time.Now().Add(-30 * 24 * time.Hour)}
	fresh := &Expense{ID: primitive.NewObjectID(), Status: StatusPending, CreatedAt: time.Now()}
	repo.expenses[old.ID.Hex()] = old
	repo.expenses[fresh.ID.Hex()] = fresh
	access := &fakeAccess{resolver: authz.NewResolver(&config.Config{})}
	svc := NewExpenseService(repo, access, noopAudit{}, zap.NewNop())

	n, err := svc.FlagStalePending(context.Background(), 14*24*time.Hour)
	if err != nil {
		t.Fatalf("FlagStalePending() error = %v", err)
	}
	if n != 1 {
		t.Errorf("flagged %d expenses, want 1", n)
	}
	if old.Status != StatusFlagged {
		t.Error("stale expense must be flagged")
	}
	if fresh.Status != StatusPending {
		t.Error("fresh expense must stay pending")
	}
}
