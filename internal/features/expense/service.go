package expense

import (
	"context"
	"fmt"
	"time"

	"go-opshub/internal/common/models"
	"go-opshub/internal/features/audit"
	"go-opshub/internal/features/role"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type ExpenseService interface {
	SubmitExpense(ctx context.Context, req *SubmitExpenseRequest, submitterID string) (*Expense, error)
	GetExpense(ctx context.Context, id string) (*Expense, error)
	ListExpenses(ctx context.Context, userID string, status string, page, limit int64) ([]Expense, int64, error)
	ApproveExpense(ctx context.Context, id, deciderID, note string) error
	RejectExpense(ctx context.Context, id, deciderID, note string) error
	DeleteExpense(ctx context.Context, id string) error
	ExportExpenses(ctx context.Context, status string) ([]byte, string, error)
	FlagStalePending(ctx context.Context, maxAge time.Duration) (int64, error)

	CreatePolicy(ctx context.Context, req *CreatePolicyRequest) (*ApprovalPolicy, error)
	ListPolicies(ctx context.Context) ([]ApprovalPolicy, error)
	UpdatePolicy(ctx context.Context, id string, req *UpdatePolicyRequest) error
	DeletePolicy(ctx context.Context, id string) error
}

type ExpenseServiceImpl struct {
	Repo         ExpenseRepository
	Access       role.AccessService
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewExpenseService(repo ExpenseRepository, access role.AccessService, auditService audit.AuditService, logger *zap.Logger) ExpenseService {
	return &ExpenseServiceImpl{
		Repo:         repo,
		Access:       access,
		AuditService: auditService,
		Logger:       logger,
	}
}

// SubmitExpense stores the expense and runs the active approval policies
// over it. The first policy that approves settles the expense without
// manual review; a broken policy script is skipped, not fatal.
func (s *ExpenseServiceImpl) SubmitExpense(ctx context.Context, req *SubmitExpenseRequest, submitterID string) (*Expense, error) {
	user, _, err := s.Access.LoadUser(ctx, submitterID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("submitter %s not found", submitterID)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now()
	exp := &Expense{
		ProjectID:     req.ProjectID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Amount:        req.Amount,
		Currency:      currency,
		Status:        StatusPending,
		SubmittedBy:   submitterID,
		SubmitterName: user.DisplayName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	policies, err := s.Repo.ListActivePolicies(ctx)
	if err != nil {
		return nil, err
	}
	for i := range policies {
		approved, err := EvaluatePolicy(ctx, &policies[i], exp, string(user.Role))
		if err != nil {
			s.Logger.Warn("approval policy failed",
				zap.String("policy", policies[i].Name),
				zap.Error(err))
			continue
		}
		if approved {
			exp.Status = StatusApproved
			exp.AutoApproved = true
			exp.PolicyName = policies[i].Name
			exp.DecidedAt = &now
			break
		}
	}

	if err := s.Repo.Create(ctx, exp); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "expense", exp.ID.Hex(), map[string]models.Change{
		"amount": {New: exp.Amount},
		"status": {New: exp.Status},
	})
	return exp, nil
}

func (s *ExpenseServiceImpl) GetExpense(ctx context.Context, id string) (*Expense, error) {
	return s.Repo.FindByID(ctx, id)
}

// ListExpenses shows everything to users with the sensitive-data grant and
// only the caller's own submissions to everyone else.
func (s *ExpenseServiceImpl) ListExpenses(ctx context.Context, userID string, status string, page, limit int64) ([]Expense, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	user, _, err := s.Access.LoadUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if user == nil {
		return nil, 0, nil
	}

	filter := bson.M{}
	if !s.Access.Resolver().CanAccessSensitiveData(user) {
		filter["submitted_by"] = userID
	}
	if status != "" {
		filter["status"] = status
	}

	return s.Repo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *ExpenseServiceImpl) ApproveExpense(ctx context.Context, id, deciderID, note string) error {
	return s.decide(ctx, id, deciderID, note, StatusApproved)
}

func (s *ExpenseServiceImpl) RejectExpense(ctx context.Context, id, deciderID, note string) error {
	return s.decide(ctx, id, deciderID, note, StatusRejected)
}

func (s *ExpenseServiceImpl) decide(ctx context.Context, id, deciderID, note, status string) error {
	exp, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if exp.Status == StatusApproved || exp.Status == StatusRejected {
		return ErrAlreadyDecided
	}

	now := time.Now()
	if err := s.Repo.Update(ctx, id, bson.M{
		"status":        status,
		"decided_by":    deciderID,
		"decided_at":    now,
		"decision_note": note,
		"updated_at":    now,
	}); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionApproval, "expense", id, map[string]models.Change{
		"status": {Old: exp.Status, New: status},
	})
	return nil
}

func (s *ExpenseServiceImpl) DeleteExpense(ctx context.Context, id string) error {
	exp, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "expense", id, map[string]models.Change{
		"title": {Old: exp.Title},
	})
	return nil
}

// ExportExpenses renders the current ledger as a spreadsheet.
func (s *ExpenseServiceImpl) ExportExpenses(ctx context.Context, status string) ([]byte, string, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	expenses, _, err := s.Repo.List(ctx, filter, 10000, 0)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Expenses"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	columns := []string{"Title", "Category", "Amount", "Currency", "Status", "Submitted By", "Submitted At", "Decided At", "Policy"}
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, exp := range expenses {
		decidedAt := ""
		if exp.DecidedAt != nil {
			decidedAt = exp.DecidedAt.Format("2006-01-02 15:04:05")
		}
		values := []interface{}{
			exp.Title,
			exp.Category,
			exp.Amount,
			exp.Currency,
			exp.Status,
			exp.SubmitterName,
			exp.CreatedAt.Format("2006-01-02 15:04:05"),
			decidedAt,
			exp.PolicyName,
		}
		for colIdx, val := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("expenses_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func (s *ExpenseServiceImpl) FlagStalePending(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.Repo.FlagPendingOlderThan(ctx, time.Now().Add(-maxAge))
}

func (s *ExpenseServiceImpl) CreatePolicy(ctx context.Context, req *CreatePolicyRequest) (*ApprovalPolicy, error) {
	now := time.Now()
	policy := &ApprovalPolicy{
		Name:        req.Name,
		Description: req.Description,
		Expression:  req.Expression,
		Priority:    req.Priority,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Repo.CreatePolicy(ctx, policy); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "approval_policy", policy.ID.Hex(), map[string]models.Change{
		"name": {New: policy.Name},
	})
	return policy, nil
}

func (s *ExpenseServiceImpl) ListPolicies(ctx context.Context) ([]ApprovalPolicy, error) {
	return s.Repo.ListPolicies(ctx)
}

func (s *ExpenseServiceImpl) UpdatePolicy(ctx context.Context, id string, req *UpdatePolicyRequest) error {
	update := bson.M{"updated_at": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Expression != "" {
		update["expression"] = req.Expression
	}
	if req.Priority != nil {
		update["priority"] = *req.Priority
	}
	if req.IsActive != nil {
		update["is_active"] = *req.IsActive
	}

	if err := s.Repo.UpdatePolicy(ctx, id, update); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "approval_policy", id, map[string]models.Change{
		"fields": {New: update},
	})
	return nil
}

func (s *ExpenseServiceImpl) DeletePolicy(ctx context.Context, id string) error {
	if err := s.Repo.DeletePolicy(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "approval_policy", id, nil)
	return nil
}
