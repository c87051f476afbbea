package scheduler

import (
	"context"
	"time"

	"go-opshub/internal/common/models"
	"go-opshub/internal/features/announcement"
	"go-opshub/internal/features/audit"
	"go-opshub/internal/features/expense"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Expenses pending longer than this get flagged for attention.
const staleExpenseAge = 14 * 24 * time.Hour

// Scheduler runs the portal's housekeeping jobs: expiring published
// announcements and flagging expenses stuck in review.
type Scheduler struct {
	cron          *cron.Cron
	announcements announcement.AnnouncementService
	expenses      expense.ExpenseService
	auditService  audit.AuditService
	logger        *zap.Logger
}

func NewScheduler(
	announcements announcement.AnnouncementService,
	expenses expense.ExpenseService,
	auditService audit.AuditService,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		announcements: announcements,
		expenses:      expenses,
		auditService:  auditService,
		logger:        logger,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 5m", s.expireAnnouncements); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@daily", s.flagStaleExpenses); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started")
	return nil
}

// Stop waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) expireAnnouncements() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.announcements.ExpirePast(ctx)
	if err != nil {
		s.logger.Error("expire announcements", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("expired announcements", zap.Int("count", n))
		_ = s.auditService.LogChange(ctx, models.AuditActionCron, "announcement", "", map[string]models.Change{
			"expired": {New: n},
		})
	}
}

func (s *Scheduler) flagStaleExpenses() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.expenses.FlagStalePending(ctx, staleExpenseAge)
	if err != nil {
		s.logger.Error("flag stale expenses", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("flagged stale expenses", zap.Int64("count", n))
		_ = s.auditService.LogChange(ctx, models.AuditActionCron, "expense", "", map[string]models.Change{
			"flagged": {New: n},
		})
	}
}
