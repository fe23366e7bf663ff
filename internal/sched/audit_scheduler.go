package sched

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nugh75/calendario-sub000/internal/config"
	"github.com/nugh75/calendario-sub000/internal/curriculum"
	"github.com/nugh75/calendario-sub000/internal/notify"
	"github.com/nugh75/calendario-sub000/internal/quality"
	"github.com/nugh75/calendario-sub000/internal/storage/sqlite"
)

// RunAudit loads the full lesson collection and runs the four pathway audits
// plus the completeness score. It has no Slack dependency so it can be called
// from both the CLI and the scheduler.
func RunAudit(cfg config.Config, db *sql.DB, auditor *curriculum.Auditor) (string, error) {
	records, err := sqlite.GetAllLessons(db)
	if err != nil {
		return "", fmt.Errorf("load lessons: %w", err)
	}

	var lines []string
	reports, errs := auditor.AuditAll(records)
	for _, rep := range reports {
		lines = append(lines, curriculum.FormatReport(rep))
	}
	for _, auditErr := range errs {
		lines = append(lines, fmt.Sprintf("audit error: %v", auditErr))
	}

	scorer := quality.NewScorer(cfg.TransversalTargetCFU)
	_, metrics := scorer.Score(records, cfg.ClassTargetCFU)
	lines = append(lines, fmt.Sprintf(
		"completeness %.1f%% (%s): %d OK, %d excess, %d deficit of %d classes",
		metrics.Completeness, metrics.Rating,
		metrics.OKCount, metrics.ExcessCount, metrics.DeficitCount, metrics.TotalClasses,
	))
	return strings.Join(lines, "\n"), nil
}

// StartAuditScheduler starts a cron-based scheduler that periodically runs
// the compliance audits and posts the summary to Slack when configured.
// The schedule is a standard 5-field cron expression (minute hour
// day-of-month month day-of-week). Examples: "0 7 * * *" (daily 7am),
// "0 7 * * 1" (Mondays 7am).
func StartAuditScheduler(cfg config.Config, db *sql.DB, auditor *curriculum.Auditor, notifier *notify.Notifier) {
	schedule := strings.TrimSpace(cfg.AuditSchedule)
	if schedule == "" {
		log.Println("Scheduled audits disabled (audit_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid audit_schedule '%s': %v (scheduled audits disabled)", schedule, err)
		return
	}

	log.Printf("Audits scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next audit at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			summary, runErr := RunAudit(cfg, db, auditor)
			if runErr != nil {
				log.Printf("Scheduled audit error: %v", runErr)
				continue
			}
			log.Printf("Scheduled audit complete:\n%s", summary)

			if notifier != nil {
				if postErr := notifier.PostSummary("Scheduled audit", summary); postErr != nil {
					log.Printf("Audit post error: %v", postErr)
				}
			}
		}
	}()
}
