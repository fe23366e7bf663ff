package app

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/nugh75/calendario-sub000/internal/calendar"
	"github.com/nugh75/calendario-sub000/internal/config"
	"github.com/nugh75/calendario-sub000/internal/curriculum"
	"github.com/nugh75/calendario-sub000/internal/dedup"
	"github.com/nugh75/calendario-sub000/internal/merge"
	"github.com/nugh75/calendario-sub000/internal/notify"
	"github.com/nugh75/calendario-sub000/internal/quality"
	"github.com/nugh75/calendario-sub000/internal/sched"
	"github.com/nugh75/calendario-sub000/internal/storage/sqlite"
)

func Main() {
	var (
		command = flag.String("cmd", "", "Command to run: dedupe, audit, score, merge, clean, import, serve")
		mode    = flag.String("mode", "both", "Duplicate detection mode: standard, advanced, both")
		pathway = flag.String("pathway", "", "Pathway to audit (pef60, pef30, pef36, pef30_art13); empty audits all")
		file    = flag.String("file", "", "CSV file for the import command")
	)
	flag.Parse()

	if *command == "" {
		printUsage()
		os.Exit(1)
	}

	cfg := config.LoadConfig()

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	detector := dedup.NewDetector(detectorOptions(cfg))
	auditor := buildAuditor(cfg)

	switch *command {
	case "dedupe":
		err = runDedupe(db, detector, dedup.Mode(*mode))
	case "audit":
		err = runAudit(db, auditor, *pathway)
	case "score":
		err = runScore(cfg, db)
	case "merge":
		err = runMerge(db, detector)
	case "clean":
		err = runClean(db)
	case "import":
		err = runImport(db, *file)
	case "serve":
		err = runServe(cfg, db, auditor)
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", *command, err)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: calendario -cmd <command> [flags]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  dedupe   list duplicate groups (-mode standard|advanced|both)")
	fmt.Fprintln(os.Stderr, "  audit    credit-compliance report (-pathway pef60|pef30|pef36|pef30_art13)")
	fmt.Fprintln(os.Stderr, "  score    per-class completeness table and data-quality rating")
	fmt.Fprintln(os.Stderr, "  merge    automatically merge all exact duplicate groups")
	fmt.Fprintln(os.Stderr, "  clean    normalize whitespace-only field variants in place")
	fmt.Fprintln(os.Stderr, "  import   seed the database from a CSV file (-file path)")
	fmt.Fprintln(os.Stderr, "  serve    run the scheduled audit service until interrupted")
}

func detectorOptions(cfg config.Config) dedup.Options {
	return dedup.Options{
		ProximityWindowMin: cfg.ProximityWindowMinutes,
		OverlapWindowMin:   cfg.OverlapWindowMinutes,
		FamilySimilarity:   cfg.FamilySimilarity,
		GivenSimilarity:    cfg.GivenSimilarity,
		NameSimilarity:     cfg.NameSimilarity,
		TitleSimilarity:    cfg.TitleSimilarity,
	}
}

func buildAuditor(cfg config.Config) *curriculum.Auditor {
	if cfg.CurriculumPath == "" {
		return curriculum.NewAuditor()
	}
	keywords, requirements, err := curriculum.LoadReference(cfg.CurriculumPath)
	if err != nil {
		log.Fatalf("Invalid curriculum_path '%s': %v", cfg.CurriculumPath, err)
	}
	log.Printf("Loaded curriculum reference from %s", cfg.CurriculumPath)
	return curriculum.NewAuditorWith(curriculum.NewClassifierWithKeywords(keywords), requirements)
}

func runDedupe(db *sql.DB, detector *dedup.Detector, mode dedup.Mode) error {
	records, err := sqlite.GetAllLessons(db)
	if err != nil {
		return err
	}
	groups, summary := detector.Summarize(records, mode)
	log.Println(dedup.FormatSummary(summary))

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		g := groups[key]
		members := make([]string, 0, len(g.Members))
		for _, idx := range g.Members {
			r := records[idx]
			members = append(members, fmt.Sprintf("#%d %s %s %q %q", r.ID, r.Date, r.TimeRange, r.Teacher, r.CourseTitle))
		}
		note := ""
		if g.WhitespaceOnly {
			note = " [whitespace-only]"
		}
		fmt.Printf("%s%s\n  %s\n", g.Key, note, strings.Join(members, "\n  "))
	}
	return nil
}

func runAudit(db *sql.DB, auditor *curriculum.Auditor, pathway string) error {
	records, err := sqlite.GetAllLessons(db)
	if err != nil {
		return err
	}
	if pathway != "" {
		rep, err := auditor.Audit(records, calendar.Pathway(pathway))
		if err != nil {
			return err
		}
		fmt.Println(curriculum.FormatReport(rep))
		return nil
	}
	reports, errs := auditor.AuditAll(records)
	for _, rep := range reports {
		fmt.Println(curriculum.FormatReport(rep))
	}
	for _, auditErr := range errs {
		log.Printf("audit error: %v", auditErr)
	}
	return nil
}

func runScore(cfg config.Config, db *sql.DB) error {
	records, err := sqlite.GetAllLessons(db)
	if err != nil {
		return err
	}
	scorer := quality.NewScorer(cfg.TransversalTargetCFU)
	rows, metrics := scorer.Score(records, cfg.ClassTargetCFU)
	for _, row := range rows {
		fmt.Printf("%-16s delivered=%6.1f target=%6.1f delta=%+6.1f %s\n",
			row.Class, row.Delivered, row.Target, row.Delta, row.Status)
	}
	fmt.Printf("completeness: %.1f%% (%s)\n", metrics.Completeness, metrics.Rating)
	for _, a := range append(metrics.TopDeficit, metrics.TopExcess...) {
		fmt.Printf("  %s (%s %+.1f): %s\n", a.Class, a.Status, a.Delta, a.Suggestion)
	}
	return nil
}

// runMerge applies the exact-key groups only. The fuzzy strategies produce
// candidates for operator review, not merges safe to run unattended.
func runMerge(db *sql.DB, detector *dedup.Detector) error {
	merged := 0
	for {
		records, err := sqlite.GetAllLessons(db)
		if err != nil {
			return err
		}
		groups := detector.Detect(records, dedup.ModeStandard)
		if len(groups) == 0 {
			break
		}

		// One group per round: every ApplyMerge invalidates the indices
		// the remaining groups were computed against.
		var g dedup.Group
		for _, candidate := range groups {
			g = candidate
			break
		}
		result, err := merge.Automatic(records, g)
		if err != nil {
			return err
		}
		survivorID := records[result.Survivor].ID
		if err := sqlite.ApplyMerge(db, result.Unified, survivorID, merge.SupersededIDs(records, result)); err != nil {
			return fmt.Errorf("apply merge for %s: %w", g.Key, err)
		}
		merged++
	}
	log.Printf("Merged %d exact duplicate groups", merged)
	return nil
}

func runClean(db *sql.DB) error {
	cleaned, err := sqlite.CleanWhitespace(db)
	if err != nil {
		return err
	}
	log.Printf("Cleaned %d rows with extra whitespace", cleaned)
	return nil
}

func runImport(db *sql.DB, path string) error {
	if path == "" {
		return fmt.Errorf("import requires -file")
	}
	inserted, skipped, err := ImportCSV(db, path)
	if err != nil {
		return err
	}
	log.Printf("Imported %d lessons (%d rows skipped)", inserted, skipped)
	return nil
}

func runServe(cfg config.Config, db *sql.DB, auditor *curriculum.Auditor) error {
	notifier := notify.NewFromConfig(cfg)
	if notifier == nil {
		log.Println("Slack notifications disabled")
	}
	sched.StartAuditScheduler(cfg, db, auditor, notifier)
	log.Println("Calendar reconciliation service running...")
	select {}
}
