package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"canvas-reconcile/internal/canvas"
	"canvas-reconcile/internal/config"
	"canvas-reconcile/internal/plan"
	"canvas-reconcile/internal/reconcile"
	"canvas-reconcile/internal/report"
	"canvas-reconcile/internal/sftpclient"
)

func main() {
	var (
		configPath   = flag.String("config", "", "optional dotenv config file")
		planPath     = flag.String("plan", "", "reconciliation plan yaml (default: built-in semester plan)")
		outPath      = flag.String("out", "reconcile-outcomes.csv", "outcome csv path")
		snapshotPath = flag.String("snapshot", "", "optional compressed json snapshot path")
		uploadSFTP   = flag.Bool("sftp", false, "upload the outcome CSV via SFTP")
		dryRun       = flag.Bool("dry-run", false, "report changes without mutating")
		timeout      = flag.Duration("timeout", 30*time.Minute, "overall run timeout")
	)
	flag.Parse()

	cfg := config.Load(*configPath)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	doc := plan.Defaults()
	if *planPath != "" {
		var err error
		doc, err = plan.Load(*planPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	resolver, err := doc.Resolver(cfg.SemesterYear, cfg.Timezone)
	if err != nil {
		log.Fatal(err)
	}
	targets, err := doc.ReconcileTargets()
	if err != nil {
		log.Fatal(err)
	}

	client := canvas.New(cfg.CanvasDomainURL, cfg.APIToken, cfg.CourseID, cfg.PageSize)
	driver := &reconcile.Driver{
		API:             canvas.Reconciler{C: client},
		Resolver:        resolver,
		AllowFirstMatch: cfg.AllowFirstMatch,
		DryRun:          *dryRun,
	}

	outcomes := driver.Run(ctx, targets)

	for _, o := range outcomes {
		log.Println(o.Describe())
	}
	summary := reconcile.Summarize(outcomes)
	log.Printf("course %d: %s", cfg.CourseID, summary)

	if dir := filepath.Dir(*outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal(err)
		}
	}
	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := report.WriteOutcomeCSV(f, outcomes); err != nil {
		f.Close()
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d outcomes to %s", len(outcomes), *outPath)

	if *snapshotPath != "" {
		snap := report.NewRunSnapshot(strconv.Itoa(cfg.CourseID), *dryRun, outcomes)
		sf, err := os.Create(*snapshotPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := report.WriteSnapshot(sf, snap); err != nil {
			sf.Close()
			log.Fatal(err)
		}
		if err := sf.Close(); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote snapshot to %s", *snapshotPath)
	}

	if *uploadSFTP {
		src, err := os.Open(*outPath)
		if err != nil {
			log.Fatal(err)
		}
		defer src.Close()

		upCfg := sftpclient.Config{
			Host:                  cfg.SFTPHost,
			Port:                  cfg.SFTPPort,
			User:                  cfg.SFTPUser,
			Pass:                  cfg.SFTPPass,
			RemoteDir:             cfg.SFTPDir,
			KnownHostsFile:        cfg.SFTPKnownHosts,
			InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
		}
		if err := sftpclient.Upload(ctx, upCfg, src, filepath.Base(*outPath)); err != nil {
			log.Fatal(err)
		}
		log.Printf("uploaded %s via sftp", filepath.Base(*outPath))
	}

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
