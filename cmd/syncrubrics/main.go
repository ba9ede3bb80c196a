package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"canvas-reconcile/internal/canvas"
	"canvas-reconcile/internal/config"
	"canvas-reconcile/internal/reconcile"
)

// syncrubrics ensures one rubric per course learning outcome.
func main() {
	var (
		configPath = flag.String("config", "", "optional dotenv config file")
		dryRun     = flag.Bool("dry-run", false, "report changes without mutating")
		timeout    = flag.Duration("timeout", 15*time.Minute, "overall run timeout")
	)
	flag.Parse()

	cfg := config.Load(*configPath)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := canvas.New(cfg.CanvasDomainURL, cfg.APIToken, cfg.CourseID, cfg.PageSize)
	outcomes := reconcile.EnsureRubrics(ctx, canvas.Reconciler{C: client}, *dryRun)

	for _, o := range outcomes {
		log.Println(o.Describe())
	}
	s := reconcile.Summarize(outcomes)
	log.Printf("rubrics: %s", s)

	if s.Failed > 0 {
		os.Exit(1)
	}
}
