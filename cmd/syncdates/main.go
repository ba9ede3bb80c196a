package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"canvas-reconcile/internal/canvas"
	"canvas-reconcile/internal/config"
	"canvas-reconcile/internal/plan"
	"canvas-reconcile/internal/reconcile"
)

// syncdates sweeps the chapter schedule across whole collections:
// every entity whose title names a chapter gets that chapter's window.
func main() {
	var (
		configPath = flag.String("config", "", "optional dotenv config file")
		planPath   = flag.String("plan", "", "plan yaml for the chapter table (default: built-in)")
		kinds      = flag.String("kinds", "assignment,discussion,module", "comma separated kinds to sweep")
		dryRun     = flag.Bool("dry-run", false, "report changes without mutating")
		timeout    = flag.Duration("timeout", 30*time.Minute, "overall run timeout")
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

	client := canvas.New(cfg.CanvasDomainURL, cfg.APIToken, cfg.CourseID, cfg.PageSize)
	api := canvas.Reconciler{C: client}

	var failed int
	for _, k := range parseKinds(*kinds) {
		outcomes := reconcile.ChapterSweep(ctx, api, *resolver, k, *dryRun)
		for _, o := range outcomes {
			log.Println(o.Describe())
		}
		s := reconcile.Summarize(outcomes)
		log.Printf("%s sweep: %s", k, s)
		failed += s.Failed
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func parseKinds(s string) []reconcile.Kind {
	known := map[string]reconcile.Kind{
		"module":     reconcile.KindModule,
		"assignment": reconcile.KindAssignment,
		"discussion": reconcile.KindDiscussion,
	}
	var out []reconcile.Kind
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, ok := known[part]
		if !ok {
			log.Fatalf("unknown kind %q (known: module, assignment, discussion)", part)
		}
		out = append(out, k)
	}
	return out
}
