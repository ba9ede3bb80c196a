package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"canvas-reconcile/internal/canvas"
	"canvas-reconcile/internal/config"
	"canvas-reconcile/internal/devutil"
	"canvas-reconcile/internal/reconcile"
)

// inspect dumps a collection as it looks to the engine, for eyeballing
// match values and current schedules before editing a plan.
func main() {
	var (
		configPath = flag.String("config", "", "optional dotenv config file")
		kind       = flag.String("kind", "module", "collection to list: module, page, assignment, discussion, rubric, outcome")
		raw        = flag.Bool("raw", false, "print raw api fields instead of the engine view")
		timeout    = flag.Duration("timeout", 10*time.Minute, "overall run timeout")
	)
	flag.Parse()

	cfg := config.Load(*configPath)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := canvas.New(cfg.CanvasDomainURL, cfg.APIToken, cfg.CourseID, cfg.PageSize)

	if *raw && *kind == "module" {
		mods, err := client.ListModules(ctx)
		if err != nil {
			log.Fatal(err)
		}
		for _, m := range mods {
			fmt.Println(devutil.Pick(m, "id", "name", "unlock_at", "lock_at", "published"))
		}
		return
	}

	entities, err := canvas.Reconciler{C: client}.ListCollection(ctx, reconcile.Kind(normalizeKind(*kind)))
	if err != nil {
		log.Fatal(err)
	}

	for _, e := range entities {
		line := fmt.Sprintf("id=%d name=%q", e.ID, e.Name)
		if e.Slug != "" {
			line += fmt.Sprintf(" slug=%s", e.Slug)
		}
		if e.LinkRef != 0 {
			line += fmt.Sprintf(" assignment=%d", e.LinkRef)
		}
		if e.Schedule != nil {
			line += fmt.Sprintf(" open=%s due=%s", reconcile.ISO(e.Schedule.OpenAt), reconcile.ISO(e.Schedule.DueAt))
		}
		if ch := reconcile.ChapterFromTitle(e.Name); ch != 0 {
			line += fmt.Sprintf(" chapter=%d", ch)
		}
		fmt.Println(line)
	}
	log.Printf("%d entities in %s", len(entities), *kind)
}

func normalizeKind(s string) string {
	if s == "discussion" {
		return string(reconcile.KindDiscussion)
	}
	return s
}
