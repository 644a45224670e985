package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pulseplan/taste-engine/internal/genome"
	"github.com/pulseplan/taste-engine/internal/logging"
	"github.com/pulseplan/taste-engine/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to taste_engine.db")
	subject := flag.String("subject", "", "subject id to inspect")
	units := flag.Bool("units", false, "show scheduling units for the subject")
	logN := flag.Int("log", 0, "show N most recent decision log entries")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" || (*subject == "" && *logN == 0) {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/taste_engine.db --subject id [--units] [--json]")
		fmt.Fprintln(os.Stderr, "       inspect --db path/to/taste_engine.db --log N [--json]")
		os.Exit(2)
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()

	if *logN > 0 {
		if err := runLogMode(st, *logN, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *units {
		err = runUnitsMode(ctx, st, *subject, *jsonOut)
	} else {
		err = runGenomeMode(ctx, st, *subject, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region genome-mode

func runGenomeMode(ctx context.Context, st *store.Store, subjectID string, jsonOut bool) error {
	g, err := st.GenomeFor(ctx, subjectID)
	if err != nil {
		return err
	}
	if g == nil {
		fmt.Fprintf(os.Stderr, "no genome found for subject %s\n", subjectID)
		return nil
	}

	if jsonOut {
		return printJSON(g)
	}

	fmt.Printf("Subject:     %s\n", g.SubjectID)
	fmt.Printf("Signals:     %d retained / %d total\n", len(g.Signals), g.ItemCount)
	fmt.Printf("Primary:     %s %s (%.3f)\n", g.Archetype.Primary.Glyph, g.Archetype.Primary.Designation, g.Archetype.Primary.Confidence)
	if g.Archetype.Secondary != nil {
		fmt.Printf("Secondary:   %s %s (%.3f)\n", g.Archetype.Secondary.Glyph, g.Archetype.Secondary.Designation, g.Archetype.Secondary.Confidence)
	}
	fmt.Printf("Confidence:  %.3f\n", g.Confidence)

	fmt.Printf("\nDistribution:\n")
	printDistribution(g.Archetype.Distribution)

	if len(g.Keywords) > 0 {
		fmt.Printf("\nTop keywords:\n")
		for _, k := range genome.TopKeywords(g, "", 10) {
			fmt.Printf("  %-40s %+.2f  (%d)\n", k.Key, k.Score, k.Count)
		}
		if avoid := genome.AvoidKeywords(g, 5); len(avoid) > 0 {
			fmt.Printf("\nLearned-avoid:\n")
			for _, k := range avoid {
				fmt.Printf("  %-40s %+.2f  (%d)\n", k.Key, k.Score, k.Count)
			}
		}
	}

	fmt.Printf("\nDirectives:\n")
	fmt.Printf("  tone:     %s\n", strings.Join(g.Directives.Tone, ", "))
	fmt.Printf("  keywords: %s\n", strings.Join(g.Directives.Keywords, ", "))
	fmt.Printf("  avoid:    %s\n", strings.Join(g.Directives.Avoid, ", "))

	fmt.Printf("\nLearning:\n")
	fmt.Printf("  feedback events:  %d\n", g.Learning.TotalFeedbackEvents)
	fmt.Printf("  overall accuracy: %.1f\n", g.Learning.OverallAccuracy)
	fmt.Printf("  weights:          perf=%.2f taste=%.2f brand=%.2f\n",
		g.Learning.Weights.Performance, g.Learning.Weights.Taste, g.Learning.Weights.Brand)

	fmt.Printf("\nGamification:  xp=%d streak=%d longest=%d achievements=%d\n",
		g.Gamification.XP, g.Gamification.Streak, g.Gamification.LongestStreak, len(g.Gamification.Achievements))
	return nil
}

func printDistribution(dist map[string]float64) {
	names := make([]string, 0, len(dist))
	for n := range dist {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return dist[names[i]] > dist[names[j]] })
	for _, n := range names {
		bar := strings.Repeat("#", int(dist[n]*40))
		fmt.Printf("  %-14s %.4f  %s\n", n, dist[n], bar)
	}
}

// #endregion genome-mode

// #region units-mode

func runUnitsMode(ctx context.Context, st *store.Store, subjectID string, jsonOut bool) error {
	units, err := st.ListUnits(ctx, subjectID)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		fmt.Fprintln(os.Stderr, "no units found")
		return nil
	}

	if jsonOut {
		return printJSON(units)
	}

	fmt.Printf("%-12s  %-10s  %-8s  %-5s  %-20s  %s\n",
		"Unit", "Status", "Posted", "Total", "Next Post", "Last Error")
	for _, u := range units {
		posted := 0
		for _, it := range u.Items {
			if it.Posted {
				posted++
			}
		}
		lastErr := ""
		if n := len(u.Errors); n > 0 {
			lastErr = u.Errors[n-1].Code
		}
		next := "—"
		if !u.NextPostAt.IsZero() {
			next = u.NextPostAt.Format("2006-01-02T15:04:05Z")
		}
		fmt.Printf("%-12s  %-10s  %-8d  %-5d  %-20s  %s\n",
			shortID(u.ID), u.Status, posted, len(u.Items), next, lastErr)
	}
	return nil
}

// #endregion units-mode

// #region log-mode

func runLogMode(st *store.Store, limit int, jsonOut bool) error {
	entries, err := logging.Recent(st.DB(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "decision log is empty")
		return nil
	}

	if jsonOut {
		return printJSON(entries)
	}

	fmt.Printf("%-10s  %-12s  %-12s  %-12s  %-7s  %-24s  %s\n",
		"Kind", "Subject", "Target", "Action", "Allowed", "Code", "Time")
	for _, e := range entries {
		fmt.Printf("%-10s  %-12s  %-12s  %-12s  %-7v  %-24s  %s\n",
			e.Kind, shortID(e.SubjectID), shortID(e.TargetID), e.Action,
			e.Allowed, e.Code, e.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion log-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// #endregion output
