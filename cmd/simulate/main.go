package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pulseplan/taste-engine/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	jsonOut := flag.Bool("json", false, "output the full summary as JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: simulate --fixture path/to/fixture.json [--json]")
		os.Exit(2)
	}

	fix, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(2)
	}

	sum, err := replay.Replay(fix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(2)
	}

	if *jsonOut {
		data, err := json.MarshalIndent(sum, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal summary: %v\n", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
	} else {
		printSummary(fix, sum)
	}

	if len(sum.Mismatches) > 0 {
		os.Exit(1)
	}
}

// #endregion main

// #region output

func printSummary(fix *replay.Fixture, sum *replay.Summary) {
	if fix.Description != "" {
		fmt.Println(fix.Description)
		fmt.Println()
	}
	fmt.Printf("Genome: %d signals -> %s (confidence %.3f)\n",
		sum.SignalCount, sum.PrimaryArchetype, sum.Confidence)
	fmt.Println()

	fmt.Printf("%-16s| %5s  %-12s| %-7s| %s\n", "Content", "Score", "Tier", "Allowed", "Reason")
	fmt.Printf("%-16s+%-20s+%-8s+%s\n",
		"----------------", "---------------------", "--------", "--------------------")
	for _, r := range sum.Results {
		fmt.Printf("%-16s| %5d  %-12s| %-7v| %s\n", r.ContentID, r.Conviction, r.Tier, r.Allowed, r.Reason)
	}

	fmt.Printf("\nSummary: %d allowed, %d blocked\n", sum.Allowed, sum.Blocked)
	if len(sum.Mismatches) > 0 {
		fmt.Println("\nMismatches against expected results:")
		for _, m := range sum.Mismatches {
			fmt.Printf("  %s\n", m)
		}
	}
}

// #endregion output
