package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	ballot "github.com/jicksta/ballot-box"
	"github.com/jicksta/ballot-box/internal"
	"github.com/jicksta/ballot-box/internal/config"
	"github.com/jicksta/ballot-box/report"
	"github.com/jicksta/ballot-box/sqlite"
)

func main() {
	if len(os.Args) != 2 {
		config.Exitf("usage: %s <transcript>", os.Args[0])
	}
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("load config: %v", err)
	}
	log.SetPrefix(cfg.LogPrefix)
	ctx := context.Background()

	calls := transcriptFromFile(os.Args[1])

	var store ballot.BallotStore = ballot.NewMemoryStore()
	if cfg.DBPath != "" {
		sqliteStore, err := sqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	startTime := time.Now()
	recorder := ballot.NewRecorder()
	fmt.Print("Calls:\n\n")
	box, err := Replay(ctx, calls, store, os.Stdout, ballot.WithNotifier(recorder), ballot.WithLogger(log.Default()))
	if err != nil {
		log.Fatalf("replay %s: %v", os.Args[1], err)
	}
	executionDuration := time.Since(startTime)

	proposals, err := box.Proposals(ctx)
	if err != nil {
		log.Fatalf("list proposals: %v", err)
	}
	participants := internal.SortedUniques(func(emit func(string)) {
		for _, call := range calls {
			emit(string(call.Caller))
		}
	})

	fmt.Printf(`
Owner:             %s
Number of calls:   %d
Participants:      %s
Notifications:     %d
Time to replay:    %s
`,
		box.Owner(),
		len(calls),
		strings.Join(participants, ", "),
		len(recorder.Envelopes()),
		executionDuration)

	fmt.Print("\n\nStandings:\n\n")
	report.NewStandingsReport(proposals).PrintStandingsTable(os.Stdout)
}

func transcriptFromFile(filename string) []Call {
	f, err := os.Open(filename)
	if err != nil {
		log.Fatal("Error: Could not open file at " + filename)
	}
	defer f.Close()
	calls, err := ReadTranscript(f)
	if err != nil {
		log.Fatalf("Error: Unable to process %s: %v", filename, err)
	}
	return calls
}
