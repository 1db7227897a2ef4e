package main

import (
	"context"
	"flag"
	"fmt"
	"live-poll/internal"
	"live-poll/repositories"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run prints every poll of a Badger directory. With -serve it keeps an HTML view up instead.
func run() error {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	serve := flag.String("serve", "", "Serve the inspector page on this address, e.g. localhost:8081")
	flag.Parse()

	log := logs.GetLoggerFromLevel(slog.LevelInfo)
	db, err := openDB(*dbPath)
	if err != nil {
		return fmt.Errorf("error while opening Badger: %w", err)
	}
	defer db.Close()
	repo := repositories.NewPollRepository(db, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve != "" {
		internal.StartDebugServer(ctx, log, repo, *serve)
		<-ctx.Done()
		return nil
	}

	rows, err := internal.LoadRows(ctx, repo)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Question", "Created by", "Created at", "Tally", "Votes", "Voters", "OK"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, row := range rows {
		displayID := row.ID
		if len(displayID) > 8 {
			displayID = displayID[:8]
		}
		ok := "yes"
		if !row.Consistent {
			ok = "NO"
		}
		table.Append([]string{
			displayID,
			row.Question,
			row.CreatedBy,
			row.CreatedAt,
			row.Tally,
			strconv.Itoa(row.Votes),
			strconv.Itoa(row.Voters),
			ok,
		})
	}
	table.Render()
	return nil
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
