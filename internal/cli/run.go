// Package cli implements the interactive terminal session and single-query
// execution behind the run command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	espalier "github.com/aretw0/espalier"
)

// RunQuery executes one query and prints the result.
func RunQuery(ctx context.Context, assistant *espalier.Assistant, query string, verbose bool) error {
	display := NewDisplay(verbose)
	res, err := assistant.Ask(ctx, query)
	if err != nil {
		display.Error(err)
		return err
	}
	display.Result(res)
	return nil
}

// RunInteractive starts the read-ask-print loop. It returns when the user
// exits or the process receives SIGINT/SIGTERM.
func RunInteractive(ctx context.Context, assistant *espalier.Assistant, verbose bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	display := NewDisplay(verbose)
	display.Banner(espalier.Version)

	lines := readLines(ctx, os.Stdin)

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			fmt.Println()
			display.Info(fmt.Sprintf("Interrupted. %d interactions this session. Goodbye!", assistant.HistoryLen()))
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Println()
				return nil
			}
			input := strings.TrimSpace(line)
			switch strings.ToLower(input) {
			case "":
				continue
			case "exit", "quit":
				display.Info(fmt.Sprintf("%d interactions this session. Goodbye!", assistant.HistoryLen()))
				return nil
			case "history":
				display.History(assistant.HistorySummary())
				continue
			case "clear":
				assistant.ClearHistory()
				display.Info("History cleared.")
				continue
			}

			res, err := assistant.Ask(ctx, input)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				display.Error(err)
				continue
			}
			display.Result(res)
		}
	}
}

// readLines feeds input lines to the returned channel and closes it at EOF.
// The reader goroutine exits when the context is cancelled, even with a
// line pending and no receiver left.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	scanner := bufio.NewScanner(r)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
