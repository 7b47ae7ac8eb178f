package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/philipparndt/goratio/pkg/watcher"
	"github.com/spf13/cobra"
)

var watchSeries string

var watchCmd = &cobra.Command{
	Use:   "watch [session]",
	Short: "Print the session summary whenever the session file changes",
	Args:  cobra.ExactArgs(1),
	Run:   runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchSeries, "series", "", "series location if it moved")
}

func runWatch(cmd *cobra.Command, args []string) {
	path := args[0]

	show := func(string) {
		l, err := loadSession(path, watchSeries, false)
		if err != nil {
			logger.Error("reloading session failed", "path", path, "error", err)
			return
		}
		fmt.Println()
		printSummary(l)
	}
	show(path)

	fw, err := watcher.NewFileWatcher(cfg.Display.Debounce(), logger)
	if err != nil {
		fatal("starting watcher", err)
	}
	defer fw.Close()

	if err := fw.Watch([]string{path}, show); err != nil {
		fatal("watching session", err)
	}
	fw.Start()
	logger.Info("watching session", "path", path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
	case <-fw.Done():
	}
}
