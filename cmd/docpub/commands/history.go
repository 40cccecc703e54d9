package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	pkgerrors "github.com/hypersql/docpub/internal/errors"
)

// HistoryCmd lists recent pipeline runs from the run store.
type HistoryCmd struct {
	Limit int `short:"n" help:"Maximum number of runs to show" default:"20"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cfg.Daemon.StorePath == "" {
		return pkgerrors.New(pkgerrors.CategoryConfig, pkgerrors.SeverityError,
			"no run store configured (daemon.store_path)")
	}

	store := openStore(cfg)
	defer func() { _ = store.Close() }()

	runs, err := store.RecentRuns(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tEVENT\tOWNER\tBRANCH\tSTATUS\tREASON")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.EventKind, run.Owner, run.Branch, run.Status, run.Reason)
	}
	return w.Flush()
}
