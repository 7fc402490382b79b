package export

import (
	"context"
	"time"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/paularlott/cli"
)

func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:        "history",
		Usage:       "Show recent imports and exports",
		Description: "List the imports and exports run from this machine, most recent first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Number of runs to show", DefaultValue: 20},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runHistory(ctx, a, cmd.GetInt("limit"))
		},
	}
}

func runHistory(ctx context.Context, a *app.App, limit int) error {
	runs, err := a.Store.ListRuns(ctx, limit)
	if err != nil {
		log.Error("Failed to list run history", "error", err)
		return err
	}

	return a.Out.Emit(runs, func(p *render.Printer) {
		if len(runs) == 0 {
			p.Println("No runs recorded")
			return
		}
		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, []string{
				r.CreatedAt.Local().Format(time.DateTime),
				r.Kind,
				r.Status,
				render.OrNA(r.Department),
				render.OrNA(r.Target),
				r.Detail,
			})
		}
		p.Rows([]string{"WHEN", "KIND", "STATUS", "DEPARTMENT", "TARGET", "DETAIL"}, rows)
	})
}
