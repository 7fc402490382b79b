package ai

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/assistant"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/paularlott/cli"
)

// ErrOffline is returned when the backend has no AI provider configured
var ErrOffline = errors.New("AI assistant is offline: the server has no AI provider configured")

func Commands() []*cli.Command {
	return []*cli.Command{
		StatusCommand(),
		ChatCommand(),
		CRUDCommand(),
	}
}

func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:        "status",
		Usage:       "Show whether the assistant is available",
		Description: "Check whether the server has an AI provider configured",
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runStatus(ctx, a)
		},
	}
}

func runStatus(ctx context.Context, a *app.App) error {
	online, err := assistant.New(a.Client).Online(ctx)
	if err != nil {
		log.Error("Failed to check AI status", "error", err)
		return err
	}
	log.Info("Checked AI status", "online", online)
	return a.Out.Emit(map[string]bool{"online": online}, func(p *render.Printer) {
		if online {
			p.Println("AI assistant is online")
			return
		}
		p.Println("AI assistant is offline")
	})
}

func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:        "chat",
		Usage:       "Ask the assistant about resources",
		Description: "Ask a question in plain language; with --interactive, keep asking follow-ups read from stdin",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "interactive", Usage: "Read follow-up questions from stdin until EOF or 'exit'"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var in io.Reader
			if cmd.GetBool("interactive") {
				in = os.Stdin
			}
			return runChat(ctx, a, cmd.GetStringArg("query"), in)
		},
	}
}

// runChat asks first, then every line of in when in is not nil
func runChat(ctx context.Context, a *app.App, first string, in io.Reader) error {
	conv := assistant.New(a.Client)
	if err := requireOnline(ctx, conv); err != nil {
		return err
	}

	ask := func(q string) error {
		log.Debug("Asking assistant", "query", q, "session", conv.SessionID())
		msg, err := conv.Ask(ctx, q)
		if err != nil && !msg.Failed {
			return err
		}
		printMessage(a.Out, msg)
		return err
	}

	if strings.TrimSpace(first) != "" {
		if err := ask(first); err != nil && in == nil {
			return err
		}
	} else if in == nil {
		return assistant.ErrEmptyQuery
	}
	if in == nil {
		return nil
	}

	scanner := bufio.NewScanner(in)
	for {
		a.Out.Printf("> ")
		if !scanner.Scan() {
			a.Out.Println()
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		switch q {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		// failures are already in the transcript; keep the session going
		ask(q)
	}
}

func CRUDCommand() *cli.Command {
	return &cli.Command{
		Name:        "crud",
		Usage:       "Change resources with a plain-language instruction",
		Description: "Ask the assistant to add, update or delete resources in one department",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "instruction", Required: true},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "department", Usage: "Department the instruction applies to", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runCRUD(ctx, a, cmd.GetStringArg("instruction"), cmd.GetString("department"))
		},
	}
}

func requireOnline(ctx context.Context, conv *assistant.Conversation) error {
	online, err := conv.Online(ctx)
	if err != nil {
		return err
	}
	if !online {
		return ErrOffline
	}
	return nil
}

func runCRUD(ctx context.Context, a *app.App, instruction, department string) error {
	conv := assistant.New(a.Client)
	if err := requireOnline(ctx, conv); err != nil {
		return err
	}

	log.Debug("Sending instruction", "department", department)
	msg, err := conv.Instruct(ctx, instruction, department)
	if err != nil {
		if msg.Failed {
			printMessage(a.Out, msg)
		}
		return err
	}
	printMessage(a.Out, msg)
	return nil
}

func printMessage(out *render.Printer, msg assistant.Message) {
	out.Emit(msg, func(p *render.Printer) {
		if msg.Operation != "" {
			p.Printf("[%s] ", msg.Operation)
		}
		p.Println(msg.Content)
		for _, r := range msg.Resources {
			p.Printf("  - %s x%d at %s, %s (%s)\n", r.DeviceName, r.Quantity, r.Location, r.Department, render.Rupees(r.Cost))
		}
		if s := msg.Statistics; s != nil && s.TotalResources > 0 {
			p.Printf("  %d resources, %s total\n", s.TotalResources, render.Rupees(s.TotalCost))
		}
	})
}
