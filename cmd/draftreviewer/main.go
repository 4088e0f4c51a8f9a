package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"DraftReviewer/internal/app"
	"DraftReviewer/internal/config"
	"DraftReviewer/internal/logging"
)

const usage = `usage: draftreviewer <command> [flags]

commands:
  show        print the submission state of a draft
  set-status  change the review status of a draft and save it
  clean       rewrite submission templates in canonical form
  delete      delete a draft with a reason
  sweep       run one stale-draft sweep
  watch       run sweeps on the configured interval`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("draftreviewer: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	switch args[0] {
	case "show":
		return runShow(ctx, application, args[1:], out)
	case "set-status":
		return runSetStatus(ctx, application, args[1:])
	case "clean":
		return runClean(ctx, application, args[1:])
	case "delete":
		return runDelete(ctx, application, args[1:])
	case "sweep":
		return runSweep(ctx, application, out)
	case "watch":
		return application.Watch(ctx)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func runShow(ctx context.Context, application *app.Application, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	title := fs.String("title", "", "Draft title, e.g. Draft:Example")
	preview := fs.Bool("preview", false, "Print the canonical page text instead of the summary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return errors.New("title is required")
	}

	reviewer := application.Reviewer()
	review, err := reviewer.Load(ctx, *title)
	if err != nil {
		return err
	}

	if *preview {
		text, err := reviewer.Render(ctx, review)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)
		return err
	}

	sub := review.Submission
	fmt.Fprintf(out, "title:      %s\n", review.Page.Title())
	fmt.Fprintf(out, "pending:    %t\n", sub.IsPending)
	fmt.Fprintf(out, "reviewing:  %t\n", sub.IsUnderReview)
	fmt.Fprintf(out, "declined:   %t\n", sub.IsDeclined)
	fmt.Fprintf(out, "draft:      %t\n", sub.IsDraft)
	fmt.Fprintf(out, "submitted:  %t\n", sub.IsCurrentlySubmitted)
	fmt.Fprintf(out, "templates:  %d\n", len(sub.Templates))
	for _, param := range sub.Params {
		fmt.Fprintf(out, "  %s = %s\n", param.Key, param.Value)
	}
	return nil
}

func runSetStatus(ctx context.Context, application *app.Application, args []string) error {
	fs := flag.NewFlagSet("set-status", flag.ExitOnError)
	title := fs.String("title", "", "Draft title, e.g. Draft:Example")
	code := fs.String("status", "", `Status code: "" (pending), d, t or r`)
	summary := fs.String("summary", "", "Edit summary (defaults to a generated one)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return errors.New("title is required")
	}

	reviewer := application.Reviewer()
	review, err := reviewer.Load(ctx, *title)
	if err != nil {
		return err
	}
	return reviewer.SetStatus(ctx, review, *code, *summary)
}

func runClean(ctx context.Context, application *app.Application, args []string) error {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	title := fs.String("title", "", "Draft title, e.g. Draft:Example")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return errors.New("title is required")
	}

	reviewer := application.Reviewer()
	review, err := reviewer.Load(ctx, *title)
	if err != nil {
		return err
	}
	return reviewer.Clean(ctx, review)
}

func runDelete(ctx context.Context, application *app.Application, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	title := fs.String("title", "", "Draft title, e.g. Draft:Example")
	reason := fs.String("reason", "", "Deletion reason recorded in the log")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" || *reason == "" {
		return errors.New("title and reason are required")
	}

	reviewer := application.Reviewer()
	review, err := reviewer.Load(ctx, *title)
	if err != nil {
		return err
	}
	return reviewer.Delete(ctx, review, *reason)
}

func runSweep(ctx context.Context, application *app.Application, out io.Writer) error {
	report, err := application.Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run %s: checked %d, skipped %d, failed %d, flagged %d\n",
		report.RunID, report.Checked, report.Skipped, report.Failed, len(report.Flagged))
	for _, draft := range report.Flagged {
		fmt.Fprintf(out, "  %s (last edit %s)\n", draft.Title, draft.LastModified.Format("2006-01-02"))
	}
	return nil
}
