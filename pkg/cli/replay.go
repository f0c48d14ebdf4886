package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/axreplay/pkg/pipeline"
	"github.com/devicelab-dev/axreplay/pkg/report"
	"github.com/devicelab-dev/axreplay/pkg/signature"
)

var replayCommand = &cli.Command{
	Name:      "replay",
	Usage:     "Replay recorded interactions from a session file",
	ArgsUsage: "<session.json>",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "index",
			Usage: "Replay only the record at this index (default: all, in order)",
			Value: -1,
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Validate and report the target point without acting",
		},
		&cli.BoolFlag{
			Name:  "no-escalate",
			Usage: "Fail on the first unrecoverable stage instead of retrying",
		},
		&cli.Float64Flag{
			Name:  "min-confidence",
			Usage: "Override the acceptance threshold (0 = use config)",
		},
		&cli.StringFlag{
			Name:  "report-dir",
			Usage: "Write a JSON run report per replayed record to this directory",
		},
	},
	Action: runReplay,
}

func runReplay(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one session file argument")
	}

	session, err := signature.LoadSession(c.Args().First())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	drv, err := newDriver(c.String("driver"))
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		DryRun:        c.Bool("dry-run"),
		Escalate:      !c.Bool("no-escalate"),
		MinConfidence: c.Float64("min-confidence"),
	}

	// Interrupts cancel between records and between stages; a dispatch
	// already underway completes first.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(drv, cfg)

	indexes := sessionIndexes(session, c.Int("index"))
	failed := 0
	for _, i := range indexes {
		sig, err := session.At(i)
		if err != nil {
			return err
		}

		res := p.Run(ctx, sig, opts)

		if dir := c.String("report-dir"); dir != "" {
			rep := &report.RunReport{
				Signature: report.Summarize(sig),
				Session:   session.SourcePath,
				Index:     i,
				Result:    *res,
			}
			if path, werr := report.Write(dir, rep); werr != nil {
				fmt.Fprintf(os.Stderr, "warning: report not written: %v\n", werr)
			} else {
				fmt.Printf("report: %s\n", path)
			}
		}

		printResult(i, sig, res)
		if !res.Success {
			failed++
		}
		if ctx.Err() != nil {
			break
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d record(s) failed", failed, len(indexes))
	}
	return nil
}

func sessionIndexes(s *signature.Session, only int) []int {
	if only >= 0 {
		return []int{only}
	}
	out := make([]int, s.Len())
	for i := range out {
		out[i] = i
	}
	return out
}
