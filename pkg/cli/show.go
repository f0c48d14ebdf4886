package cli

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/axreplay/pkg/core"
	"github.com/devicelab-dev/axreplay/pkg/signature"
)

var showCommand = &cli.Command{
	Name:      "show",
	Usage:     "List the recorded interactions in a session file",
	ArgsUsage: "<session.json>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("expected exactly one session file argument")
		}

		session, err := signature.LoadSession(c.Args().First())
		if err != nil {
			return err
		}

		for i, sig := range session.Records {
			valid := "ok"
			if err := sig.Validate(); err != nil {
				valid = "invalid: " + err.Error()
			}
			fmt.Printf("[%d] %s  window=%q  at=(%.0f,%.0f)  %s\n",
				i, sig.Describe(), sig.WindowTitle,
				sig.ActivationPoint.X, sig.ActivationPoint.Y, valid)
		}
		return nil
	},
}

var doctorCommand = &cli.Command{
	Name:  "doctor",
	Usage: "Check introspection permissions and enumerate live windows",
	Action: func(c *cli.Context) error {
		drv, err := newDriver(c.String("driver"))
		if err != nil {
			return err
		}

		if !drv.IsTrusted() {
			return fmt.Errorf("process is not trusted for UI introspection; " +
				"grant the accessibility permission and re-run")
		}
		fmt.Println("introspection: trusted")

		windows, err := drv.ListWindows("")
		if err != nil {
			return fmt.Errorf("window enumeration failed: %w", err)
		}
		if len(windows) == 0 {
			fmt.Println("no windows visible")
			return nil
		}
		for _, w := range windows {
			fmt.Printf("%s  %q  pid=%d  frame=%s  scale=%.1f\n",
				w.App, w.Title, w.PID, fmtRect(w.Frame), w.Scale)
		}
		return nil
	},
}

func fmtRect(r core.Rect) string {
	return fmt.Sprintf("(%.0f,%.0f %.0fx%.0f)", r.X, r.Y, r.W, r.H)
}

func printResult(idx int, sig *signature.ElementSignature, res *core.Result) {
	status := "ok"
	if res.DryRun {
		status = "dry-run"
	}
	if !res.Success {
		status = "FAILED"
	}

	where := ""
	if res.ExecutedAt != nil {
		where = fmt.Sprintf(" at (%.1f,%.1f)", res.ExecutedAt.X, res.ExecutedAt.Y)
	}
	mech := ""
	if res.Mechanism != core.MechanismNone {
		mech = " via " + string(res.Mechanism)
	}

	fmt.Printf("[%d] %s: %s%s%s (%d stage records, %v)\n",
		idx, sig.Describe(), status, where, mech, len(res.Trace.Records), res.Duration.Round(time.Millisecond))

	if !res.Success {
		if res.FailureKind != core.FailNone {
			fmt.Printf("    failure: %s\n", res.FailureKind)
		}
		if res.Error != "" {
			fmt.Printf("    error: %s\n", res.Error)
		}
		for _, rec := range res.Trace.Records {
			fmt.Printf("    %-3s %-4s %s %s\n", rec.Stage, rec.Outcome, rec.Strategy, rec.Detail)
		}
	}
}
