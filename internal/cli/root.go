// Package cli wires the resource controllers to a cobra command tree. Every
// catalog resource gets the same subcommands; there is no per-resource code.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"boqtrack/internal/api"
	"boqtrack/internal/config"
	"boqtrack/internal/resource"
	"boqtrack/internal/session"
)

// App carries the shared dependencies of every command.
type App struct {
	Cfg      config.Cfg
	Sessions *session.Store
	API      *api.Client
	Notify   *resource.Notifier

	Out io.Writer
	In  io.Reader
}

func (a *App) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

func (a *App) in() io.Reader {
	if a.In != nil {
		return a.In
	}
	return os.Stdin
}

// NewRootCmd builds the command tree.
func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "boq",
		Short:        "Telecom project/BOQ data client",
		SilenceUsage: true,
	}
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newResourcesCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newTimelineCmd(app))
	return cmd
}

// requireSession gates commands that talk to protected endpoints.
func requireSession(app *App) error {
	if _, ok := app.Sessions.Current(); !ok {
		return fmt.Errorf("not authorized: no active session, run 'boq login' first")
	}
	return nil
}

func writeJSON(app *App, v any) error {
	enc := json.NewEncoder(app.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// report surfaces an operation outcome through the transient channel and
// prints it.
func report(app *App, text string, kind resource.MessageKind) {
	app.Notify.Show(text, kind)
	if msg, ok := app.Notify.Current(); ok {
		prefix := "ok"
		if msg.Kind == resource.KindError {
			prefix = "error"
		}
		fmt.Fprintf(app.out(), "%s: %s\n", prefix, msg.Text)
	}
}

// parseSetFlags turns repeated --set key=value flags into a draft patch.
func parseSetFlags(pairs []string) (map[string]string, error) {
	out := map[string]string{}
	for _, p := range pairs {
		k, v, found := strings.Cut(p, "=")
		if !found || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", p)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

// awaitList drives a list controller through one fetch and returns the
// settled snapshot.
func awaitList(ctrl *resource.ListController[api.Record], done <-chan resource.Snapshot[api.Record], timeout time.Duration) (resource.Snapshot[api.Record], error) {
	ctrl.Refresh()
	deadline := time.After(timeout)
	for {
		select {
		case snap := <-done:
			if snap.State == resource.Loaded || snap.State == resource.Failed {
				return snap, nil
			}
		case <-deadline:
			return resource.Snapshot[api.Record]{}, fmt.Errorf("timed out waiting for list response")
		}
	}
}
