package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"boqtrack/internal/resource"
	"boqtrack/internal/transport"
)

func newLoginCmd(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.API.Login(cmd.Context(), username, password)
			if err != nil {
				if transport.IsUnauthorized(err) {
					report(app, "not authorized: invalid credentials", resource.KindError)
				} else {
					report(app, err.Error(), resource.KindError)
				}
				return err
			}
			report(app, fmt.Sprintf("logged in as %s", sess.User.Name), resource.KindSuccess)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account username")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.API.Logout(); err != nil {
				return err
			}
			report(app, "logged out", resource.KindSuccess)
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session's user",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, ok := app.Sessions.Current()
			if !ok {
				return fmt.Errorf("no active session")
			}
			return writeJSON(app, sess.User)
		},
	}
}
