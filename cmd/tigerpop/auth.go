package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erazemk/tigerpop/internal/client"
	"github.com/erazemk/tigerpop/internal/session"
)

func newLoginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in with a username and password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Login(cmd.Context(), args[0], password)
			if err != nil {
				return fail(err)
			}
			if err := a.session.Set(cmd.Context(), &session.Info{Token: res.AccessToken, User: res.User}); err != nil {
				return err
			}
			return printValue(a.out, a.format, res.User, "Logged in as "+res.User.DisplayName())
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "signup <username> <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Signup(cmd.Context(), args[0], args[1], password)
			if err != nil {
				return fail(err)
			}
			return printValue(a.out, a.format, res,
				fmt.Sprintf("Account created (id %d). Log in with: tigerpop login %s -p ...", res.UserID, args[0]))
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newCASURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cas-url",
		Short: "Print the CAS login URL",
		Long: `Prints the URL to open in a browser to log in through CAS. After login
CAS redirects to the frontend callback with a ticket; pass it to "tigerpop cas".`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			u := client.CASLoginURL(a.cfg.CASURL, client.CallbackURL(a.cfg.FrontendURL))
			return printValue(a.out, a.format, map[string]string{"url": u}, u)
		},
	}
}

func newCASCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cas <ticket>",
		Short: "Log in with a CAS service ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.ValidateCAS(cmd.Context(), args[0], client.CallbackURL(a.cfg.FrontendURL))
			if err != nil {
				return fail(err)
			}
			info, err := a.session.SetToken(cmd.Context(), res.AccessToken)
			if err != nil {
				return err
			}
			if info.User.NetID == "" {
				info.User.NetID = res.NetID
				if err := a.session.Set(cmd.Context(), info); err != nil {
					return err
				}
			}
			return printValue(a.out, a.format, info.User, "Logged in as "+info.User.DisplayName())
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			return printValue(a.out, a.format, map[string]bool{"logged_in": false}, "Logged out")
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user as the backend sees it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.client.Verify(cmd.Context())
			if err != nil {
				return fail(err)
			}
			return printValue(a.out, a.format, u, fmt.Sprintf("%s (id %d)", u.DisplayName(), u.ID))
		},
	}
}
