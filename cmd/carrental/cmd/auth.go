package cmd

import (
	"fmt"
	"io"

	"github.com/jrsteele09/go-car-rental/auth"
	"github.com/jrsteele09/go-car-rental/format"
	"github.com/jrsteele09/go-car-rental/internal/utils"
	"github.com/jrsteele09/go-car-rental/token"
	"github.com/jrsteele09/go-car-rental/users"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and store the session",
		Long: `Sign in with a username and password. The password is read from
standard input when --password is not given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.secret(cmd, "Password", password)
			if err != nil {
				return err
			}
			resp, err := a.auth.Login(cmd.Context(), auth.Credentials{Username: args[0], Password: pw})
			if err != nil {
				return err
			}
			printSignedIn(cmd.OutOrStdout(), resp.User)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	return cmd
}

func printSignedIn(w io.Writer, p *users.Profile) {
	if p == nil {
		fmt.Fprintln(w, "Signed in.")
		return
	}
	fmt.Fprintf(w, "Signed in as %s (%s).\n", p.FullName(), p.Role)
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.auth.Logout(cmd.Context()); err != nil {
				// the local session is gone either way
				a.logger.Warn().Err(err).Msg("logout request failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var req auth.RegisterRequest
	var role string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			req.Username = args[0]
			req.Role = users.RoleType(role)
			if req.Password, err = a.secret(cmd, "Password", req.Password); err != nil {
				return err
			}
			if req.PasswordConfirm, err = a.secret(cmd, "Confirm password", req.PasswordConfirm); err != nil {
				return err
			}
			resp, err := a.auth.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			if resp.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			}
			printSignedIn(cmd.OutOrStdout(), resp.User)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Email, "email", "", "email address")
	f.StringVar(&req.Password, "password", "", "password (read from stdin when empty)")
	f.StringVar(&req.PasswordConfirm, "password-confirm", "", "password again (read from stdin when empty)")
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	f.StringVar(&req.Phone, "phone", "", "phone number")
	f.StringVar(&role, "role", string(users.RoleCustomer), "customer or fleet")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.auth.IsAuthenticated() {
				return auth.NotSignedInErr
			}
			p := a.auth.CurrentUser()
			if refresh || p == nil {
				var err error
				if p, err = a.auth.Me(cmd.Context()); err != nil {
					return err
				}
			}
			printProfile(cmd.OutOrStdout(), p)
			// opaque tokens carry no expiry to show
			if claims, err := token.Inspect(a.auth.AccessToken()); err == nil && !claims.ExpiresAt.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), tokenStatus(claims))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch the profile from the API instead of the cache")
	return cmd
}

func tokenStatus(c *token.Claims) string {
	at := c.ExpiresAt.Local().Format(format.DateTimeLayout)
	if c.Expired() {
		return fmt.Sprintf("Access token expired %s; it is refreshed on the next request.", at)
	}
	return fmt.Sprintf("Access token valid until %s.", at)
}

func printProfile(w io.Writer, p *users.Profile) {
	tw := newTable(w, "FIELD", "VALUE")
	row(tw, "Username", p.Username)
	row(tw, "Name", p.FullName())
	row(tw, "Email", p.Email)
	row(tw, "Phone", p.Phone)
	row(tw, "Role", p.Role)
	tw.Flush()
}

func newProfileCmd(a *app) *cobra.Command {
	var firstName, lastName, email, phone string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the signed-in user's profile",
		Long:  `Only the flags given are changed.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var u auth.ProfileUpdate
			f := cmd.Flags()
			if f.Changed("first-name") {
				u.FirstName = utils.Ptr(firstName)
			}
			if f.Changed("last-name") {
				u.LastName = utils.Ptr(lastName)
			}
			if f.Changed("email") {
				u.Email = utils.Ptr(email)
			}
			if f.Changed("phone") {
				u.Phone = utils.Ptr(phone)
			}
			p, err := a.auth.UpdateProfile(cmd.Context(), u)
			if err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), p)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&firstName, "first-name", "", "first name")
	f.StringVar(&lastName, "last-name", "", "last name")
	f.StringVar(&email, "email", "", "email address")
	f.StringVar(&phone, "phone", "", "phone number")
	return cmd
}

func newPasswdCmd(a *app) *cobra.Command {
	var req auth.ChangePasswordRequest
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the signed-in user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if req.OldPassword, err = a.secret(cmd, "Current password", req.OldPassword); err != nil {
				return err
			}
			if req.NewPassword, err = a.secret(cmd, "New password", req.NewPassword); err != nil {
				return err
			}
			if req.NewPasswordConfirm, err = a.secret(cmd, "Confirm new password", req.NewPasswordConfirm); err != nil {
				return err
			}
			resp, err := a.auth.ChangePassword(cmd.Context(), req)
			if err != nil {
				return err
			}
			msg := resp.Message
			if msg == "" {
				msg = "Password changed."
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.OldPassword, "old", "", "current password")
	f.StringVar(&req.NewPassword, "new", "", "new password")
	f.StringVar(&req.NewPasswordConfirm, "confirm", "", "new password again")
	return cmd
}
