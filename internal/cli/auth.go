package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/internal/app"
	"github.com/fastygo/taskdesk/usecase"
	authUC "github.com/fastygo/taskdesk/usecase/auth"
)

func credentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("email", "e", "", "Account email")
	cmd.Flags().StringP("password", "p", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
}

func credentials(cmd *cobra.Command) (usecase.CredentialsPayload, error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		var err error
		if password, err = readSecret(cmd, "Password: "); err != nil {
			return usecase.CredentialsPayload{}, err
		}
	}
	if password == "" {
		return usecase.CredentialsPayload{}, errors.New("password is required")
	}
	return usecase.CredentialsPayload{Email: email, Password: password}, nil
}

// readSecret prompts without echo on a terminal and reads one line otherwise.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(secret), err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func signupCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			payload, err := credentials(cmd)
			if err != nil {
				return err
			}
			res, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdSignup, payload)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch res.(authUC.SignupOutcome) {
			case authUC.SignupConfirmationRequired:
				fmt.Fprintln(out, "Account created. Check your email to confirm it, then sign in.")
			default:
				fmt.Fprintf(out, "Account created. Signed in as %s.\n", payload.Email)
			}
			return nil
		}),
	}
	credentialFlags(cmd)
	return cmd
}

func signinCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and keep the session",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			payload, err := credentials(cmd)
			if err != nil {
				return err
			}
			if _, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdSignin, payload); err != nil {
				return err
			}
			state := a.Session.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", state.User.Email)
			return nil
		}),
	}
	credentialFlags(cmd)
	return cmd
}

func signoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			if _, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdSignout, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		}),
	}
}

func whoamiCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			res, err := a.Dispatcher.ExecuteQuery(ctx, usecase.QryAuthState, nil)
			if err != nil {
				return err
			}
			state := res.(domain.AuthState)
			return rt.render(cmd.OutOrStdout(), state, func(w io.Writer) error {
				if !state.Ready() {
					_, err := fmt.Fprintln(w, "Not signed in.")
					return err
				}
				fmt.Fprintf(w, "%s (%s)\n", state.User.Email, state.User.ID)
				if exp := state.Session.Expiry(); !exp.IsZero() {
					fmt.Fprintf(w, "Session expires %s\n", exp.Local().Format(time.RFC1123))
				}
				return nil
			})
		}),
	}
}

func refreshCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Renew the stored session",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			res, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdRefreshSession, nil)
			if err != nil {
				return err
			}
			session := res.(*domain.Session)
			if exp := session.Expiry(); !exp.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "Session refreshed, expires %s.\n", exp.Local().Format(time.RFC1123))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session refreshed.")
			return nil
		}),
	}
}

func forgotPasswordCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset email",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			email, _ := cmd.Flags().GetString("email")
			res, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdForgotPassword, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.(string))
			return nil
		}),
	}
	cmd.Flags().StringP("email", "e", "", "Account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func resetPasswordCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with a reset token",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(ctx context.Context, cmd *cobra.Command, args []string, a *app.App) error {
			email, _ := cmd.Flags().GetString("email")
			token, _ := cmd.Flags().GetString("token")
			password, _ := cmd.Flags().GetString("new-password")
			if password == "" {
				var err error
				if password, err = readSecret(cmd, "New password: "); err != nil {
					return err
				}
			}
			res, err := a.Dispatcher.ExecuteCommand(ctx, usecase.CmdResetPassword, usecase.ResetPasswordPayload{
				Email:       email,
				Token:       token,
				NewPassword: password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.(string))
			return nil
		}),
	}
	cmd.Flags().StringP("email", "e", "", "Account email")
	cmd.Flags().StringP("token", "t", "", "Reset token from the email")
	cmd.Flags().String("new-password", "", "New password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
