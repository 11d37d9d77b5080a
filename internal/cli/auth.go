package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"appointment-booking-client/internal/models"
)

func newLoginCommand(app func() *App) *cobra.Command {
	var creds models.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			s, err := a.Session.Login(cmd.Context(), creds)
			if err != nil {
				return failure(err, "Login failed")
			}
			fmt.Fprintf(a.Out, "Signed in as %s (%s)\n", s.User.Name, s.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCommand(app func() *App) *cobra.Command {
	var reg models.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a patient account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			s, err := a.Session.Register(cmd.Context(), reg)
			if err != nil {
				return failure(err, "Registration failed")
			}
			fmt.Fprintf(a.Out, "Welcome, %s\n", s.User.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Name, "name", "", "full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.Out, "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(*cobra.Command, []string) error {
			a := app()
			s, ok := a.Session.Current()
			if !ok {
				fmt.Fprintln(a.Out, "Not signed in")
				return nil
			}
			fmt.Fprintf(a.Out, "%s <%s> %s (id %d)\n", s.User.Name, s.User.Email, s.User.Role, s.User.UserID)
			return nil
		},
	}
}
