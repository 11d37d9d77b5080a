package cli

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"appointment-booking-client/internal/config"
)

const skipApp = "skip-app"

// NewRootCommand assembles the booking command tree. The engine is built
// once per invocation, before the selected command runs.
func NewRootCommand(cfg *config.Config, log *zap.Logger, out io.Writer) *cobra.Command {
	var app *App

	root := &cobra.Command{
		Use:           "booking",
		Short:         "Book and manage clinic appointments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipApp] == "true" {
				return nil
			}
			a, err := NewApp(cmd.Context(), cfg, log, out)
			if err != nil {
				return err
			}
			app = a
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
	}
	root.SetOut(out)

	get := func() *App { return app }
	root.AddCommand(
		newLoginCommand(get),
		newRegisterCommand(get),
		newLogoutCommand(get),
		newWhoamiCommand(get),
		newServicesCommand(get),
		newDoctorsCommand(get),
		newCalendarCommand(get),
		newSlotsCommand(get),
		newBookCommand(get),
		newRescheduleCommand(get),
		newAppointmentsCommand(get),
		newCancelCommand(get),
		newDashboardCommand(get),
		newAdminCommand(get),
		newStubServerCommand(cfg, log),
	)
	return root
}
