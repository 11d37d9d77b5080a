package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"appointment-booking-client/internal/models"
)

func newAdminCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator operations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// cobra runs only the nearest persistent hook, so chain to root.
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return app().requireAdmin()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "appointments",
		Short: "List every appointment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			list, err := a.Board.Load(cmd.Context())
			if err != nil {
				return failure(err, "Could not load appointments")
			}
			renderAppointments(a.Out, list, true)
			return nil
		},
	})
	cmd.AddCommand(
		newTransitionCommand(app, "approve", models.StatusApproved),
		newTransitionCommand(app, "reject", models.StatusRejected),
		newCreateSlotCommand(app),
	)
	return cmd
}

func newTransitionCommand(app func() *App, use string, to models.AppointmentStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <appointment-id>",
		Short: "Mark a pending appointment " + string(to),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			apptID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.Board.Load(cmd.Context()); err != nil {
				return failure(err, "Could not load appointments")
			}
			updated, err := a.Board.Transition(cmd.Context(), apptID, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Appointment %d is now %s\n", updated.ID, updated.Status)
			return nil
		},
	}
}

func newCreateSlotCommand(app func() *App) *cobra.Command {
	var req models.SlotRequest
	cmd := &cobra.Command{
		Use:   "create-slot",
		Short: "Open a new slot for a doctor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			slot, err := a.Supply.Create(cmd.Context(), req)
			if err != nil {
				return failure(err, "Failed to create slot")
			}
			fmt.Fprintf(a.Out, "Created slot %d: %s %s-%s\n", slot.ID, slot.SlotDate, hhmm(slot.StartTime), hhmm(slot.EndTime))
			return nil
		},
	}
	cmd.Flags().Int64Var(&req.DoctorID, "doctor", 0, "doctor id")
	cmd.Flags().StringVar(&req.SlotDate, "date", "", "date as YYYY-MM-DD")
	cmd.Flags().StringVar(&req.StartTime, "start", "", "start time as HH:MM")
	cmd.Flags().StringVar(&req.EndTime, "end", "", "end time as HH:MM")
	for _, f := range []string{"doctor", "date", "start", "end"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
