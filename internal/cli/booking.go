package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"appointment-booking-client/internal/booking"
)

func newBookCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a slot",
		Long:  "Book a slot. Without --slot the open slots for the chosen doctor and date are listed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.requireSession(); err != nil {
				return err
			}
			serviceID, _ := cmd.Flags().GetInt64("service")
			doctorID, _ := cmd.Flags().GetInt64("doctor")
			date, _ := cmd.Flags().GetString("date")
			slotID, _ := cmd.Flags().GetInt64("slot")

			ctx := cmd.Context()
			wf := a.Workflow
			if err := wf.Start(ctx, nil); err != nil {
				return failure(err, "Could not load services")
			}
			if err := wf.SelectService(ctx, serviceID); err != nil {
				return failure(err, "Could not load doctors")
			}
			if err := wf.SelectDoctor(ctx, doctorID); err != nil {
				return failure(err, "Could not load slots")
			}
			return pickAndSubmit(ctx, a, date, slotID)
		},
	}
	cmd.Flags().Int64("service", 0, "service id")
	cmd.Flags().Int64("doctor", 0, "doctor id")
	cmd.Flags().String("date", "", "date as YYYY-MM-DD")
	cmd.Flags().Int64("slot", 0, "slot id")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("doctor")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newRescheduleCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reschedule <appointment-id>",
		Short: "Move an appointment to another slot with the same doctor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.requireSession(); err != nil {
				return err
			}
			apptID, err := parseID(args[0])
			if err != nil {
				return err
			}
			date, _ := cmd.Flags().GetString("date")
			slotID, _ := cmd.Flags().GetInt64("slot")

			ctx := cmd.Context()
			if _, err := a.Appointments.EnsureFresh(ctx); err != nil {
				return failure(err, "Could not load appointments")
			}
			src, err := a.Appointments.RescheduleSource(apptID)
			if err != nil {
				return err
			}
			if err := a.Workflow.Start(ctx, src); err != nil {
				return failure(err, "Could not load services")
			}
			if date == "" {
				date = src.SlotDate
			}
			return pickAndSubmit(ctx, a, date, slotID)
		},
	}
	cmd.Flags().String("date", "", "new date as YYYY-MM-DD, defaults to the current one")
	cmd.Flags().Int64("slot", 0, "new slot id")
	return cmd
}

// pickAndSubmit selects date and slot on the running workflow and submits.
// With no slot it only lists what can be picked.
func pickAndSubmit(ctx context.Context, a *App, date string, slotID int64) error {
	wf := a.Workflow
	if err := wf.SelectDate(ctx, date); err != nil {
		return failure(err, "Could not load slots")
	}
	if slotID == 0 {
		renderSlots(a.Out, a.Slots.Views())
		return nil
	}
	if err := wf.SelectSlot(slotID); err != nil {
		return err
	}

	mode := wf.Mode()
	appt, err := wf.Submit(ctx)
	if err != nil {
		var se *booking.SubmitError
		if errors.As(err, &se) {
			return fmt.Errorf("%s", se.Message)
		}
		return err
	}
	verb := "Booked"
	if mode == booking.ModeReschedule {
		verb = "Rescheduled"
	}
	fmt.Fprintf(a.Out, "%s appointment %d: %s %s-%s with %s (%s)\n",
		verb, appt.ID, appt.SlotDate, hhmm(appt.StartTime), hhmm(appt.EndTime), appt.DoctorName, appt.Status)
	return nil
}
