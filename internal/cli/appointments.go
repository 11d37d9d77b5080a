package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"appointment-booking-client/internal/models"
)

func renderAppointments(w io.Writer, list []models.Appointment, withPatient bool) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No appointments")
		return
	}
	header := []string{"ID", "Date", "Time", "Service", "Doctor", "Status"}
	if withPatient {
		header = append(header, "Patient")
	}
	t := newTable(w, header...)
	for _, a := range list {
		row := []string{
			id(a.ID), a.SlotDate, hhmm(a.StartTime) + "-" + hhmm(a.EndTime),
			a.ServiceName, a.DoctorName, string(a.Status),
		}
		if withPatient {
			row = append(row, a.UserName+" <"+a.UserEmail+">")
		}
		t.Append(row)
	}
	t.Render()
}

func newAppointmentsCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "appointments",
		Short: "List your appointments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.requireSession(); err != nil {
				return err
			}
			list, err := a.Appointments.Refresh(cmd.Context())
			if err != nil {
				return failure(err, "Could not load appointments")
			}
			renderAppointments(a.Out, list, false)
			return nil
		},
	}
}

func newCancelCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <appointment-id>",
		Short: "Cancel a pending or approved appointment",
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
			if _, err := a.Appointments.EnsureFresh(cmd.Context()); err != nil {
				return failure(err, "Could not load appointments")
			}
			if err := a.Appointments.Cancel(cmd.Context(), apptID); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Cancelled appointment %d\n", apptID)
			return nil
		},
	}
}

func newDashboardCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summarise your appointments and today's availability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.requireSession(); err != nil {
				return err
			}
			s, _ := a.Session.Current()
			sum := a.Dashboard.Summary(cmd.Context())

			fmt.Fprintf(a.Out, "Hello, %s\n", s.User.Name)
			t := newTable(a.Out, "Total", "Upcoming", "Pending", "Completed", "Open slots today")
			t.Append([]string{
				fmt.Sprint(sum.Total), fmt.Sprint(len(sum.Upcoming)), fmt.Sprint(sum.Pending),
				fmt.Sprint(sum.Completed), fmt.Sprint(sum.AvailableToday),
			})
			t.Render()

			fmt.Fprintln(a.Out, "Next appointments")
			renderAppointments(a.Out, sum.Top, false)
			return nil
		},
	}
}
