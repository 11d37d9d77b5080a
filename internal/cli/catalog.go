package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"appointment-booking-client/internal/calendar"
	"appointment-booking-client/internal/models"
	"appointment-booking-client/internal/slots"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	return t
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func parseID(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return v, nil
}

func newServicesCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List bookable services",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			list, err := a.Catalog.Services(cmd.Context())
			if err != nil {
				return failure(err, "Could not load services")
			}
			t := newTable(a.Out, "ID", "Service", "Description")
			for _, s := range list {
				t.Append([]string{id(s.ID), s.Name, s.Description})
			}
			t.Render()
			return nil
		},
	}
}

func newDoctorsCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "List doctors, optionally for one service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			serviceID, _ := cmd.Flags().GetInt64("service")

			var (
				list []models.Doctor
				err  error
			)
			if serviceID > 0 {
				list, err = a.Catalog.DoctorsByService(cmd.Context(), serviceID)
			} else {
				list, err = a.Catalog.Doctors(cmd.Context())
			}
			if err != nil {
				return failure(err, "Could not load doctors")
			}
			t := newTable(a.Out, "ID", "Doctor", "Title", "Service")
			for _, d := range list {
				t.Append([]string{id(d.ID), d.Name, d.Title, d.ServiceName})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().Int64("service", 0, "only doctors offering this service id")
	return cmd
}

func newCalendarCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a month with selectable days marked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			shift, _ := cmd.Flags().GetInt("month")
			for ; shift > 0; shift-- {
				a.Calendar.NextMonth()
			}
			for ; shift < 0; shift++ {
				a.Calendar.PrevMonth()
			}
			renderMonth(a.Out, a.Calendar)
			return nil
		},
	}
	cmd.Flags().Int("month", 0, "months relative to the current one")
	return cmd
}

// renderMonth prints the visible month Sunday-first. Past days are dimmed
// with parentheses and today is starred.
func renderMonth(w io.Writer, cal *calendar.Engine) {
	fmt.Fprintf(w, "%s\n", cal.Visible())
	t := newTable(w, "Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat")
	today := cal.Today()
	row := make([]string, 0, 7)
	for _, d := range cal.Grid() {
		cell := ""
		if d != nil {
			cell = strconv.Itoa(d.Day)
			switch {
			case d.Date == today:
				cell += "*"
			case !cal.Selectable(d.Date):
				cell = "(" + cell + ")"
			}
		}
		row = append(row, cell)
		if len(row) == 7 {
			t.Append(row)
			row = make([]string, 0, 7)
		}
	}
	if len(row) > 0 {
		t.Append(row)
	}
	t.Render()
}

func newSlotsCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Show a doctor's slots on a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			doctorID, _ := cmd.Flags().GetInt64("doctor")
			date, _ := cmd.Flags().GetString("date")
			if _, err := calendar.ParseDate(date, a.Calendar.Now().Location()); err != nil {
				return err
			}
			if _, err := a.Slots.Resolve(cmd.Context(), doctorID, date); err != nil {
				return failure(err, "Could not load slots")
			}
			renderSlots(a.Out, a.Slots.Views())
			return nil
		},
	}
	cmd.Flags().Int64("doctor", 0, "doctor id")
	cmd.Flags().String("date", "", "date as YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("doctor")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func renderSlots(w io.Writer, views []slots.View) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No slots on this date")
		return
	}
	t := newTable(w, "ID", "Start", "End", "State")
	for _, v := range views {
		state := "open"
		if v.Label != "" {
			state = v.Label
		}
		t.Append([]string{id(v.Slot.ID), hhmm(v.Slot.StartTime), hhmm(v.Slot.EndTime), state})
	}
	t.Render()
}

func hhmm(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}
