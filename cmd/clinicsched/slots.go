package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/app"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
)

func slotsCmd() *cobra.Command {
	var (
		doctorID int64
		date     string
		duration int
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print a doctor's free slots for a day",
		Example: "  clinicsched slots --doctor 3 --date 2024-03-01\n" +
			"  clinicsched slots --doctor 3 --date 2024-03-01 --duration 45",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = rt.log.Sync() }()

			a := app.New(rt.cfg, rt.db, rt.metrics, rt.log)
			defer func() { _ = a.Close() }()

			ctx := cmd.Context()
			d, err := a.Doctors.GetDoctor(ctx, doctorID)
			if err != nil {
				return err
			}
			if duration == 0 {
				duration = a.Availability.DefaultSlotMinutes()
			}

			slots, err := a.Availability.FreeSlots(ctx, doctorID, date, duration)
			if err != nil {
				return err
			}
			printSlots(cmd, d.Name, date, duration, slots)
			return nil
		},
	}

	cmd.Flags().Int64Var(&doctorID, "doctor", 0, "doctor identifier")
	cmd.Flags().StringVar(&date, "date", "", "day to inspect (YYYY-MM-DD)")
	cmd.Flags().IntVar(&duration, "duration", 0, "slot length in minutes; 0 uses the configured default")
	_ = cmd.MarkFlagRequired("doctor")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func printSlots(cmd *cobra.Command, doctorName, date string, minutes int, slots []calendar.Interval) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Free %d-minute slots for Dr. %s on %s:\n", minutes, doctorName, date)
	if len(slots) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for _, s := range slots {
		fmt.Fprintf(out, "  %s\n", s)
	}
}
