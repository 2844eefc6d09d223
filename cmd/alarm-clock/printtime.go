package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/alarm-clock/internal/clock"
	"github.com/sweeney/alarm-clock/internal/logic"
)

var printTimeCmd = &cobra.Command{
	Use:   "print-time",
	Short: "Print the clock and exit",
	Long: `Print-time prints the clock reading, the configured alarm and when it
next fires. With --ntp it also queries the NTP server and prints the network
time, without setting the clock.`,
	Args: cobra.NoArgs,
	RunE: runPrintTime,
}

func init() {
	printTimeCmd.Flags().Bool("ntp", false, "Also query the NTP server")
	printTimeCmd.Flags().String("ntp-server", clock.DefaultNTPServer, "NTP server to query")
	rootCmd.AddCommand(printTimeCmd)
}

func runPrintTime(cmd *cobra.Command, args []string) error {
	c := cfg
	loc, err := c.Location()
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	rtc := clock.NewSystemRTC(loc)
	useNTP, _ := cmd.Flags().GetBool("ntp")

	var fetcher clock.NetworkTime
	if useNTP {
		fetcher = clock.NewNTPFetcher(c.NTP.Server, c.NTP.Timeout)
	}
	return printTime(cmd.Context(), cmd, rtc, c.Settings().Alarm, fetcher, loc)
}

// printer is the output side of a cobra command.
type printer interface {
	Printf(format string, i ...interface{})
	Println(i ...interface{})
}

// wallClock is a clock peripheral that also knows the calendar date.
type wallClock interface {
	clock.Peripheral
	WallTime() time.Time
}

func printTime(ctx context.Context, out printer, rtc wallClock, alarm logic.AlarmConfig, fetcher clock.NetworkTime, loc *time.Location) error {
	ts, err := clock.NewSource(rtc).Now()
	if err != nil {
		return err
	}
	out.Printf("clock: %s\n", ts)
	if next, ok := logic.NextAlarm(alarm, rtc.WallTime()); ok {
		out.Printf("alarm: %s, next %s\n", alarm, next.Format("Mon 2006-01-02 15:04"))
	} else {
		out.Printf("alarm: %s (disabled)\n", alarm)
	}

	if fetcher == nil {
		return nil
	}
	t, err := fetcher.FetchTime(ctx)
	if err != nil {
		return fmt.Errorf("query ntp: %w", err)
	}
	out.Printf("ntp:   %s\n", logic.TimestampOf(t.In(loc)))
	return nil
}
