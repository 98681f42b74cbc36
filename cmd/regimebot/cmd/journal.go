package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/regimebot/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the SQLite journal",
	Long: `Query orders and decision-log entries from the journal database.

Examples:
  regimebot journal orders today
  regimebot journal orders 2026-08-30
  regimebot journal ticks 2026-08-30 --csv`,
}

var journalOrdersCmd = &cobra.Command{
	Use:   "orders <YYYY-MM-DD>|today",
	Short: "List orders opened on a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalOrders,
}

var journalTicksCmd = &cobra.Command{
	Use:   "ticks <YYYY-MM-DD>|today",
	Short: "List decision-log entries for a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTicks,
}

var (
	journalDBPath string
	journalCSV    bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalOrdersCmd)
	journalCmd.AddCommand(journalTicksCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./regimebot.db", "path to SQLite journal DB")
	journalCmd.PersistentFlags().BoolVar(&journalCSV, "csv", false, "emit CSV instead of a table")
}

func runJournalOrders(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(args[0])
	if err != nil {
		return err
	}

	orders, err := j.ListOrdersBetween(start, end)
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}

	if journalCSV {
		return journal.WriteOrdersCSV(os.Stdout, orders)
	}
	for _, o := range orders {
		fmt.Printf("%s  %s  %-4s  price=%.2f qty=%.8f stop=%.2f target=%.2f  %s\n",
			o.ID, o.Time.Format(time.RFC3339), o.Side,
			o.Price, o.Amount, o.Stop, o.Target, o.Status)
	}
	return nil
}

func runJournalTicks(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(args[0])
	if err != nil {
		return err
	}

	ticks, err := j.ListTicksBetween(start, end)
	if err != nil {
		return fmt.Errorf("query ticks: %w", err)
	}

	if journalCSV {
		return journal.WriteTicksCSV(os.Stdout, ticks)
	}
	for _, t := range ticks {
		fmt.Printf("%s  %-13s  %-5s  pnl=%+.2f equity=%.2f\n",
			t.Time.Format(time.RFC3339), t.State, t.Decision, t.PnL, t.Equity)
	}
	return nil
}

func dayBounds(day string) (time.Time, time.Time, error) {
	loc := time.Local
	if day == "today" {
		day = time.Now().In(loc).Format("2006-01-02")
	}
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date: %w", err)
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.Add(24 * time.Hour), nil
}
