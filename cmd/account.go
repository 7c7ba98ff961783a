package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/parkctl/parking"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show the permit balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := client.GetAccount(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		printAccount(account)
		return nil
	},
}

var zoneCmd = &cobra.Command{
	Use:   "zone",
	Short: "Show today's paid parking hours for the permit zone",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		zone, err := client.GetZone(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get zone: %w", err)
		}
		printZone(zone)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show account, zone and active reservations",
	Long: `Fetch the account balance, today's zone hours and the active reservations
concurrently and print a summary.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	var (
		account      *parking.Account
		zone         *parking.Zone
		reservations []parking.Reservation
	)

	// The calls share one session; the first to run logs in for all three
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		account, err = client.GetAccount(ctx)
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		zone, err = client.GetZone(ctx)
		if err != nil {
			return fmt.Errorf("failed to get zone: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reservations, err = client.ListReservations(ctx)
		if err != nil {
			return fmt.Errorf("failed to list reservations: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	printAccount(account)
	fmt.Println()
	printZone(zone)
	fmt.Println()
	printReservations(reservations)
	return nil
}

func printAccount(account *parking.Account) {
	fmt.Printf("Permit %d\n", account.ID)
	fmt.Printf("- Remaining balance: %d\n", account.RemainingTime)
	fmt.Printf("- Active reservations: %d\n", account.ActiveReservationCount)
}

func printZone(zone *parking.Zone) {
	if zone == nil {
		fmt.Println("No paid parking hours today.")
		return
	}
	fmt.Printf("Zone %s\n", zone.ID)
	fmt.Printf("- Paid parking: %s until %s\n", formatTime(zone.StartTime), formatTime(zone.EndTime))
}

func printReservations(reservations []parking.Reservation) {
	if len(reservations) == 0 {
		fmt.Println("No active reservations.")
		return
	}

	fmt.Printf("Found %d reservations:\n", len(reservations))
	fmt.Println(strings.Repeat("-", 60))
	for _, r := range reservations {
		fmt.Printf("• %d  %s", r.ID, r.LicensePlate)
		if r.Name != "" && r.Name != r.LicensePlate {
			fmt.Printf(" (%s)", r.Name)
		}
		fmt.Println()
		fmt.Printf("  %s → %s\n", formatTime(r.StartTime), formatTime(r.EndTime))
	}
}
