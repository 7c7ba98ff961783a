package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/parkctl/filter"
	"github.com/s0up4200/parkctl/parking"
)

var (
	reservationPlate string
	reservationName  string
	reservationFrom  string
	reservationUntil string
)

var reservationsCmd = &cobra.Command{
	Use:     "reservations",
	Aliases: []string{"reservation", "res"},
	Short:   "List, create and end visitor reservations",
}

var reservationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active reservations",
	Long: `List active reservations, optionally narrowed by a filter expression.

Examples:
  parkctl reservations list --filter 'plate == "AB12CD"'
  parkctl reservations list --filter 'minutesLeft() < 30'
  parkctl reservations list --preset today`,
	Args: cobra.NoArgs,
	RunE: runReservationsList,
}

var reservationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Book parking for a license plate",
	Long: `Book parking for a license plate. Times are ISO-8601; values without an
offset are read as UTC. --from defaults to now and the server picks the end
when --until is omitted.`,
	Args: cobra.NoArgs,
	RunE: runReservationsCreate,
}

var reservationsEndCmd = &cobra.Command{
	Use:   "end ID",
	Short: "End an active reservation",
	Args:  cobra.ExactArgs(1),
	RunE:  runReservationsEnd,
}

func init() {
	reservationsListCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	reservationsListCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	reservationsListCmd.MarkFlagsMutuallyExclusive("filter", "preset")

	reservationsCreateCmd.Flags().StringVar(&reservationPlate, "plate", "", "license plate")
	reservationsCreateCmd.Flags().StringVar(&reservationName, "name", "", "display name for the plate")
	reservationsCreateCmd.Flags().StringVar(&reservationFrom, "from", "", "start time (default now)")
	reservationsCreateCmd.Flags().StringVar(&reservationUntil, "until", "", "end time")
	_ = reservationsCreateCmd.MarkFlagRequired("plate")

	reservationsCmd.AddCommand(reservationsListCmd)
	reservationsCmd.AddCommand(reservationsCreateCmd)
	reservationsCmd.AddCommand(reservationsEndCmd)
}

func runReservationsList(cmd *cobra.Command, args []string) error {
	program, err := getFilterProgram()
	if err != nil {
		return err
	}

	reservations, err := client.ListReservations(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list reservations: %w", err)
	}

	if program != nil {
		reservations, err = filter.Reservations(program, reservations)
		if err != nil {
			return err
		}
	}

	printReservations(reservations)
	return nil
}

func runReservationsCreate(cmd *cobra.Command, args []string) error {
	req := parking.CreateReservationRequest{
		LicensePlate: reservationPlate,
		Name:         reservationName,
	}

	var err error
	if req.DateFrom, err = parseTimeFlag("from", reservationFrom); err != nil {
		return err
	}
	if req.DateUntil, err = parseTimeFlag("until", reservationUntil); err != nil {
		return err
	}
	if !req.DateFrom.IsZero() && !req.DateUntil.IsZero() && !req.DateUntil.After(req.DateFrom) {
		return fmt.Errorf("--until must be after --from")
	}

	reservation, err := client.CreateReservation(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	fmt.Printf("✓ Reservation %d created for %s\n", reservation.ID, reservation.LicensePlate)
	fmt.Printf("  %s → %s\n", formatTime(reservation.StartTime), formatTime(reservation.EndTime))
	return nil
}

func runReservationsEnd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid reservation ID: %s", args[0])
	}

	if err := client.EndReservation(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to end reservation: %w", err)
	}

	fmt.Printf("✓ Reservation %d ended\n", id)
	return nil
}

func parseTimeFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := parking.ParseTime(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return t, nil
}
