package cmd

import (
	"fmt"
	"io"

	"github.com/jrsteele09/go-car-rental/bookings"
	"github.com/jrsteele09/go-car-rental/format"
	"github.com/jrsteele09/go-car-rental/pricing"
	"github.com/spf13/cobra"
)

func newBookingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List, make, cancel and pay for bookings",
	}
	cmd.AddCommand(
		newBookingsListCmd(a),
		newBookingsGetCmd(a),
		newBookingsCreateCmd(a),
		newBookingsCancelCmd(a),
		newBookingsPayCmd(a),
	)
	return cmd
}

func (a *app) printBookings(w io.Writer, list []bookings.Booking) {
	tw := newTable(w, "ID", "CAR", "FROM", "TO", "DAYS", "TOTAL", "STATUS", "")
	for _, b := range list {
		action := ""
		if bookings.Cancellable(&b) {
			action = "cancellable"
		}
		row(tw, b.ID, b.CarName(),
			b.Start.Format(format.DateTimeLayout),
			b.End.Format(format.DateTimeLayout),
			b.Days(),
			a.money.Format(&b.TotalPrice),
			format.StatusLabel(string(b.Status)),
			action,
		)
	}
	tw.Flush()
}

func newBookingsListCmd(a *app) *cobra.Command {
	var f bookings.Filters
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your bookings (fleet managers see all)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.Status = bookings.Status(status)
			page, err := a.bookings.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			a.printBookings(cmd.OutOrStdout(), page.Results)
			pageFooter(cmd.OutOrStdout(), len(page.Results), page.Count, page.Next)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending, confirmed, completed, cancelled or refunded")
	cmd.Flags().IntVar(&f.Page, "page", 0, "page number")
	return cmd
}

func newBookingsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			b, err := a.bookings.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.printBookings(cmd.OutOrStdout(), []bookings.Booking{*b})
			return nil
		},
	}
}

func newBookingsCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <car-id> <start> <end>",
		Short: "Book a car",
		Long: `Book a car between two dates. Dates are YYYY-MM-DD, YYYY-MM-DDTHH:MM or
RFC 3339; times without a zone are UTC.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := parseDraft(args)
			if err != nil {
				return err
			}
			b, err := a.bookings.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booked %s for %d days: %s (%s).\n",
				b.CarName(), b.Days(), a.money.Format(&b.TotalPrice), format.StatusLabel(string(b.Status)))
			return nil
		},
	}
}

func parseDraft(args []string) (pricing.BookingDraft, error) {
	var d pricing.BookingDraft
	var err error
	if d.CarID, err = argID(args[0]); err != nil {
		return d, err
	}
	if d.Start, err = argDate("start", args[1]); err != nil {
		return d, err
	}
	if d.End, err = argDate("end", args[2]); err != nil {
		return d, err
	}
	return d, nil
}

func newBookingsCancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			b, err := a.bookings.Cancel(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking %d is %s.\n", b.ID, format.StatusLabel(string(b.Status)))
			return nil
		},
	}
}

func newBookingsPayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pay <id>",
		Short: "Start payment for a pending booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			pi, err := a.bookings.CreatePaymentIntent(cmd.Context(), id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			tw := newTable(w, "FIELD", "VALUE")
			row(tw, "Payment intent", pi.PaymentIntentID)
			row(tw, "Client secret", pi.ClientSecret)
			row(tw, "Amount", fmt.Sprintf("%s %s", pi.Amount.StringFixed(2), pi.Currency))
			tw.Flush()
			return nil
		},
	}
}
