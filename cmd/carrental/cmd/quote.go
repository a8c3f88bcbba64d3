package cmd

import (
	"fmt"

	"github.com/jrsteele09/go-car-rental/pricing"
	"github.com/spf13/cobra"
)

func newQuoteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <car-id> <start> <end>",
		Short: "Price a booking without making it",
		Args:  cobra.ExactArgs(3),
		Annotations: map[string]string{
			annotationView: "/cars",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := parseDraft(args)
			if err != nil {
				return err
			}
			car, err := a.cars.Get(cmd.Context(), draft.CarID)
			if err != nil {
				return err
			}
			q, err := pricing.NewQuote(draft, car.PricePerDay)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d days x %s = %s\n",
				car.Name, q.Days, a.money.Format(&q.PricePerDay), a.money.Format(&q.Total))
			return nil
		},
	}
}
