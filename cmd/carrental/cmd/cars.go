package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-car-rental/cars"
	"github.com/jrsteele09/go-car-rental/format"
	"github.com/jrsteele09/go-car-rental/internal/utils"
	"github.com/spf13/cobra"
)

func newCarsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cars",
		Short: "Browse the fleet and manage inventory",
	}
	cmd.AddCommand(
		newCarsListCmd(a),
		newCarsGetCmd(a),
		newCarsAvailableCmd(a),
		newCarsPopularCmd(a),
		newCarsReviewsCmd(a),
		newCarsReviewCmd(a),
		newCarsCreateCmd(a),
		newCarsUpdateCmd(a),
		newCarsPatchCmd(a),
		newCarsDeleteCmd(a),
	)
	return cmd
}

// filterFlags binds the listing filters shared by list and available
type filterFlags struct {
	f        cars.Filters
	minPrice string
	maxPrice string
	fuel     string
	trans    string
}

func (ff *filterFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&ff.f.Search, "search", "", "match name, make or model")
	f.StringVar(&ff.f.Location, "location", "", "pick-up location")
	f.StringVar(&ff.fuel, "fuel", "", "gasoline, diesel, hybrid or electric")
	f.StringVar(&ff.trans, "transmission", "", "manual, automatic or cvt")
	f.StringVar(&ff.minPrice, "min-price", "", "minimum price per day")
	f.StringVar(&ff.maxPrice, "max-price", "", "maximum price per day")
	f.StringVar(&ff.f.Ordering, "ordering", "", "sort field, prefix with - for descending (e.g. -price_per_day)")
	f.IntVar(&ff.f.Page, "page", 0, "page number")
}

func (ff *filterFlags) filters() (cars.Filters, error) {
	out := ff.f
	out.FuelType = cars.FuelType(ff.fuel)
	out.Transmission = cars.Transmission(ff.trans)
	var err error
	if out.MinPrice, err = argDecimal("min price", ff.minPrice); err != nil {
		return out, err
	}
	if out.MaxPrice, err = argDecimal("max price", ff.maxPrice); err != nil {
		return out, err
	}
	return out, nil
}

func (a *app) printCars(w io.Writer, list []cars.Car) {
	tw := newTable(w, "ID", "NAME", "YEAR", "FUEL", "TRANSMISSION", "SEATS", "PRICE/DAY", "LOCATION", "STATUS", "RATING")
	for _, c := range list {
		row(tw, c.ID, c.Name, c.Year,
			format.StatusLabel(string(c.FuelType)),
			format.StatusLabel(string(c.Transmission)),
			c.Seats,
			a.money.Format(&c.PricePerDay),
			c.Location,
			format.StatusLabel(string(c.Status)),
			fmt.Sprintf("%.1f (%d)", c.AverageRating, c.ReviewCount),
		)
	}
	tw.Flush()
}

func newCarsListCmd(a *app) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := ff.filters()
			if err != nil {
				return err
			}
			page, err := a.cars.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			a.printCars(cmd.OutOrStdout(), page.Results)
			pageFooter(cmd.OutOrStdout(), len(page.Results), page.Count, page.Next)
			return nil
		},
	}
	ff.bind(cmd)
	return cmd
}

func newCarsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a car with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			c, err := a.cars.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			tw := newTable(w, "FIELD", "VALUE")
			row(tw, "Name", c.Name)
			row(tw, "Make / model", fmt.Sprintf("%s %s (%d)", c.Make, c.Model, c.Year))
			row(tw, "Fuel", format.StatusLabel(string(c.FuelType)))
			row(tw, "Transmission", format.StatusLabel(string(c.Transmission)))
			row(tw, "Seats / doors", fmt.Sprintf("%d / %d", c.Seats, c.Doors))
			row(tw, "Price per day", a.money.Format(&c.PricePerDay))
			row(tw, "Location", c.Location)
			row(tw, "Status", format.StatusLabel(string(c.Status)))
			row(tw, "Features", strings.Join(c.FeatureNames(), ", "))
			row(tw, "Rating", fmt.Sprintf("%.1f from %d reviews", c.AverageRating, c.ReviewCount))
			if c.Description != "" {
				row(tw, "Description", format.Truncate(c.Description, format.DefaultTruncateLength))
			}
			tw.Flush()
			if len(c.Reviews) > 0 {
				fmt.Fprintln(w)
				printReviews(w, c.Reviews)
			}
			return nil
		},
	}
}

func printReviews(w io.Writer, reviews []cars.Review) {
	tw := newTable(w, "RATING", "BY", "DATE", "TITLE", "COMMENT")
	for _, r := range reviews {
		row(tw, strings.Repeat("*", r.Rating), r.UserName, r.CreatedAt.Format(format.DateLayout),
			r.Title, format.Truncate(r.Comment, 60))
	}
	tw.Flush()
}

func newCarsAvailableCmd(a *app) *cobra.Command {
	var ff filterFlags
	var start, end string
	cmd := &cobra.Command{
		Use:   "available --start <date> --end <date>",
		Short: "List cars free over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := ff.filters()
			if err != nil {
				return err
			}
			av := cars.Availability{Filters: f}
			if av.Start, err = argDate("start", start); err != nil {
				return err
			}
			if av.End, err = argDate("end", end); err != nil {
				return err
			}
			page, err := a.cars.Available(cmd.Context(), av)
			if err != nil {
				return err
			}
			a.printCars(cmd.OutOrStdout(), page.Results)
			pageFooter(cmd.OutOrStdout(), len(page.Results), page.Count, page.Next)
			return nil
		},
	}
	ff.bind(cmd)
	cmd.Flags().StringVar(&start, "start", "", "pick-up date")
	cmd.Flags().StringVar(&end, "end", "", "return date")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newCarsPopularCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "popular",
		Short: "List the most booked cars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.cars.Popular(cmd.Context())
			if err != nil {
				return err
			}
			a.printCars(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func newCarsReviewsCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "reviews <car-id>",
		Short: "List a car's reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			reviews, err := a.cars.Reviews(cmd.Context(), id, page)
			if err != nil {
				return err
			}
			printReviews(cmd.OutOrStdout(), reviews.Results)
			pageFooter(cmd.OutOrStdout(), len(reviews.Results), reviews.Count, reviews.Next)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	return cmd
}

func newCarsReviewCmd(a *app) *cobra.Command {
	var in cars.ReviewInput
	cmd := &cobra.Command{
		Use:   "review <car-id>",
		Short: "Review a car",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			r, err := a.cars.CreateReview(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review %d saved.\n", r.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&in.Rating, "rating", 0, "1 to 5")
	f.StringVar(&in.Title, "title", "", "review title")
	f.StringVar(&in.Comment, "comment", "", "review text")
	return cmd
}

// inputFlags binds every field of a car create or update
type inputFlags struct {
	in    cars.Input
	price string
	fuel  string
	trans string
	state string
}

func (fl *inputFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&fl.in.Name, "name", "", "display name")
	f.StringVar(&fl.in.Description, "description", "", "description")
	f.StringVar(&fl.in.Make, "make", "", "manufacturer")
	f.StringVar(&fl.in.Model, "model", "", "model")
	f.IntVar(&fl.in.Year, "year", 0, "model year")
	f.StringVar(&fl.fuel, "fuel", "", "gasoline, diesel, hybrid or electric")
	f.StringVar(&fl.trans, "transmission", "", "manual, automatic or cvt")
	f.IntVar(&fl.in.Seats, "seats", 5, "seats")
	f.IntVar(&fl.in.Doors, "doors", 4, "doors")
	f.StringVar(&fl.price, "price", "", "price per day")
	f.StringVar(&fl.in.Location, "location", "", "pick-up location")
	f.StringVar(&fl.state, "status", "", "available, rented, maintenance or unavailable")
	f.StringVar(&fl.in.Features, "features", "", "comma-separated features")
}

func (fl *inputFlags) input() (cars.Input, error) {
	in := fl.in
	in.FuelType = cars.FuelType(fl.fuel)
	in.Transmission = cars.Transmission(fl.trans)
	in.Status = cars.Status(fl.state)
	price, err := argDecimal("price", fl.price)
	if err != nil {
		return in, err
	}
	if price != nil {
		in.PricePerDay = *price
	}
	return in, nil
}

func newCarsCreateCmd(a *app) *cobra.Command {
	var fl inputFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a car to the fleet (fleet managers)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := fl.input()
			if err != nil {
				return err
			}
			c, err := a.cars.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created car %d: %s\n", c.ID, c.Name)
			return nil
		},
	}
	fl.bind(cmd)
	return cmd
}

func newCarsUpdateCmd(a *app) *cobra.Command {
	var fl inputFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a car (fleet managers)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			in, err := fl.input()
			if err != nil {
				return err
			}
			c, err := a.cars.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated car %d: %s\n", c.ID, c.Name)
			return nil
		},
	}
	fl.bind(cmd)
	return cmd
}

func newCarsPatchCmd(a *app) *cobra.Command {
	var fl inputFlags
	cmd := &cobra.Command{
		Use:   "patch <id>",
		Short: "Change some fields of a car (fleet managers)",
		Long:  `Only the flags given are sent.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			in, err := fl.input()
			if err != nil {
				return err
			}
			var p cars.Patch
			f := cmd.Flags()
			if f.Changed("name") {
				p.Name = utils.Ptr(in.Name)
			}
			if f.Changed("description") {
				p.Description = utils.Ptr(in.Description)
			}
			if f.Changed("location") {
				p.Location = utils.Ptr(in.Location)
			}
			if f.Changed("status") {
				p.Status = utils.Ptr(in.Status)
			}
			if f.Changed("price") {
				p.PricePerDay = utils.Ptr(in.PricePerDay)
			}
			if f.Changed("features") {
				p.Features = utils.Ptr(in.Features)
			}
			if f.Changed("seats") {
				p.Seats = utils.Ptr(in.Seats)
			}
			if f.Changed("fuel") {
				p.FuelType = utils.Ptr(in.FuelType)
			}
			if f.Changed("transmission") {
				p.Transmission = utils.Ptr(in.Transmission)
			}
			c, err := a.cars.Patch(cmd.Context(), id, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated car %d: %s (%s)\n", c.ID, c.Name, format.StatusLabel(string(c.Status)))
			return nil
		},
	}
	fl.bind(cmd)
	return cmd
}

func newCarsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a car (fleet managers)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			if err := a.cars.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted car %d.\n", id)
			return nil
		},
	}
}
