package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-car-rental/internal/utils"
	"github.com/jrsteele09/go-car-rental/pricing"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

// pageFooter prints "n of count" and where the next page is
func pageFooter(w io.Writer, shown, count int, next *string) {
	fmt.Fprintf(w, "\n%d of %d", shown, count)
	if link := utils.Value(next); link != "" {
		fmt.Fprint(w, " (more: --page)")
	}
	fmt.Fprintln(w)
}

func argID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func argDate(name, s string) (time.Time, error) {
	t, ok := pricing.ParseDate(s)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid %s date %q, use YYYY-MM-DD or RFC 3339", name, s)
	}
	return t, nil
}

func argDecimal(name, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, s)
	}
	return &d, nil
}

// secret returns value, or reads a line from the command's input
func (a *app) secret(cmd *cobra.Command, prompt, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	if a.stdin == nil {
		a.stdin = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt+": ")
	line, err := a.stdin.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(prompt), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
