package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API is up",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			annotationView: "/",
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.client.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status: %s\ndatabase: %s\n", h.Status, h.Database)
			return nil
		},
	}
}
