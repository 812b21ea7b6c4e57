package main

import (
	"fmt"
	"time"

	"github.com/devmarkblog/internal/seed"
	"github.com/devmarkblog/internal/service"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample categories and posts into an empty database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := seed.Run(
				cmd.Context(),
				service.NewPostService(rt.db),
				service.NewCategoryService(rt.db),
				rt.logger,
				time.Now().UTC(),
			)
			if err != nil {
				return err
			}

			if result.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "database already has posts, nothing to do")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d categories and %d posts\n", result.Categories, result.Posts)
			return nil
		},
	}
}
