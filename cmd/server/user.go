package main

import (
	"fmt"
	"strings"

	"github.com/devmarkblog/internal/db"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

func newCreateUserCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a local admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
				return eris.New("both --username and --password are required")
			}

			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			created, err := db.EnsureUser(rt.db, username, password)
			if err != nil {
				return eris.Wrap(err, "creating user")
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists\n", strings.TrimSpace(username))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", strings.TrimSpace(username))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "login email or username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, stored as a bcrypt hash")
	return cmd
}
