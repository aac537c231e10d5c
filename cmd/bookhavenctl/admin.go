package main

import (
	"fmt"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/azaliaz/bookhaven/internal/storage"
)

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "migrate",
		Short:   "Apply or roll back the postgres schema",
		GroupID: "admin",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := storage.Migrations(opts.dbDsn, opts.migratePath); err != nil {
					return errorf(cmd.ErrOrStderr(), "migrate up: %v", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), priceStyle.Render("schema is up to date"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := storage.MigrateDown(opts.dbDsn, opts.migratePath); err != nil {
					return errorf(cmd.ErrOrStderr(), "migrate down: %v", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), priceStyle.Render("schema rolled back"))
				return nil
			},
		},
	)
	return cmd
}

func newUsersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "users",
		Short:   "List registered accounts",
		GroupID: "admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stor, err := opts.open(cmd.Context())
			if err != nil {
				return errorf(cmd.ErrOrStderr(), "open storage: %v", err)
			}
			defer stor.Close()

			users, err := stor.ListUsers(cmd.Context())
			if err != nil {
				return errorf(cmd.ErrOrStderr(), "list users: %v", err)
			}
			out := cmd.OutOrStdout()
			for _, u := range users {
				fmt.Fprintf(out, "%s %s %s\n",
					titleStyle.Render(u.Email),
					u.Name,
					subtleStyle.Render(u.CreatedAt.Format("2006-01-02")))
			}
			fmt.Fprintln(out, subtleStyle.Render(fmt.Sprintf("%d accounts", len(users))))
			return nil
		},
	}
}

func newSubscribersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "subscribers",
		Short:   "List newsletter subscribers",
		GroupID: "admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stor, err := opts.open(cmd.Context())
			if err != nil {
				return errorf(cmd.ErrOrStderr(), "open storage: %v", err)
			}
			defer stor.Close()

			emails, err := stor.Subscribers(cmd.Context())
			if err != nil {
				return errorf(cmd.ErrOrStderr(), "list subscribers: %v", err)
			}
			for _, e := range emails {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
}
