package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/azaliaz/bookhaven/internal/covers"
)

func newCoversCmd(opts *options) *cobra.Command {
	var lookup bool
	var workers int
	var timeout time.Duration

	resolver := func() (*covers.Resolver, error) {
		return covers.New(covers.WithLookup(lookup), covers.WithTimeout(timeout))
	}

	cmd := &cobra.Command{
		Use:     "covers",
		Short:   "Resolve cover image URLs",
		GroupID: "catalog",
	}
	pf := cmd.PersistentFlags()
	pf.BoolVar(&lookup, "lookup", true, "check covers against Open Library")
	pf.DurationVar(&timeout, "timeout", 5*time.Second, "timeout for each remote check")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "resolve <id>...",
			Short: "Print the cover URL for each book",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cat, err := opts.catalog()
				if err != nil {
					return errorf(cmd.ErrOrStderr(), "load catalog: %v", err)
				}
				res, err := resolver()
				if err != nil {
					return errorf(cmd.ErrOrStderr(), "load cover table: %v", err)
				}
				for _, id := range args {
					b, ok := cat.Book(id)
					if !ok {
						return errorf(cmd.ErrOrStderr(), "book %q not found", id)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", b.ID, res.Resolve(cmd.Context(), b))
				}
				return nil
			},
		},
	)

	prefetch := &cobra.Command{
		Use:   "prefetch",
		Short: "Resolve every catalog cover and report how many are real",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return errorf(cmd.ErrOrStderr(), "load catalog: %v", err)
			}
			res, err := resolver()
			if err != nil {
				return errorf(cmd.ErrOrStderr(), "load cover table: %v", err)
			}
			if err := res.Prefetch(cmd.Context(), cat.All(), workers); err != nil {
				return errorf(cmd.ErrOrStderr(), "prefetch: %v", err)
			}
			found := 0
			for _, b := range cat.All() {
				if _, ok := res.Cached(b.ID); ok {
					found++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d covers resolved, %d placeholders\n", found, cat.Len(), cat.Len()-found)
			return nil
		},
	}
	prefetch.Flags().IntVarP(&workers, "workers", "w", 8, "concurrent lookups")
	cmd.AddCommand(prefetch)
	return cmd
}
