package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/azaliaz/bookhaven/internal/catalog"
	"github.com/azaliaz/bookhaven/internal/domain/consts"
	"github.com/azaliaz/bookhaven/internal/domain/models"
)

func printBooks(w io.Writer, books []models.Book) {
	for _, b := range books {
		fmt.Fprintf(w, "%-16s %s %s %s %s\n",
			b.ID,
			titleStyle.Render(b.Title),
			subtleStyle.Render("by "+b.Author),
			priceStyle.Render("$"+b.Price.StringFixed(2)),
			subtleStyle.Render(fmt.Sprintf("%.1f★ (%d)", b.Rating, b.RatingCount)),
		)
	}
}

func newBooksCmd(opts *options) *cobra.Command {
	var genre, price, rating, query string
	var page, perPage int

	cmd := &cobra.Command{
		Use:     "books [query]",
		Aliases: []string{"ls"},
		Short:   "List catalog books matching the given filters",
		GroupID: "catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return errorf(cmd.ErrOrStderr(), "load catalog: %v", err)
			}
			if len(args) > 0 {
				query = strings.Join(args, " ")
			}
			cr, err := catalog.ParseCriteria(genre, price, rating, query)
			if err != nil {
				return errorf(cmd.ErrOrStderr(), "%v", err)
			}
			p := catalog.Paginate(cat.Filter(cr), page, perPage)
			printBooks(cmd.OutOrStdout(), p.Items)
			fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render(
				fmt.Sprintf("page %d of %d, %d books", p.Page, p.Pages, p.Total)))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&genre, "genre", "g", "", "genre to show (all when empty)")
	f.StringVar(&price, "price", "", "price bracket: under10, 10to20, 20to30, over30")
	f.StringVar(&rating, "rating", "", "minimum rating: 2plus, 3, 4")
	f.StringVarP(&query, "query", "q", "", "text to match in title, author or genre")
	f.IntVar(&page, "page", 1, "page number")
	f.IntVar(&perPage, "per-page", consts.BooksPerPage, "books per page")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "genres",
			Short: "List the catalog genres",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cat, err := opts.catalog()
				if err != nil {
					return errorf(cmd.ErrOrStderr(), "load catalog: %v", err)
				}
				for _, g := range cat.Genres() {
					fmt.Fprintln(cmd.OutOrStdout(), g)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one book",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cat, err := opts.catalog()
				if err != nil {
					return errorf(cmd.ErrOrStderr(), "load catalog: %v", err)
				}
				b, ok := cat.Book(args[0])
				if !ok {
					return errorf(cmd.ErrOrStderr(), "book %q not found", args[0])
				}
				out := cmd.OutOrStdout()
				printBooks(out, []models.Book{b})
				fmt.Fprintf(out, "%s / %s, %d pages, published %s\n", b.Genre, b.Subgenre, b.Pages, b.PublishedDate)
				fmt.Fprintln(out, b.Description)
				return nil
			},
		},
		&cobra.Command{
			Use:   "bestsellers",
			Short: "List the bestseller shelf",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cat, err := opts.catalog()
				if err != nil {
					return errorf(cmd.ErrOrStderr(), "load catalog: %v", err)
				}
				printBooks(cmd.OutOrStdout(), cat.Bestsellers())
				return nil
			},
		},
	)
	return cmd
}
