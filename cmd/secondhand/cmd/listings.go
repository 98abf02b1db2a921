package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yuyang-Ding1102/SecondHandPlatform/internal/listings"
	domain "github.com/Yuyang-Ding1102/SecondHandPlatform/pkg/types"
)

func listingsCmd() *cobra.Command {
	listingsRoot := &cobra.Command{
		Use:   "listings",
		Short: "Manage your own listings",
		Long: "View, edit, and delete the listings you have posted.\n" +
			"All commands operate on one server-side page at a time.",
	}

	listingsRoot.AddCommand(
		listingsListCmd(),
		listingsEditCmd(),
		listingsDeleteCmd(),
	)

	return listingsRoot
}

// loadPage drives the manager through one fetch cycle and renders a fetch
// error as the command error.
func loadPage(mgr *listings.Manager, page int) (listings.Snapshot, error) {
	err := mgr.ChangePage(context.Background(), page)
	snap := mgr.Snapshot()
	if err != nil {
		if snap.ErrMsg != "" {
			return snap, errors.New(snap.ErrMsg)
		}
		return snap, err
	}
	return snap, nil
}

func listingsListCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your listings, one page at a time",
		Example: `  # First page
  secondhand listings list

  # Third page as JSON
  secondhand listings list --page 3 --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			mgr := newManager(terminalNotifier())
			snap, err := loadPage(mgr, page)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(snap)
			}

			if len(snap.Listings) == 0 {
				fmt.Println("You haven't posted any items yet.")
				return nil
			}

			if err := printListingsTable(snap.Listings); err != nil {
				return err
			}
			fmt.Printf("\nPage %d of %d (%d items total)\n",
				snap.Pagination.CurrentPage,
				max(snap.Pagination.TotalPages, 1),
				snap.Pagination.TotalCount,
			)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show")

	return cmd
}

func listingsEditCmd() *cobra.Command {
	var (
		page        int
		title       string
		price       string
		description string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit one of your listings",
		Long: "Edit the title, price, or description of a listing on the given\n" +
			"page. Fields left unset keep their current value.",
		Example: `  secondhand listings edit 42 --title "Vintage Film Camera" --price 140
  secondhand listings edit 42 --page 2 --description "Slightly used."`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := newManager(terminalNotifier())
			if _, err := loadPage(mgr, page); err != nil {
				return err
			}

			id := domain.ID(args[0])
			if err := mgr.OpenEdit(id); err != nil {
				return fmt.Errorf("listing %s: %w (try --page)", id, err)
			}
			if err := mgr.Draft(func(b *listings.EditBuffer) {
				if cmd.Flags().Changed("title") {
					b.Title = title
				}
				if cmd.Flags().Changed("price") {
					b.Price = price
				}
				if cmd.Flags().Changed("description") {
					b.Description = description
				}
			}); err != nil {
				return err
			}
			return mgr.CommitEdit(context.Background())
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page the listing is on")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&price, "price", "", "new price")
	cmd.Flags().StringVar(&description, "description", "", "new description")

	return cmd
}

func listingsDeleteCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your listings",
		Example: `  secondhand listings delete 42
  secondhand listings delete 42 --page 2 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			mgr := newManager(terminalNotifier())
			if _, err := loadPage(mgr, page); err != nil {
				return err
			}

			id := domain.ID(args[0])
			if err := mgr.Delete(context.Background(), id); err != nil {
				if errors.Is(err, listings.ErrNotInPage) {
					return fmt.Errorf("listing %s: %w (try --page)", id, err)
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page the listing is on")

	return cmd
}
