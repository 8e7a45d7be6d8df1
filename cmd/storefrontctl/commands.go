package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/internal/shopify"
	"github.com/jafarshop/storefront/internal/urlmap"
)

// MenuLister lists navigation menus through the Admin API
type MenuLister interface {
	ListMenus(ctx context.Context) ([]shopify.MenuSummary, error)
}

// Dependencies are the clients the commands run against. Menus is nil
// without an admin token.
type Dependencies struct {
	Catalog *service.CatalogService
	Menus   MenuLister
}

func newRootCommand(deps Dependencies) *cobra.Command {
	var asJSON bool
	root := &cobra.Command{
		Use:          "storefrontctl",
		Short:        "Inspect the storefront menu and the category paths built from it.",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of text")

	root.AddCommand(newMenuCommand(deps, &asJSON))
	root.AddCommand(newMappingCommand(deps, &asJSON))
	root.AddCommand(newResolveCommand(deps, &asJSON))
	root.AddCommand(newMenusCommand(deps, &asJSON))
	return root
}

func newMenuCommand(deps Dependencies, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Fetch the configured menu and print its tree.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			menu, err := deps.Catalog.FetchMenu(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch menu: %w", err)
			}
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), menu)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", menu.Title, menu.Handle)
			printTree(cmd.OutOrStdout(), menu.Items, 1)
			return nil
		},
	}
}

func printTree(w io.Writer, nodes []domain.MenuNode, depth int) {
	for _, n := range nodes {
		handle := "-"
		if h, ok := urlmap.ExtractHandle(n.URL); ok {
			handle = h
		}
		fmt.Fprintf(w, "%s%s  [%s]  %s\n", strings.Repeat("  ", depth), n.Title, handle, n.URL)
		printTree(w, n.Items, depth+1)
	}
}

func newMappingCommand(deps Dependencies, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "mapping",
		Short: "Print every category path and the collection handle it maps to.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping := deps.Catalog.URLMapping(cmd.Context())
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), mapping)
			}
			paths := make([]string, 0, len(mapping))
			for p := range mapping {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", p, mapping[p])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d path(s)\n", len(paths))
			return nil
		},
	}
}

func newResolveCommand(deps Dependencies, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve a category path to a collection handle.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := deps.Catalog.Resolve(cmd.Context(), args[0])
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if res.Outcome == domain.ResolutionEmpty {
				return fmt.Errorf("path %q has no segment to resolve", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", res.Path, res.Handle, res.Outcome)
			return nil
		},
	}
}

func newMenusCommand(deps Dependencies, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "menus",
		Short: "List all navigation menus (needs SHOPIFY_ADMIN_TOKEN).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Menus == nil {
				return errors.New("SHOPIFY_ADMIN_TOKEN is not set")
			}
			menus, err := deps.Menus.ListMenus(cmd.Context())
			if err != nil {
				return fmt.Errorf("list menus: %w", err)
			}
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), menus)
			}
			for _, m := range menus {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.Handle, m.Title, m.ID)
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
