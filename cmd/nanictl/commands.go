package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nani/backend/internal/domain"
	"github.com/nani/backend/internal/infrastructure/catalog"
	"github.com/nani/backend/internal/infrastructure/logging"
	"github.com/nani/backend/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Build-time variables injected via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

type rootOptions struct {
	catalogPath string
	limit       int
	output      string
	verbose     bool
}

// newRootCmd builds the nanictl command tree
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "nanictl",
		Short:         "Inspect ingredient normalization, catalog matching and cart extraction",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case "text", "json":
				return nil
			default:
				return fmt.Errorf("unsupported output format %q (text, json)", opts.output)
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.catalogPath, "catalog", "data/ingredients.json", "ingredient list used to build the catalog")
	pf.IntVar(&opts.limit, "limit", catalog.DefaultLimit, "number of ingredients kept in the catalog")
	pf.StringVarP(&opts.output, "output", "o", "text", "output format (text, json)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log matcher decisions to stderr")

	cmd.AddCommand(
		newNormalizeCmd(opts),
		newMatchCmd(opts),
		newExtractCmd(opts),
	)
	return cmd
}

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	var showSteps bool

	cmd := &cobra.Command{
		Use:   "normalize NAME...",
		Short: "Print the comparable form of ingredient names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type stepValue struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			}
			type result struct {
				Input      string      `json:"input"`
				Normalized string      `json:"normalized"`
				Steps      []stepValue `json:"steps,omitempty"`
			}
			results := make([]result, 0, len(args))
			for _, raw := range args {
				r := result{Input: raw, Normalized: usecase.Normalize(raw)}
				if showSteps {
					s := raw
					for _, step := range usecase.NormalizeSteps() {
						s = step.Apply(s)
						r.Steps = append(r.Steps, stepValue{Name: step.Name, Value: s})
					}
				}
				results = append(results, r)
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return writeJSON(out, results)
			}
			for _, r := range results {
				fmt.Fprintf(out, "%q -> %q\n", r.Input, r.Normalized)
				for _, step := range r.Steps {
					fmt.Fprintf(out, "  %-24s %q\n", step.Name, step.Value)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSteps, "steps", false, "show the value after each pipeline step")
	return cmd
}

func newMatchCmd(opts *rootOptions) *cobra.Command {
	var suggest int

	cmd := &cobra.Command{
		Use:   "match INGREDIENT...",
		Short: "Resolve recipe ingredient lines to catalog products",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matcher, err := loadMatcher(cmd, opts)
			if err != nil {
				return err
			}

			type result struct {
				domain.MatchResult
				Suggestions []string `json:"suggestions,omitempty"`
			}
			results := make([]result, 0, len(args))
			for _, m := range matcher.MatchIngredients(args) {
				r := result{MatchResult: m}
				if !m.IsAvailable && suggest > 0 {
					for _, p := range matcher.FuzzySearch(m.IngredientText, suggest) {
						r.Suggestions = append(r.Suggestions, p.Name)
					}
				}
				results = append(results, r)
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return writeJSON(out, results)
			}
			for _, r := range results {
				if r.IsAvailable {
					fmt.Fprintf(out, "%s -> %s [%s] $%.2f\n", r.IngredientText, r.MatchedProduct.Name, r.MatchedProduct.ID, r.MatchedProduct.Price)
					continue
				}
				fmt.Fprintf(out, "%s -> unavailable", r.IngredientText)
				if len(r.Suggestions) > 0 {
					fmt.Fprintf(out, " (did you mean: %s)", strings.Join(r.Suggestions, ", "))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&suggest, "suggest", usecase.MaxFuzzyMatches, "fuzzy suggestions for unavailable ingredients, 0 disables")
	return cmd
}

func newExtractCmd(opts *rootOptions) *cobra.Command {
	var (
		file    string
		resolve bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Read an assistant reply and list the items of its cart block",
		Long:  "Reads an assistant reply from --file or stdin. Names come from the first\n[ITEMS ADDED TO CART] block; --resolve maps them onto catalog products.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open reply: %w", err)
				}
				defer f.Close()
				in = f
			}
			reply, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read reply: %w", err)
			}

			out := cmd.OutOrStdout()
			if !resolve {
				names := usecase.ParseCartBlock(string(reply))
				if opts.output == "json" {
					if names == nil {
						names = []string{}
					}
					return writeJSON(out, names)
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			matcher, err := loadMatcher(cmd, opts)
			if err != nil {
				return err
			}
			products := usecase.ExtractCartActions(string(reply), nil, matcher.Catalog())
			if opts.output == "json" {
				if products == nil {
					products = []domain.Product{}
				}
				return writeJSON(out, products)
			}
			for _, p := range products {
				fmt.Fprintf(out, "%s [%s] $%.2f\n", p.Name, p.ID, p.Price)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "file holding the reply (default: stdin)")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "resolve names against the catalog")
	return cmd
}

func loadMatcher(cmd *cobra.Command, opts *rootOptions) (*usecase.CatalogMatcher, error) {
	products, err := catalog.LoadFile(opts.catalogPath, opts.limit)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = logging.New("debug", "development"); err != nil {
			return nil, err
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "catalog: %d products from %s\n", len(products), opts.catalogPath)
	return usecase.NewCatalogMatcher(products, logger), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
