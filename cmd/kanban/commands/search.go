package commands

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/render"
	"github.com/dyluth/kanban/internal/search"
)

var (
	searchOutputFormat string
	searchTimeout      time.Duration
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search tasks, with a persistent result cache",
	Long: `Search the board (or the mock backend, see search.source in kanban.yml).

The query is debounced like a keystroke stream and results are cached in the
store for search.cache_expiry, so repeating a query within that window is
served without a lookup. Queries shorter than search.min_query_length return
nothing.

Examples:
  kanban search auth
  kanban search "login page" -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var searchClearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop every cached search result",
	Args:  cobra.NoArgs,
	RunE:  runSearchClearCache,
}

func init() {
	searchCmd.Flags().StringVarP(&searchOutputFormat, "output", "o", render.FormatDefault, "Output format: default or json")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 30*time.Second, "Give up waiting for results after this long")
	searchCmd.AddCommand(searchClearCacheCmd)
	rootCmd.AddCommand(searchCmd)
}

type settled struct {
	query   string
	results []search.Result
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchOutputFormat != render.FormatDefault && searchOutputFormat != render.FormatJSON {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", searchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}
	query := strings.Join(args, " ")

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	cache := s.searchCache(ctx)

	var lookup search.Lookup
	switch s.cfg.Search.Source {
	case "mock":
		lookup = search.MockLookup{Delay: s.cfg.Search.LookupDelay, MaxResults: s.cfg.Search.MaxResults}
	default:
		if _, err := s.loadBoard(ctx); err != nil {
			return err
		}
		lookup = search.BoardLookup{Manager: s.manager, MaxResults: s.cfg.Search.MaxResults}
	}

	done := make(chan settled, 1)
	searcher := search.NewSearcher(cache, lookup,
		search.WithLogger(s.log),
		search.WithDebounce(s.cfg.Search.Debounce),
		search.WithMinQueryLength(s.cfg.Search.MinQueryLength),
		search.WithOnSettled(func(q string, r []search.Result) {
			select {
			case done <- settled{q, r}:
			default:
			}
		}),
	)
	defer searcher.Close()

	searcher.SetQuery(query)

	var res settled
	select {
	case res = <-done:
	case <-time.After(searchTimeout):
		return printer.Error(
			"search timed out",
			fmt.Sprintf("No results for '%s' after %s.", query, searchTimeout),
			[]string{"Retry with a longer --timeout"},
		)
	}

	if utf8.RuneCountInString(query) < s.cfg.Search.MinQueryLength {
		printer.Warning("Query '%s' is shorter than %d characters\n", query, s.cfg.Search.MinQueryLength)
	}

	if searchOutputFormat == render.FormatJSON {
		results := res.results
		if results == nil {
			results = []search.Result{}
		}
		return render.JSON(printer.Out, results)
	}
	return render.SearchResults(printer.Out, res.query, res.results)
}

func runSearchClearCache(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	cache := s.searchCache(ctx)
	n := cache.Len()
	cache.Clear(ctx)

	if n == 1 {
		printer.Success("Cleared 1 cached query\n")
	} else {
		printer.Success("Cleared %d cached queries\n", n)
	}
	return nil
}

// searchCache loads the persisted search cache. A corrupt cache is reported
// and replaced with an empty one.
func (s *session) searchCache(ctx context.Context) *search.Cache {
	cache := search.NewCache(s.store, s.cfg.Search.CacheExpiry, nil, s.log)
	if err := cache.Load(ctx); err != nil {
		s.log.WithError(err).Warn("Discarding unreadable search cache")
		cache.Clear(ctx)
	}
	return cache
}
