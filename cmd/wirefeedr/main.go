package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wirefeedr",
		Short: "Score news feeds for credibility and surface the signal",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(fetchCmd())
	root.AddCommand(articlesCmd())
	root.AddCommand(topicsCmd())
	root.AddCommand(trendsCmd())
	root.AddCommand(anomaliesCmd())
	root.AddCommand(feedsCmd())
	root.AddCommand(inspectCmd())
	root.AddCommand(keywordsCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func fetchCmd() *cobra.Command {
	var feedID int64

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and score all enabled feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(feedID)
		},
	}

	cmd.Flags().Int64Var(&feedID, "feed", 0, "fetch a single feed by ID")
	return cmd
}

func articlesCmd() *cobra.Command {
	var (
		jsonOutput bool
		minScore   int
		limit      int
		all        bool
		search     string
	)

	cmd := &cobra.Command{
		Use:   "articles",
		Short: "List scored articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArticles(jsonOutput, minScore, limit, all, search)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().IntVar(&minScore, "min-score", -1, "minimum composite score (default: from config)")
	cmd.Flags().IntVar(&limit, "limit", 50, "max articles to show")
	cmd.Flags().BoolVar(&all, "all", false, "ignore score and recency filters")
	cmd.Flags().StringVar(&search, "search", "", "search title and summary")
	return cmd
}

func topicsCmd() *cobra.Command {
	var (
		jsonOutput bool
		threshold  float64
	)

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Group recent articles into stories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopics(jsonOutput, threshold)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "similarity threshold (default: from config)")
	return cmd
}

func trendsCmd() *cobra.Command {
	var (
		jsonOutput bool
		byAuthor   bool
		key        string
	)

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show rolling credibility trends per publisher or author",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrends(jsonOutput, byAuthor, key)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&byAuthor, "authors", false, "aggregate by author instead of publisher")
	cmd.Flags().StringVar(&key, "key", "", "limit to one publisher domain or author")
	return cmd
}

func anomaliesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Flag recent articles scoring far below their publisher's average",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnomalies(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func feedsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feeds",
		Short: "List subscribed feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeeds()
		},
	}
}

func inspectCmd() *cobra.Command {
	var (
		link    string
		summary string
	)

	cmd := &cobra.Command{
		Use:   "inspect <title>",
		Short: "Explain how a headline would be scored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0], link, summary)
		},
	}

	cmd.Flags().StringVar(&link, "link", "", "article URL, used for publisher lookup")
	cmd.Flags().StringVar(&summary, "summary", "", "article summary text")
	return cmd
}

func keywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage personal penalty keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeywordsList()
		},
	}

	var weight int
	add := &cobra.Command{
		Use:   "add <keyword>",
		Short: "Add or update a penalty keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeywordsAdd(args[0], weight)
		},
	}
	add.Flags().IntVar(&weight, "weight", 10, "score deduction per match")

	remove := &cobra.Command{
		Use:   "remove <keyword>",
		Short: "Remove a penalty keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeywordsRemove(args[0])
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with refresh scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
