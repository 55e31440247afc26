// Package main provides the devimport command, which mirrors a dev.to
// author's articles into a Jekyll site.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"devimport/internal/config"
	"devimport/internal/importer"
	"devimport/internal/logger"
	"devimport/internal/post"
)

var version = "dev"

var errUnverified = errors.New("posts failed verification")

var (
	configFile   string
	dotenvFile   string
	username     string
	postsDir     string
	imagesDir    string
	publicPrefix string
	apiURL       string
	perPage      int
	logLevel     string
	frontMatter  string
	dryRun       bool
	verify       bool
	formatTables bool
	outputFile   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "devimport",
		Short:   "Import dev.to articles as Jekyll posts with local images",
		Version: version,
		Long: `devimport fetches every published article of a dev.to user, downloads
the cover and inline images next to the site and writes one markdown post per
article into the posts directory. Posts that already exist are left alone.`,
		Example: `  # Import the default user into ./_posts and ./img/posts
  devimport

  # Import another user into a custom layout
  devimport -u ada --posts-dir site/_posts --images-dir site/assets/img --public-prefix /assets/img

  # Show what would be written without touching the disk
  devimport --dry-run --log-level debug`,
		Args:         cobra.NoArgs,
		RunE:         run,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to YAML configuration file")
	flags.StringVar(&dotenvFile, "env-file", ".env", "Path to a .env file loaded before reading the environment")
	flags.StringVarP(&username, "username", "u", "", "dev.to username (defaults to $DEVTO_USERNAME or meatboy)")
	flags.StringVar(&postsDir, "posts-dir", "", "Directory for generated posts")
	flags.StringVar(&imagesDir, "images-dir", "", "Directory for downloaded images")
	flags.StringVar(&publicPrefix, "public-prefix", "", "URL path prefix posts use to reference images")
	flags.StringVar(&apiURL, "api-url", "", "dev.to API base URL")
	flags.IntVar(&perPage, "per-page", 0, "Articles requested per list call (1-1000)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, warning, error)")
	flags.StringVar(&frontMatter, "format", "", "Front matter format (yaml, toml)")

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Fetch and render but do not download images or write posts")
	rootCmd.Flags().BoolVar(&verify, "verify", false, "Sign new posts and re-import existing ones whose signature does not match")
	rootCmd.Flags().BoolVar(&formatTables, "format-tables", false, "Align markdown tables in post bodies")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if outputFile != "" {
				return cfg.SaveConfig(outputFile)
			}

			return printConfig(cmd.OutOrStdout(), cfg)
		},
		SilenceUsage: true,
	}
	configCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the configuration to this file instead of stdout")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the signatures of posts in the posts directory",
		Long: `check reports, for every markdown file in the posts directory, whether its
signature block matches its content. Posts written without --verify carry no
signature and are reported as incomplete.`,
		Args:         cobra.NoArgs,
		RunE:         runCheck,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(configCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Logging.Level)
	log.Debug("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()

	report, err := importer.NewFromConfig(cfg, dryRun, log).Run(ctx)
	if report != nil {
		printReport(cmd.OutOrStdout(), report, time.Since(start))
	}

	if err != nil {
		log.Error("import failed", "error", err)
		return err
	}

	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Logging.Level)

	writer := post.NewWriter(cfg.Posts.Dir, post.Options{VerifyExisting: true}, log)

	names, err := filepath.Glob(writer.Path("*.md"))
	if err != nil {
		return fmt.Errorf("failed to list posts: %w", err)
	}

	bad := 0

	for _, full := range names {
		name := filepath.Base(full)

		state, err := writer.Status(name)
		if err != nil {
			return err
		}

		if state != post.Complete {
			bad++
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", state, name)
	}

	if bad > 0 {
		return fmt.Errorf("%w: %d of %d", errUnverified, bad, len(names))
	}

	return nil
}

// loadConfig resolves the configuration with flags taking precedence over
// the environment and the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	return config.LoadWith(configFile, dotenvFile, func(c *config.Config) {
		if flags.Changed("username") {
			c.Username = username
		}

		if flags.Changed("posts-dir") {
			c.Posts.Dir = postsDir
		}

		if flags.Changed("images-dir") {
			c.Images.Dir = imagesDir
		}

		if flags.Changed("public-prefix") {
			c.Images.PublicPrefix = publicPrefix
		}

		if flags.Changed("api-url") {
			c.API.BaseURL = apiURL
		}

		if flags.Changed("per-page") {
			c.API.PerPage = perPage
		}

		if flags.Changed("log-level") {
			c.Logging.Level = logLevel
		}

		if flags.Changed("format") {
			c.Posts.FrontMatter = frontMatter
		}

		if flags.Changed("verify") {
			c.Posts.VerifyExisting = verify
		}

		if flags.Changed("format-tables") {
			c.Posts.FormatTables = formatTables
		}
	})
}

func printConfig(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return enc.Close()
}

func printReport(w io.Writer, r *importer.Report, elapsed time.Duration) {
	fmt.Fprintln(w, "------------------------------------------------")
	fmt.Fprintln(w, "Summary")
	fmt.Fprintln(w, "------------------------------------------------")
	fmt.Fprintf(w, "Articles fetched: %d\n", r.Fetched)
	fmt.Fprintf(w, "Posts saved:      %d\n", r.Saved)
	fmt.Fprintf(w, "Posts skipped:    %d\n", r.Skipped)

	if r.Replaced > 0 {
		fmt.Fprintf(w, "Posts replaced:   %d\n", r.Replaced)
	}

	fmt.Fprintf(w, "Posts failed:     %d\n", r.Failed)
	fmt.Fprintf(w, "Images saved:     %d\n", r.ImagesSaved)
	fmt.Fprintf(w, "Images failed:    %d\n", r.ImagesFailed)
	fmt.Fprintf(w, "Duration:         %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, "------------------------------------------------")
}
