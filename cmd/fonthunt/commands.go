package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"fonthunter/internal/candidates"
	"fonthunter/internal/config"
	"fonthunter/internal/fallback"
	"fonthunter/internal/hunter"
	"fonthunter/internal/jobs"
	"fonthunter/internal/validation"
)

var errNotFound = errors.New("font not found")

const batchBarTemplate pb.ProgressBarTemplate = `{{counters . }} {{bar . }} {{percent . }} {{string . "font"}}`

type options struct {
	configFile  string
	outputDir   string
	maxAttempts int
	mode        string
	timeout     time.Duration
	verbose     bool
	jsonOut     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "fonthunt",
		Short:         "Find and download font files by family name",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configFile, "config", "", "YAML config file (default $CONFIG_FILE or config.yaml)")
	f.StringVarP(&opts.outputDir, "output-dir", "o", "", "Directory fonts are written to")
	f.IntVar(&opts.maxAttempts, "max-attempts", 0, "Maximum fetch attempts per font")
	f.StringVar(&opts.mode, "mode", "", "Hunt mode: strategies or attempts")
	f.DurationVar(&opts.timeout, "timeout", 0, "Per-request timeout")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every probe and fetch")
	f.BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")

	root.AddCommand(
		newHuntCmd(opts),
		newBatchCmd(opts),
		newKeywordsCmd(opts),
		newReportCmd(opts),
	)
	return root
}

// settings merges environment, config file and flags, in that order.
func (o *options) settings() (config.HuntSettings, *config.Config, error) {
	cfg := config.Load()

	var (
		fileCfg *config.YAMLConfig
		err     error
	)
	if o.configFile != "" {
		fileCfg, err = config.LoadYAMLFile(o.configFile)
	} else {
		fileCfg, err = config.LoadYAMLConfig()
	}
	if err != nil {
		return config.HuntSettings{}, nil, fmt.Errorf("load config: %w", err)
	}
	cfg.File = fileCfg

	s := cfg.HuntSettings()
	if o.outputDir != "" {
		s.OutputDir = o.outputDir
	}
	if o.maxAttempts > 0 {
		s.MaxAttempts = o.maxAttempts
	}
	switch strings.ToLower(o.mode) {
	case "":
	case config.ModeStrategies, config.ModeAttempts:
		s.Mode = strings.ToLower(o.mode)
	default:
		return config.HuntSettings{}, nil, fmt.Errorf("unknown mode %q", o.mode)
	}
	if o.timeout > 0 {
		s.Timeout = o.timeout
	}
	return s, cfg, nil
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func validName(args []string) (string, error) {
	name := strings.TrimSpace(strings.Join(args, " "))
	if valid, msg := validation.ValidateFontName(name); !valid {
		return "", errors.New(msg)
	}
	return name, nil
}

func newHuntCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hunt <font name>",
		Short: "Hunt one font and save it under the output directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := validName(args)
			if err != nil {
				return err
			}
			settings, _, err := opts.settings()
			if err != nil {
				return err
			}

			h := hunter.FromSettings(settings, opts.logger(cmd.ErrOrStderr()))
			o := h.Hunt(cmd.Context(), name)

			if opts.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), o); err != nil {
					return err
				}
			} else {
				printOutcome(cmd.OutOrStdout(), o)
			}
			if !o.Success {
				return errNotFound
			}
			return nil
		},
	}
}

func newBatchCmd(opts *options) *cobra.Command {
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "batch [file|-]",
		Short: "Hunt every font in a list, one per line",
		Long: "Hunt every font in a list file (or stdin with -), one name per line.\n" +
			"Without an argument the batch.fonts list from the config file is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, cfg, err := opts.settings()
			if err != nil {
				return err
			}

			fonts, err := batchFonts(cmd, args, cfg)
			if err != nil {
				return err
			}
			if len(fonts) == 0 {
				return errors.New("no fonts to hunt")
			}

			bar := pb.New(len(fonts)).SetTemplate(batchBarTemplate).SetWriter(cmd.ErrOrStderr())
			bar.Start()

			h := hunter.FromSettings(settings, opts.logger(cmd.ErrOrStderr()))
			batch := jobs.NewBatchHunter(h,
				jobs.WithDelay(delay),
				jobs.WithLogger(opts.logger(io.Discard)),
				jobs.WithProgress(func(_, _ int, o hunter.Outcome) {
					bar.Set("font", o.FontName)
					bar.Increment()
				}),
			)
			outcomes := batch.Run(cmd.Context(), fonts)
			bar.Finish()

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), outcomes)
			}

			missing := 0
			for _, o := range outcomes {
				status := "found"
				if !o.Success {
					status = "missing"
					missing++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", status, o.FontName)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d/%d fonts found\n", len(outcomes)-missing, len(fonts))
			if missing > 0 {
				return fmt.Errorf("%d fonts not found", missing)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", jobs.DefaultBatchDelay, "Pause between fonts")
	return cmd
}

func batchFonts(cmd *cobra.Command, args []string, cfg *config.Config) ([]string, error) {
	if len(args) == 0 {
		return cfg.File.BatchFonts(), nil
	}
	if args[0] == "-" {
		return jobs.ReadFontList(cmd.InOrStdin())
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return jobs.ReadFontList(f)
}

func newKeywordsCmd(opts *options) *cobra.Command {
	var showURLs bool

	cmd := &cobra.Command{
		Use:   "keywords <font name>",
		Short: "Show the keywords and candidate URLs a hunt would try",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := validName(args)
			if err != nil {
				return err
			}
			settings, _, err := opts.settings()
			if err != nil {
				return err
			}

			var cs []candidates.Candidate
			for _, c := range hunter.NewGenerator(settings).Generate(name) {
				if settings.StrategyEnabled(c.Strategy) {
					cs = append(cs, c)
				}
			}
			keywords := candidates.Keywords(name)

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"font_name":  name,
					"keywords":   keywords,
					"candidates": cs,
				})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Keywords:")
			for _, k := range keywords {
				fmt.Fprintf(w, "  - %s\n", k)
			}
			counts := candidates.CountByStrategy(cs)
			fmt.Fprintln(w, "Candidates:")
			for _, s := range []string{candidates.StrategyDirect, candidates.StrategyCDN, candidates.StrategyArchive, candidates.StrategyCodeHost, candidates.StrategySearch} {
				if n, ok := counts[s]; ok {
					fmt.Fprintf(w, "  %-9s %d\n", s, n)
				}
			}
			if showURLs {
				for _, c := range cs {
					fmt.Fprintf(w, "%-9s %s\n", c.Strategy, c.URL)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showURLs, "urls", false, "List every candidate URL")
	return cmd
}

func newReportCmd(opts *options) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "report <font name>",
		Short: "Print manual hunting instructions for a font",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := validName(args)
			if err != nil {
				return err
			}
			r := fallback.New(name)

			if write {
				settings, _, err := opts.settings()
				if err != nil {
					return err
				}
				path, err := fallback.Write(settings.OutputDir, r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
			}

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			fmt.Fprint(cmd.OutOrStdout(), r.Text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "Also write "+fallback.FileName+" under the output directory")
	return cmd
}

func printOutcome(w io.Writer, o hunter.Outcome) {
	if o.Success {
		fmt.Fprintf(w, "Found %s via %s (%s, %s)\n", o.FontName, o.Strategy, o.Format, o.Confidence)
		fmt.Fprintf(w, "  source: %s\n", o.SourceURL)
		for _, p := range o.FilePaths {
			fmt.Fprintf(w, "  saved:  %s\n", p)
		}
		return
	}
	fmt.Fprint(w, o.LastResortInfo)
	if o.ReportPath != "" {
		fmt.Fprintf(w, "Instructions saved to %s\n", o.ReportPath)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
