package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"rtl-reshaper/internal/batch"
	"rtl-reshaper/internal/cache"
	"rtl-reshaper/internal/config"
	"rtl-reshaper/internal/shaper"
	"rtl-reshaper/internal/transform"
	"rtl-reshaper/internal/watch"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errFilesFailed is returned after a complete run in which some files failed.
var errFilesFailed = errors.New("some files failed to convert")

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// flags holds command-line overrides; only flags the user set are applied.
type flags struct {
	configPath  string
	inputDir    string
	outputDir   string
	extension   string
	quoteMode   string
	workers     int
	keepHarakat bool
	noLigatures bool
	debug       bool
	debounceMS  int
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "rtl-reshaper",
		Short: "Reshape Persian/Arabic localization values for left-to-right game renderers",
		Long: `Reads key: "value" lines from the localization files in the input folder,
joins the Persian/Arabic letters of each quoted value into presentation forms,
puts the text in visual order and writes the result to the output folder.

Run without arguments to convert the "input" folder into "output".`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, f)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Config file (default "+config.DefaultFile+" if present)")
	pf.StringVarP(&f.inputDir, "input", "i", "", "Input folder")
	pf.StringVarP(&f.outputDir, "output", "o", "", "Output folder")
	pf.StringVar(&f.extension, "ext", "", "File extension to convert")
	pf.StringVar(&f.quoteMode, "quote-mode", "", "Quoted value detection: strict or span")
	pf.IntVarP(&f.workers, "workers", "w", 0, "Files converted in parallel")
	pf.BoolVar(&f.keepHarakat, "keep-harakat", false, "Keep diacritic marks")
	pf.BoolVar(&f.noLigatures, "no-ligatures", false, "Do not merge lam-alef into one glyph")
	pf.BoolVar(&f.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(convertCmd(f))
	rootCmd.AddCommand(watchCmd(f))
	rootCmd.AddCommand(shapeCmd(f))

	return rootCmd
}

func convertCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "convert",
		Short: "Convert every matching file once (same as running without a command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, f)
		},
	}
}

func watchCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Convert all files, then re-convert each file when it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, f)
		},
	}
	cmd.Flags().IntVar(&f.debounceMS, "debounce", 0, "Quiet period in milliseconds before a changed file is converted")
	return cmd
}

func shapeCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "shape [text...]",
		Short: "Print text in shaped visual order, or transform stdin line by line",
		Long: `With arguments, prints the shaped visual form of the joined arguments.
Without arguments, reads lines from stdin, applies the same line rewrite as
convert and writes them to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			tr, _, err := newTransformer(cfg)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), tr.Render(strings.Join(args, " ")))
				return err
			}
			return transformStream(cmd.InOrStdin(), cmd.OutOrStdout(), tr)
		},
	}
}

// loadConfig builds the configuration and applies flags the user set.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.InputDir = f.inputDir
	}
	if changed("output") {
		cfg.OutputDir = f.outputDir
	}
	if changed("ext") {
		cfg.Extension = f.extension
		if !strings.HasPrefix(cfg.Extension, ".") {
			cfg.Extension = "." + cfg.Extension
		}
	}
	if changed("quote-mode") {
		cfg.QuoteMode = f.quoteMode
	}
	if changed("workers") {
		cfg.WorkerCount = f.workers
	}
	if changed("keep-harakat") {
		cfg.DeleteHarakat = !f.keepHarakat
	}
	if changed("no-ligatures") {
		cfg.Ligatures = !f.noLigatures
	}
	if changed("debounce") {
		cfg.WatchDebounceMS = f.debounceMS
	}
	if f.debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	return cfg, nil
}

// newTransformer wires the shaper, cache and transformer for cfg.
func newTransformer(cfg *config.Config) (*transform.Transformer, *cache.ShapeCache, error) {
	mode, err := transform.ParseQuoteMode(cfg.QuoteMode)
	if err != nil {
		return nil, nil, err
	}
	s := shaper.New(shaper.Options{
		DeleteHarakat: cfg.DeleteHarakat,
		Ligatures:     cfg.Ligatures,
	})
	c := cache.NewShapeCache()
	return transform.New(mode, s, c), c, nil
}

func newDriver(cfg *config.Config) (*batch.Driver, *cache.ShapeCache, error) {
	tr, c, err := newTransformer(cfg)
	if err != nil {
		return nil, nil, err
	}
	d := batch.NewDriver(batch.Options{
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		Extension: cfg.Extension,
		Workers:   cfg.WorkerCount,
	}, tr)
	return d, c, nil
}

// runConvert handles the root and `convert` commands.
func runConvert(cmd *cobra.Command, f *flags) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	driver, shapeCache, err := newDriver(cfg)
	if err != nil {
		return err
	}

	summary, err := driver.Run(ctx)
	if err := runOutcome(summary, err); err != nil {
		return err
	}

	hits, misses := shapeCache.Stats()
	log.Debug().
		Int("hits", hits).
		Int("misses", misses).
		Int("entries", shapeCache.Len()).
		Msg("Shape cache")
	return nil
}

// runOutcome maps a batch result to the command's error.
func runOutcome(summary *batch.Summary, err error) error {
	switch {
	case errors.Is(err, batch.ErrInputCreated), errors.Is(err, batch.ErrNoFiles):
		return nil
	case err != nil:
		return err
	case summary.Failed > 0:
		log.Warn().Int("failed", summary.Failed).Int("files", summary.Found).Msg("Some files were not converted")
		return fmt.Errorf("%w: %d of %d", errFilesFailed, summary.Failed, summary.Found)
	}
	return nil
}

// runWatch handles the `watch` command.
func runWatch(cmd *cobra.Command, f *flags) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	driver, _, err := newDriver(cfg)
	if err != nil {
		return err
	}

	// An initial full pass; failures are reported and watching continues.
	summary, err := driver.Run(ctx)
	if err := runOutcome(summary, err); err != nil && !errors.Is(err, errFilesFailed) {
		return err
	}

	w, err := watch.New(driver, cfg.WatchDebounce())
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// transformStream rewrites r line by line into w, keeping line terminators.
func transformStream(r io.Reader, w io.Writer, tr *transform.Transformer) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if _, werr := bw.WriteString(tr.Transform(line)); werr != nil {
				return fmt.Errorf("write stdout: %w", werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}
	return bw.Flush()
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
