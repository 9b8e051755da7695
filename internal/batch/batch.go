// Package batch converts every matching localization file of an input
// directory into the output directory, one job per file.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"rtl-reshaper/internal/filewalker"
	"rtl-reshaper/internal/placeholder"
	"rtl-reshaper/internal/textutil"
	"rtl-reshaper/internal/transform"
	"rtl-reshaper/internal/worker"

	"github.com/rs/zerolog/log"
)

var (
	// ErrInputCreated means the input directory did not exist and was
	// created; there is nothing to convert until it is populated.
	ErrInputCreated = errors.New("input directory created")
	// ErrInputMissing means the input directory vanished before listing.
	ErrInputMissing = errors.New("input directory missing")
	// ErrNoFiles means no file with the configured extension was found.
	ErrNoFiles = errors.New("no matching files")
)

// Options configures a Driver.
type Options struct {
	InputDir  string
	OutputDir string
	Extension string
	Workers   int
}

// Job is one input file and the output file it is written to.
type Job struct {
	Name       string
	InputPath  string
	OutputPath string
}

// Result is the outcome of one Job.
type Result struct {
	Job          Job
	Lines        int
	Rewritten    int
	Arabic       int
	Placeholders int
	Err          error
}

// Summary totals one run.
type Summary struct {
	Found     int
	Succeeded int
	Failed    int
	OutputDir string
	Results   []Result
}

// JobError ties a per-file failure to its file name.
type JobError struct {
	File string
	Err  error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// Driver runs conversion jobs.
type Driver struct {
	opts        Options
	transformer *transform.Transformer
	walker      *filewalker.Walker
}

// NewDriver creates a Driver.
func NewDriver(opts Options, t *transform.Transformer) *Driver {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Driver{
		opts:        opts,
		transformer: t,
		walker:      filewalker.NewWalker(opts.Extension),
	}
}

// Options returns the driver's options.
func (d *Driver) Options() Options {
	return d.opts
}

// Matches reports whether a file name is handled by this driver.
func (d *Driver) Matches(name string) bool {
	return d.walker.Matches(name)
}

// JobFor returns the job converting the named input file.
func (d *Driver) JobFor(name string) Job {
	return Job{
		Name:       name,
		InputPath:  filepath.Join(d.opts.InputDir, name),
		OutputPath: filepath.Join(d.opts.OutputDir, name),
	}
}

// Run converts every matching file. It returns ErrInputCreated,
// ErrInputMissing or ErrNoFiles when there was nothing to do. Per-file
// failures are reported in the Summary, not as an error.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{OutputDir: d.opts.OutputDir}

	created, err := d.ensureDir(d.opts.InputDir)
	if err != nil {
		return summary, fmt.Errorf("prepare input directory: %w", err)
	}
	if created {
		log.Info().
			Str("input", d.opts.InputDir).
			Msg("Created input directory; put the translation files in it and run again")
		return summary, ErrInputCreated
	}

	if _, err := d.ensureDir(d.opts.OutputDir); err != nil {
		return summary, fmt.Errorf("prepare output directory: %w", err)
	}

	entries, err := d.walker.List(d.opts.InputDir)
	if err != nil {
		if errors.Is(err, filewalker.ErrNotFound) {
			log.Error().Str("input", d.opts.InputDir).Msg("Input directory not found")
			return summary, fmt.Errorf("%w: %s", ErrInputMissing, d.opts.InputDir)
		}
		return summary, fmt.Errorf("list input directory: %w", err)
	}

	if len(entries) == 0 {
		log.Warn().
			Str("input", d.opts.InputDir).
			Str("ext", d.opts.Extension).
			Msg("No files to convert")
		return summary, ErrNoFiles
	}

	summary.Found = len(entries)

	jobs := make([]Job, len(entries))
	for i, e := range entries {
		jobs[i] = d.JobFor(e.Name)
	}

	pool := worker.NewPool[Job, Result](d.opts.Workers,
		func(ctx context.Context, job Job) (Result, error) {
			res := d.ProcessFile(ctx, job)
			return res, res.Err
		},
	)
	log.Info().Int("files", len(entries)).Int("workers", pool.Workers()).Msg("Starting conversion")

	for _, task := range pool.Execute(ctx, jobs) {
		if !task.Done {
			continue
		}
		summary.Results = append(summary.Results, task.Result)
		if task.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	log.Info().
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Str("output", d.opts.OutputDir).
		Msg("Conversion complete")

	return summary, nil
}

// ProcessFile converts one file. Failures are logged and returned in the
// Result; a failed job leaves no output file behind.
func (d *Driver) ProcessFile(ctx context.Context, job Job) Result {
	log.Info().Str("file", job.Name).Msg("Processing file")

	res := Result{Job: job}
	if err := ctx.Err(); err != nil {
		res.Err = &JobError{File: job.Name, Err: err}
		return res
	}

	if err := d.convert(job, &res); err != nil {
		res.Err = &JobError{File: job.Name, Err: err}
		log.Error().Err(err).Str("file", job.Name).Msg("Failed to convert file")
		return res
	}

	log.Info().
		Str("file", job.Name).
		Str("output", job.OutputPath).
		Int("lines", res.Lines).
		Int("rewritten", res.Rewritten).
		Int("arabic", res.Arabic).
		Msg("File converted")
	return res
}

func (d *Driver) convert(job Job, res *Result) (err error) {
	in, err := os.Open(job.InputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(job.OutputPath), "."+filepath.Base(job.OutputPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	r := bufio.NewReader(in)
	w := bufio.NewWriter(tmp)

	for {
		line, readErr := r.ReadString('\n')
		if len(line) > 0 {
			res.Lines++
			if !utf8.ValidString(line) {
				return fmt.Errorf("line %d: invalid UTF-8", res.Lines)
			}

			out := line
			if text, ok := d.transformer.Extract(line); ok {
				out = d.transformer.Transform(line)
				if out != line {
					res.Rewritten++
				}
				if textutil.ContainsArabic(text) {
					res.Arabic++
				}
				if tokens := placeholder.Find(text); len(tokens) > 0 {
					res.Placeholders++
					logPlaceholders(job.Name, res.Lines, text, tokens)
				}
			}

			if _, err := w.WriteString(out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read line %d: %w", res.Lines+1, readErr)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), job.OutputPath); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// logPlaceholders notes a value whose tokens were shaped as plain text.
func logPlaceholders(file string, line int, text string, tokens []placeholder.Token) {
	values := make([]string, len(tokens))
	for i, t := range tokens {
		values[i] = t.Value
	}
	log.Debug().
		Str("file", file).
		Int("line", line).
		Str("value", textutil.Truncate(text, 60)).
		Strs("tokens", values).
		Msg("Placeholders shaped as plain text")
}

// ensureDir creates dir when it does not exist and reports whether it did.
func (d *Driver) ensureDir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s is not a directory", dir)
		}
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}
	return true, nil
}
