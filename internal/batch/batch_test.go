package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rtl-reshaper/internal/shaper"
	"rtl-reshaper/internal/transform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salam = "ﻡﻼﺳ"

func newDriver(t *testing.T, workers int) (*Driver, string, string) {
	t.Helper()
	root := t.TempDir()
	in := filepath.Join(root, "input")
	out := filepath.Join(root, "output")
	tr := transform.New(transform.Strict, shaper.New(shaper.DefaultOptions()), nil)
	d := NewDriver(Options{InputDir: in, OutputDir: out, Extension: ".yml", Workers: workers}, tr)
	return d, in, out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestRun_CreatesMissingInput(t *testing.T) {
	d, in, out := newDriver(t, 1)

	summary, err := d.Run(context.Background())
	assert.ErrorIs(t, err, ErrInputCreated)
	assert.Zero(t, summary.Found)

	info, statErr := os.Stat(in)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())

	_, statErr = os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "output must not be created on the setup run")
}

func TestRun_NoMatchingFiles(t *testing.T) {
	d, in, out := newDriver(t, 1)
	require.NoError(t, os.MkdirAll(in, 0o755))
	writeFile(t, filepath.Join(in, "readme.txt"), "key: \"سلام\"\n")

	_, err := d.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoFiles)

	// The output directory is still prepared.
	info, statErr := os.Stat(out)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}

func TestRun_OnlyMatchingExtension(t *testing.T) {
	d, in, out := newDriver(t, 1)
	require.NoError(t, os.MkdirAll(in, 0o755))
	writeFile(t, filepath.Join(in, "menu_l_persian.yml"), "l_persian:\n title: \"Hello\"\n")
	writeFile(t, filepath.Join(in, "notes.txt"), "title: \"Hello\"\n")

	summary, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Found)
	assert.Equal(t, 1, summary.Succeeded)

	names, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "menu_l_persian.yml", names[0].Name())
	assert.Equal(t, "l_persian:\n title: \"Hello\"\n", readFile(t, filepath.Join(out, "menu_l_persian.yml")))
}

func TestRun_PreservesLinesAndTerminators(t *testing.T) {
	d, in, out := newDriver(t, 1)
	require.NoError(t, os.MkdirAll(in, 0o755))

	input := "\ufeffl_persian:\r\n" +
		"# comment\r\n" +
		" greeting: \"سلام\"\r\n" +
		" empty: \"\"\n" +
		"\n" +
		" last: \"سلام\""
	writeFile(t, filepath.Join(in, "a.yml"), input)

	summary, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	want := "\ufeffl_persian:\r\n" +
		"# comment\r\n" +
		" greeting: \"" + salam + "\"\r\n" +
		" empty: \"\"\n" +
		"\n" +
		" last: \"" + salam + "\""
	assert.Equal(t, want, readFile(t, filepath.Join(out, "a.yml")))

	res := summary.Results[0]
	assert.Equal(t, 6, res.Lines)
	assert.Equal(t, 2, res.Rewritten)
	assert.Equal(t, 2, res.Arabic)
	assert.NoError(t, res.Err)
}

func TestRun_FailedFileDoesNotStopBatch(t *testing.T) {
	d, in, out := newDriver(t, 1)
	require.NoError(t, os.MkdirAll(in, 0o755))

	writeFile(t, filepath.Join(in, "a_bad.yml"), "key: \"\xff\xfe\"\n")
	writeFile(t, filepath.Join(in, "b_good.yml"), "key: \"سلام\"\n")

	summary, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Found)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	var jobErr *JobError
	require.ErrorAs(t, summary.Results[0].Err, &jobErr)
	assert.Equal(t, "a_bad.yml", jobErr.File)

	assert.Equal(t, "key: \""+salam+"\"\n", readFile(t, filepath.Join(out, "b_good.yml")))

	// Neither the failed output nor its temporary file is left behind.
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b_good.yml", entries[0].Name())
}

func TestRun_ParallelWorkers(t *testing.T) {
	d, in, out := newDriver(t, 4)
	require.NoError(t, os.MkdirAll(in, 0o755))

	names := []string{"a.yml", "b.yml", "c.yml", "d.yml", "e.yml", "f.yml"}
	for _, n := range names {
		writeFile(t, filepath.Join(in, n), "one: \"سلام\"\ntwo: \"Hello\"\nthree: \"سلام\"\n")
	}

	summary, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(names), summary.Succeeded)

	want := "one: \"" + salam + "\"\ntwo: \"Hello\"\nthree: \"" + salam + "\"\n"
	for _, n := range names {
		assert.Equal(t, want, readFile(t, filepath.Join(out, n)), n)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	d, in, _ := newDriver(t, 1)
	require.NoError(t, os.MkdirAll(in, 0o755))
	writeFile(t, filepath.Join(in, "a.yml"), "key: \"سلام\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_InputIsAFile(t *testing.T) {
	d, in, _ := newDriver(t, 1)
	writeFile(t, in, "not a directory")

	_, err := d.Run(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInputCreated)
}

func TestProcessFile_Placeholders(t *testing.T) {
	d, in, out := newDriver(t, 1)
	require.NoError(t, os.MkdirAll(in, 0o755))
	require.NoError(t, os.MkdirAll(out, 0o755))
	writeFile(t, filepath.Join(in, "a.yml"), "k: \"ب $NAME$\"\nj: \"سلام\"\n")

	res := d.ProcessFile(context.Background(), d.JobFor("a.yml"))
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Placeholders)
	assert.Equal(t, 2, res.Rewritten)
	assert.Equal(t, 2, res.Arabic)
	assert.Equal(t, "k: \"$NAME$ ﺏ\"\nj: \""+salam+"\"\n", readFile(t, filepath.Join(out, "a.yml")))
}

func TestJobFor(t *testing.T) {
	d, in, out := newDriver(t, 1)
	job := d.JobFor("x.yml")
	assert.Equal(t, filepath.Join(in, "x.yml"), job.InputPath)
	assert.Equal(t, filepath.Join(out, "x.yml"), job.OutputPath)
	assert.True(t, d.Matches("x.YML"))
}
