// cmd/tarmirror/main.go
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	pflag "github.com/spf13/pflag"
)

const Version = "0.3.0"

// Exit codes.
const (
	exitOK       = 0
	exitDeclined = 1
	exitUsage    = 2
	exitPath     = 3
	exitArchive  = 4
)

// cliOptions holds the parsed command line.
type cliOptions struct {
	drawOnly        bool
	displayFiles    bool
	includeHidden   bool
	counts          bool
	verbose         bool
	quiet           bool
	compression     string
	excludePatterns []string
	useGitignore    bool
	assumeYes       bool
	listFile        string
	configFile      string
	logLevelStr     string
	versionFlag     bool
}

// settings is the merged result of defaults, config file and flags.
type settings struct {
	includeHidden   bool
	showFiles       bool
	showCounts      bool
	compression     string
	verbose         bool
	quiet           bool
	useGitignore    bool
	tarCommand      string
	excludePatterns []string
}

func newFlagSet(opts *cliOptions, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("tarmirror", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVarP(&opts.drawOnly, "draw-only", "d", false, "Only draw the directory tree.")
	fs.BoolVarP(&opts.displayFiles, "display-files", "F", false, "Display files as well.")
	fs.BoolVarP(&opts.includeHidden, "all", "a", false, "Take all files and directories (include .*).")
	fs.BoolVarP(&opts.counts, "nums", "n", false, "Show the number of files for each directory.")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Show the archiver's verbose output.")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "Print only error messages (implies --yes).")
	fs.StringVarP(&opts.compression, "compress", "c", defaultCompression, fmt.Sprintf("Compression algorithm: %v.", CompressionNames()))
	fs.StringSliceVarP(&opts.excludePatterns, "exclude", "x", []string{}, "Comma-separated glob patterns to exclude (adds to config).")
	fs.BoolVar(&opts.useGitignore, "gitignore", false, "Leave out files excluded by .gitignore/.ignore rules.")
	fs.BoolVarP(&opts.assumeYes, "yes", "y", false, "Do not ask for confirmation.")
	fs.StringVarP(&opts.listFile, "list", "l", "", "Archive every 'SOURCE -> DEST' line of this file.")
	fs.StringVar(&opts.configFile, "config", "", "Path to a custom configuration file (.toml or .ini).")
	fs.StringVar(&opts.logLevelStr, "loglevel", "warn", "Set logging verbosity (debug, info, warn, error).")
	fs.BoolVar(&opts.versionFlag, "version", false, "Print version and exit.")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: %[1]s [flags] SOURCE DEST
   or: %[1]s -d [flags] SOURCE
   or: %[1]s -l LISTFILE [flags]

Draw a directory tree and archive it into DEST. Directories without
subdirectories become one archive each; the others are mirrored as
directories holding an archive of their own files.

Flags:
`, fs.Name())
		fs.PrintDefaults()
	}
	return fs
}

// mergeSettings applies explicitly set flags over the loaded config.
func mergeSettings(cfg Config, opts *cliOptions, fs *pflag.FlagSet) settings {
	cfg = cfg.withDefaults()
	s := settings{
		includeHidden:   *cfg.IncludeHidden,
		showFiles:       *cfg.ShowFiles,
		showCounts:      *cfg.ShowCounts,
		compression:     *cfg.Compression,
		verbose:         *cfg.Verbose,
		quiet:           *cfg.Quiet,
		useGitignore:    *cfg.UseGitignore,
		tarCommand:      *cfg.TarCommand,
		excludePatterns: append([]string{}, cfg.ExcludePatterns...),
	}
	if fs.Changed("all") {
		s.includeHidden = opts.includeHidden
	}
	if fs.Changed("display-files") {
		s.showFiles = opts.displayFiles
	}
	if fs.Changed("nums") {
		s.showCounts = opts.counts
	}
	if fs.Changed("compress") {
		s.compression = opts.compression
	}
	if fs.Changed("verbose") {
		s.verbose = opts.verbose
	}
	if fs.Changed("quiet") {
		s.quiet = opts.quiet
	}
	if fs.Changed("gitignore") {
		s.useGitignore = opts.useGitignore
	}
	if fs.Changed("exclude") {
		s.excludePatterns = append(s.excludePatterns, splitPatterns(opts.excludePatterns)...)
	}
	slog.Debug("Final settings", "include_hidden", s.includeHidden, "show_files", s.showFiles,
		"show_counts", s.showCounts, "compression", s.compression, "verbose", s.verbose,
		"quiet", s.quiet, "use_gitignore", s.useGitignore, "exclude_patterns", s.excludePatterns)
	return s
}

// buildOptionsFor assembles the exclusion rules for one source root.
func (s settings) buildOptionsFor(source string) (BuildOptions, error) {
	var chain ExcluderChain
	if globs := NewGlobExcluder(s.excludePatterns); globs.Len() > 0 {
		chain = append(chain, globs)
	}
	if s.useGitignore {
		filter, err := NewGitignoreFilter(source)
		if err != nil {
			return BuildOptions{}, &PathError{Path: source, Err: err}
		}
		chain = append(chain, filter)
	}
	opts := BuildOptions{IncludeHidden: s.includeHidden}
	if len(chain) > 0 {
		opts.Exclude = chain
	}
	return opts, nil
}

func setupLogging(levelStr string, stderr io.Writer) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(levelStr)); err != nil {
		fmt.Fprintf(stderr, "Invalid log level %q, defaulting to 'warn'.\n", levelStr)
		logLevel = slog.LevelWarn
	}
	logOpts := &slog.HandlerOptions{Level: logLevel, AddSource: logLevel <= slog.LevelDebug}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, logOpts)))
}

// exitCodeFor classifies an error for the process exit status.
func exitCodeFor(err error) int {
	var pathErr *PathError
	var configErr *ConfigError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &configErr):
		return exitUsage
	case errors.As(err, &pathErr):
		return exitPath
	default:
		// DirCreateError, ArchiveError and anything unexpected.
		return exitArchive
	}
}

// run is the whole command; main only supplies the process streams.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &cliOptions{}
	fs := newFlagSet(opts, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return exitUsage
	}

	if opts.versionFlag {
		fmt.Fprintf(stdout, "tarmirror version %s\n", Version)
		return exitOK
	}

	setupLogging(opts.logLevelStr, stderr)

	appConfig, loadErr := loadConfig(opts.configFile)
	if loadErr != nil {
		if fs.Changed("config") {
			fmt.Fprintf(stderr, "Error: Could not load configuration file '%s': %v\n", opts.configFile, loadErr)
			return exitUsage
		}
		slog.Warn("Proceeding with default settings due to config load issue.", "error", loadErr)
	}
	s := mergeSettings(appConfig, opts, fs)

	var out io.Writer = stdout
	if s.quiet {
		out = io.Discard
	}

	var compression Compression
	if !opts.drawOnly {
		c, err := ParseCompression(s.compression)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		compression = c
	}

	archiver := &TarArchiver{Command: s.tarCommand, Stdout: out, Stderr: stderr}
	archiveOpts := ArchiveOptions{Compression: compression, Verbose: s.verbose, Out: out}
	positionalArgs := fs.Args()

	if opts.listFile != "" {
		if len(positionalArgs) != 0 || opts.drawOnly {
			fmt.Fprintln(stderr, "Refusing execution: --list cannot be combined with positional arguments or --draw-only.")
			fs.Usage()
			return exitUsage
		}
		return runList(opts, s, archiver, archiveOpts, stdin, out, stderr)
	}

	if (opts.drawOnly && len(positionalArgs) != 1) || (!opts.drawOnly && len(positionalArgs) != 2) {
		fs.Usage()
		return exitUsage
	}

	source, err := filepath.Abs(positionalArgs[0])
	if err != nil {
		fmt.Fprintf(stderr, "Error: Invalid source path '%s': %v\n", positionalArgs[0], err)
		return exitPath
	}

	buildOpts, err := s.buildOptionsFor(source)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}
	tree, err := BuildTree(source, buildOpts)
	if err != nil {
		slog.Error("Could not build directory tree.", "path", source, "error", err)
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return exitCodeFor(err)
	}

	if err := RenderTree(out, tree, RenderOptions{ShowFiles: s.showFiles, ShowCounts: s.showCounts}); err != nil {
		slog.Error("Failed to write tree.", "error", err)
	}
	if opts.drawOnly {
		return exitOK
	}

	dest := positionalArgs[1]
	if err := PrepareDestination(dest); err != nil {
		fmt.Fprintf(stderr, "Destination directory %s doesn't exist and cannot be created.\n%v\n", dest, err)
		return exitCodeFor(err)
	}

	fmt.Fprintf(out, "Will be archived to %s.\n", dest)
	if !s.quiet && !opts.assumeYes && !confirm(stdin, out, "Continue? [Y/n] ") {
		return exitDeclined
	}

	report, err := ArchiveTree(tree, dest, archiver, archiveOpts)
	errorSources := map[string]error{}
	if err != nil {
		errorSources[source] = err
	}
	printSummary(out, []*Report{report}, errorSources)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}
	slog.Debug("Execution finished.")
	return exitOK
}

func runList(opts *cliOptions, s settings, archiver Archiver, archiveOpts ArchiveOptions, stdin io.Reader, out, stderr io.Writer) int {
	entries, err := LoadListFile(opts.listFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}
	if len(entries) == 0 {
		slog.Warn("List file has no entries.", "path", opts.listFile)
		return exitOK
	}

	for _, entry := range entries {
		fmt.Fprintf(out, "%s will be archived to %s.\n", entry.Source, entry.Dest)
	}
	if !s.quiet && !opts.assumeYes && !confirm(stdin, out, "Continue? [Y/n] ") {
		return exitDeclined
	}

	reports, err := ArchiveList(entries, s.buildOptionsFor, archiver, archiveOpts)
	errorSources := map[string]error{}
	var entryErr *ListEntryError
	if errors.As(err, &entryErr) {
		errorSources[entryErr.Entry.Source] = entryErr.Err
	}
	printSummary(out, reports, errorSources)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}
	return exitOK
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
