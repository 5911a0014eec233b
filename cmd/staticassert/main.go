// Command staticassert generates compile-time assertion files from
// //static: directives. It is meant to run from a go:generate line:
//
//	//go:generate go run github.com/wippyai/staticassert/cmd/staticassert
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/staticassert/config"
	"github.com/wippyai/staticassert/errors"
	"github.com/wippyai/staticassert/generator"
	"github.com/wippyai/staticassert/verify"
)

const (
	exitOK = iota
	exitFailed
	exitUsage
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type flags struct {
	config      string
	tags        string
	goos        string
	goarch      string
	prefix      string
	verify      bool
	tests       bool
	check       bool
	dryRun      bool
	verbose     bool
	interactive bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, []string, map[string]bool, error) {
	f := &flags{}
	fs := flag.NewFlagSet("staticassert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.config, "config", "", "Path to "+config.FileName+" (default: nearest one above the package)")
	fs.StringVar(&f.tags, "tags", "", "Extra build tags (comma-separated)")
	fs.StringVar(&f.goos, "goos", "", "Target GOOS")
	fs.StringVar(&f.goarch, "goarch", "", "Target GOARCH")
	fs.StringVar(&f.prefix, "prefix", "", "Directive prefix")
	fs.BoolVar(&f.verify, "verify", true, "Verify directives with go/types before generating")
	fs.BoolVar(&f.tests, "tests", true, "Include _test.go files")
	fs.BoolVar(&f.check, "check", false, "Report out-of-date generated files and write nothing")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Compute generated files and write nothing")
	fs.BoolVar(&f.verbose, "v", false, "Verbose logging")
	fs.BoolVar(&f.interactive, "i", false, "Browse findings in an interactive view")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: staticassert [flags] [packages]")
		fmt.Fprintln(stderr, "       staticassert -check ./...")
		fmt.Fprintln(stderr, "       staticassert -i  (interactive mode)")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, fs.Args(), set, nil
}

// options merges the configuration file with explicit flags. Flags win.
func options(f *flags, set map[string]bool, cfg config.Config) generator.Options {
	opts := generator.OptionsFrom(cfg)
	if set["tags"] {
		opts.Tags = nil
		for _, t := range strings.Split(f.tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				opts.Tags = append(opts.Tags, t)
			}
		}
	}
	if set["goos"] {
		opts.GOOS = f.goos
	}
	if set["goarch"] {
		opts.GOARCH = f.goarch
	}
	if set["prefix"] {
		opts.Prefix = f.prefix
	}
	if set["verify"] {
		opts.Verify = f.verify
	}
	opts.Tests = f.tests
	opts.Check = f.check
	opts.DryRun = f.dryRun || f.interactive
	return opts
}

func newLogger(level zapcore.Level, stderr io.Writer) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(stderr), level)
	return zap.New(core)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, patterns, set, err := parseFlags(args, stderr)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	var (
		cfg  config.Config
		path string
	)
	if f.config != "" {
		path = f.config
		cfg, err = config.Load(path)
	} else {
		cfg, path, err = config.Discover(".")
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	level := cfg.Level()
	if f.verbose {
		level = zapcore.DebugLevel
	}
	log := newLogger(level, stderr)
	defer func() { _ = log.Sync() }()
	generator.SetLogger(log.Named("generator"))
	verify.SetLogger(log.Named("verify"))
	if path != "" {
		log.Debug("using config", zap.String("path", path))
	}

	opts := options(f, set, cfg)
	if gofile := os.Getenv("GOFILE"); gofile != "" && len(patterns) == 0 {
		log.Debug("invoked by go generate", zap.String("file", gofile), zap.String("package", os.Getenv("GOPACKAGE")))
	}

	res, err := generator.New(opts).Run(ctx, patterns...)
	if f.interactive && res != nil {
		if ierr := runInteractive(res, err); ierr != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ierr)
			return exitFailed
		}
		if err != nil {
			return exitFailed
		}
		return exitOK
	}

	out := newPrinter(stdout)
	if res != nil {
		out.result(res, opts)
	}
	if err != nil {
		out.failure(err)
		return exitFailed
	}
	if len(res.Stale) > 0 {
		return exitFailed
	}
	return exitOK
}

// printer writes the run summary, styled when stdout is a terminal.
type printer struct {
	w                     io.Writer
	ok, fail, warn, faint lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	plain := lipgloss.NewStyle()
	p := &printer{w: w, ok: plain, fail: plain, warn: plain, faint: plain}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.ok = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90"))
		p.fail = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
		p.warn = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD580"))
		p.faint = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	}
	return p
}

func rel(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if r, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}

func (p *printer) result(res *generator.Result, opts generator.Options) {
	for _, w := range res.Warnings {
		fmt.Fprintf(p.w, "%s %v\n", p.warn.Render("warn"), w)
	}
	for _, path := range res.Written {
		fmt.Fprintf(p.w, "%s %s\n", p.ok.Render("wrote"), rel(path))
	}
	for _, path := range res.Removed {
		fmt.Fprintf(p.w, "%s %s\n", p.ok.Render("removed"), rel(path))
	}
	for _, path := range res.Stale {
		fmt.Fprintf(p.w, "%s %v\n", p.fail.Render("stale"), errors.Stale(rel(path)))
	}
	if opts.DryRun {
		paths := make([]string, 0, len(res.Outputs))
		for path := range res.Outputs {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			fmt.Fprintf(p.w, "%s %s\n", p.faint.Render("would write"), rel(path))
		}
	}

	holds := res.Report.Count(verify.Holds)
	fmt.Fprintln(p.w, p.faint.Render(fmt.Sprintf("%d directive(s), %d verified, %d file(s) unchanged",
		res.Directives, holds, len(res.Unchanged))))
}

func (p *printer) failure(err error) {
	var v *errors.ViolationsError
	if stderrors.As(err, &v) {
		for _, e := range v.Errors {
			fmt.Fprintf(p.w, "%s %v\n", p.fail.Render("FAIL"), e)
		}
		return
	}
	fmt.Fprintf(p.w, "%s %v\n", p.fail.Render("error"), err)
}
