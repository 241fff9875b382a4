package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kettle-rb/rbs-merge/internal/config"
	"github.com/kettle-rb/rbs-merge/internal/mcptools"
	"github.com/kettle-rb/rbs-merge/internal/merge"
	"github.com/kettle-rb/rbs-merge/internal/rbs"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Template        string
	Destination     string
	Output          string
	ProjectRoot     string
	Preference      string
	AddTemplateOnly bool
	MarkerToken     string
	Parser          string
	Summary         bool
	Verbose         bool
	ServeMCP        bool
	Version         bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("rbs-merge", flag.ContinueOnError)
	fs.StringVar(&flags.Template, "template", "", "path to the template RBS file")
	fs.StringVar(&flags.Destination, "destination", "", "path to the destination RBS file")
	fs.StringVar(&flags.Output, "output", "-", "output path, - for stdout")
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "directory holding rbsmerge.yml for batch mode")
	fs.StringVar(&flags.Preference, "preference", "", "winning side for conflicting declarations: template or destination")
	fs.BoolVar(&flags.AddTemplateOnly, "add-template-only", false, "append template-only declarations to the output")
	fs.StringVar(&flags.MarkerToken, "marker", "", "protected-region comment token (default rbs-merge)")
	fs.StringVar(&flags.Parser, "parser", "scan", "parser backend name")
	fs.BoolVar(&flags.Summary, "summary", false, "print a decision summary to stderr")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable verbose output")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server on stdio")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	logger, err := buildLogger(flags.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	registry := rbs.NewRegistry()
	parser, err := registry.New(flags.Parser)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(registry.Backends(), ", "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.ServeMCP {
		server := mcptools.NewMergeMCPServer(mcptools.NewMergeService(logger))
		return mcptools.RunMergeMCPServerStdio(ctx, server)
	}

	if flags.Template != "" || flags.Destination != "" {
		return runSingle(ctx, flags, parser, logger)
	}
	return runBatch(ctx, flags, parser, logger)
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// runSingle merges one template/destination pair from the command line.
func runSingle(ctx context.Context, flags cliFlags, parser rbs.Parser, logger *zap.Logger) error {
	if flags.Template == "" || flags.Destination == "" {
		return fmt.Errorf("both -template and -destination are required")
	}

	cfg := merge.Config{
		AddTemplateOnly: flags.AddTemplateOnly,
		MarkerToken:     flags.MarkerToken,
		Parser:          parser,
		Logger:          logger,
	}
	if flags.Preference != "" {
		cfg.Preference = merge.GlobalPreference(merge.Side(flags.Preference))
	}

	result, err := mergeFiles(ctx, flags.Template, flags.Destination, cfg)
	if err != nil {
		return err
	}

	if flags.Summary {
		fmt.Fprint(os.Stderr, formatSummary(result.Summary))
	}

	if flags.Output == "-" {
		fmt.Print(result.Text)
		return nil
	}
	if err := os.WriteFile(flags.Output, []byte(result.Text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// runBatch merges every pair listed in rbsmerge.yml. Pairs merge
// concurrently; each individual merge is sequential.
func runBatch(ctx context.Context, flags cliFlags, parser rbs.Parser, logger *zap.Logger) error {
	projectCfg, err := config.Load(flags.ProjectRoot)
	if err != nil {
		return err
	}
	if len(projectCfg.Pairs) == 0 {
		return fmt.Errorf("no -template/-destination given and no pairs in rbsmerge.yml under %s", flags.ProjectRoot)
	}

	pref, err := projectCfg.MergePreference()
	if err != nil {
		return err
	}
	if flags.Preference != "" {
		pref = merge.GlobalPreference(merge.Side(flags.Preference))
	}
	marker := projectCfg.MarkerToken
	if flags.MarkerToken != "" {
		marker = flags.MarkerToken
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, pair := range projectCfg.Pairs {
		g.Go(func() error {
			cfg := merge.Config{
				Preference:      pref,
				AddTemplateOnly: projectCfg.AddTemplateOnly || flags.AddTemplateOnly,
				MarkerToken:     marker,
				Parser:          parser,
				Logger:          logger.With(zap.String("destination", pair.Destination)),
			}

			template := filepath.Join(flags.ProjectRoot, pair.Template)
			destination := filepath.Join(flags.ProjectRoot, pair.Destination)
			result, err := mergeFiles(ctx, template, destination, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", pair.Destination, err)
			}

			output := destination
			if pair.Output != "" {
				output = filepath.Join(flags.ProjectRoot, pair.Output)
			}
			if err := os.WriteFile(output, []byte(result.Text), 0o644); err != nil {
				return fmt.Errorf("%s: write output: %w", pair.Destination, err)
			}

			if flags.Summary {
				fmt.Fprintf(os.Stderr, "%s:\n%s", pair.Destination, formatSummary(result.Summary))
			}
			return nil
		})
	}
	return g.Wait()
}

func mergeFiles(ctx context.Context, templatePath, destinationPath string, cfg merge.Config) (*merge.Result, error) {
	templateText, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	destinationText, err := os.ReadFile(destinationPath)
	if err != nil {
		return nil, fmt.Errorf("read destination: %w", err)
	}

	merger, err := merge.New(string(templateText), string(destinationText), cfg)
	if err != nil {
		return nil, err
	}
	return merger.MergeResult(ctx)
}
