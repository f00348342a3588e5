// Command invidx builds and queries a boolean inverted index over a corpus
// of plain-text documents: the "index" subcommand runs the SPIMI
// builder/merger pipeline, and the "search" subcommand evaluates a boolean
// query against a built index. CLI structure (urfave/cli/v2 app with a flag
// set per subcommand, signal-driven graceful exit at 130) is grounded on
// the teacher's cmd/lci/main.go.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/pbnjay/memory"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/invidx/internal/config"
	"github.com/standardbeagle/invidx/internal/corpus"
	"github.com/standardbeagle/invidx/internal/debug"
	"github.com/standardbeagle/invidx/internal/dictcompress"
	invidxerrors "github.com/standardbeagle/invidx/internal/errors"
	"github.com/standardbeagle/invidx/internal/indexfile"
	"github.com/standardbeagle/invidx/internal/postinglist"
	"github.com/standardbeagle/invidx/internal/query"
	"github.com/standardbeagle/invidx/internal/spimi"
	"github.com/standardbeagle/invidx/internal/textpipeline"
)

// Version is the CLI's reported version; overridden at link time for
// release builds via -ldflags.
var Version = "0.1.0-dev"

func main() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		os.Exit(130)
	}()

	app := &cli.App{
		Name:    "invidx",
		Usage:   "boolean inverted-index builder and query engine",
		Version: Version,
		Commands: []*cli.Command{
			indexCommand(),
			searchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "build a boolean inverted index over a corpus directory",
		ArgsUsage: "<inputDir> <blockSize> <outputFile>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "extensions", Usage: "comma-separated list of file extensions to index, e.g. .txt,.md"},
			&cli.StringFlag{Name: "compress", Usage: "dictionary compression scheme: block, front, or string"},
			&cli.IntFlag{Name: "skips", Usage: "skip pointer size for the loaded index (0 disables skip pointers)"},
			&cli.StringFlag{Name: "config", Usage: "config file path", Value: ""},
		},
		Action: runIndex,
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "evaluate a boolean query against a built index",
		ArgsUsage: "<query> <indexFile>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "skips", Usage: "skip pointer size to use when loading the index"},
			&cli.StringFlag{Name: "config", Usage: "config file path", Value: ""},
			&cli.StringFlag{Name: "color", Usage: "color mode: auto, always, never", Value: ""},
		},
		Action: runSearch,
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(cwd, c.String("config"))
}

func runIndex(c *cli.Context) error {
	if c.Args().Len() < 3 {
		return cli.Exit("usage: invidx index <inputDir> <blockSize> <outputFile> [flags]", 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	inputDir := config.ResolvePath(c.Args().Get(0), cfg.CorpusDir)
	blockSizeArg := c.Args().Get(1)
	outputFile := config.ResolvePath(c.Args().Get(2), cfg.IndicesDir)

	if _, err := os.Stat(inputDir); err != nil {
		return cli.Exit(invidxerrors.NewNotFoundError("read input directory", inputDir), 1)
	}

	blockSize, err := resolveBlockSize(blockSizeArg, cfg)
	if err != nil {
		return cli.Exit(err, 1)
	}

	extensions := cfg.Extensions
	if raw := c.String("extensions"); raw != "" {
		extensions = splitCommaList(raw)
	}

	compress := cfg.Compress
	if raw := c.String("compress"); raw != "" {
		compress = raw
	}

	skips := cfg.Skips
	if c.IsSet("skips") {
		skips = c.Int("skips")
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return cli.Exit(invidxerrors.NewBuildError("write", outputFile, err), 1)
	}

	debug.LogIndexing("collecting documents from %s", inputDir)
	pipeline := textpipeline.New()
	docs, err := corpus.Collect(inputDir, extensions, pipeline)
	if err != nil {
		return cli.Exit(invidxerrors.NewBuildError("collect", inputDir, err), 1)
	}

	builder, err := spimi.New(blockSize, outputFile)
	if err != nil {
		return cli.Exit(err, 1)
	}

	debug.LogIndexing("streaming %d documents into the SPIMI builder (block size %d)", len(docs), blockSize)
	for _, doc := range docs {
		debug.LogIndexing("document %d/%d: %s", doc.DocOrdinal, len(docs), doc.ID)
		for _, term := range doc.Tokens {
			if err := builder.AddToken(term, doc.ID); err != nil {
				return cli.Exit(invidxerrors.NewBuildError("flush", outputFile, err), 1)
			}
		}
	}

	result, err := builder.Finalize()
	if err != nil {
		return cli.Exit(invidxerrors.NewBuildError("merge", outputFile, err), 1)
	}
	for _, cleanupErr := range result.CleanupErrs {
		debug.Log("CLEANUP", "%v", invidxerrors.NewCleanupError(outputFile, cleanupErr))
	}

	fmt.Printf("built index: %d blocks, %d terms -> %s\n", result.BlocksWritten, result.TermCount, outputFile)

	if compress != "" {
		if err := buildCompressedDictionary(outputFile, compress); err != nil {
			return cli.Exit(err, 1)
		}
	}

	if skips > 0 {
		if _, err := indexfile.Load(outputFile, skips); err != nil {
			return cli.Exit(err, 1)
		}
	}

	return nil
}

// resolveBlockSize parses the positional blockSize argument, honoring the
// literal "auto" value (derive the budget from a fraction of system memory,
// the SPEC_FULL.md §2.2 auto block-size supplement) or a config-level auto
// setting when no explicit argument is given. Any other value must parse as
// an integer; "0" is not treated as auto.
func resolveBlockSize(arg string, cfg *config.Config) (int, error) {
	if arg == "auto" || (arg == "" && cfg.BlockSizeAuto) {
		return autoBlockSize(), nil
	}
	if arg == "" {
		if cfg.BlockSize > 0 {
			return cfg.BlockSize, nil
		}
		return 0, fmt.Errorf("blockSize is required")
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid blockSize %q: %w", arg, err)
	}
	return n, nil
}

// autoBlockSize derives a SPIMI token budget from 1/64th of total system
// memory, assuming roughly 64 bytes of overhead per buffered token.
func autoBlockSize() int {
	const bytesPerToken = 64
	const memoryFraction = 64
	budget := int(memory.TotalMemory() / memoryFraction / bytesPerToken)
	if budget < 1000 {
		budget = 1000
	}
	return budget
}

func splitCommaList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func buildCompressedDictionary(indexPath, scheme string) error {
	idx, err := indexfile.Load(indexPath, 0)
	if err != nil {
		return err
	}
	terms := idx.Terms()

	switch scheme {
	case "string":
		var c dictcompress.StringCompressor
		c.Build(terms)
		return c.Save(indexPath + ".string_dict")
	case "block":
		c := dictcompress.NewBlockingCompressor(0)
		c.Build(terms)
		return c.Save(indexPath + ".block_dict")
	case "front":
		var c dictcompress.FrontCodingCompressor
		c.Build(terms)
		return c.Save(indexPath + ".front_dict")
	default:
		return fmt.Errorf("unknown --compress scheme %q (want block, front, or string)", scheme)
	}
}

func runSearch(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return cli.Exit("usage: invidx search <query> <indexFile> [flags]", 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	rawQuery := c.Args().Get(0)
	indexPath := config.ResolvePath(c.Args().Get(1), cfg.IndicesDir)

	skips := cfg.Skips
	if c.IsSet("skips") {
		skips = c.Int("skips")
	}

	if _, err := os.Stat(indexPath); err != nil {
		return cli.Exit(invidxerrors.NewNotFoundError("open index file", indexPath), 1)
	}

	idx, err := indexfile.Load(indexPath, skips)
	if err != nil {
		return cli.Exit(err, 1)
	}

	pipeline := textpipeline.New()
	matches := query.Run(rawQuery, pipeline, idx).Docs()

	colorMode := cfg.Color
	if raw := c.String("color"); raw != "" {
		colorMode = raw
	}
	printMatches(matches, colorMode)
	return nil
}

func printMatches(matches []postinglist.DocID, colorMode string) {
	useColor := colorMode == "always" || (colorMode != "never" && color.NoColor == false)
	green := color.New(color.FgGreen)
	if colorMode == "always" {
		green.EnableColor()
	}
	highlight := green.SprintFunc()

	if len(matches) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, m := range matches {
		if useColor {
			fmt.Println(highlight(string(m)))
		} else {
			fmt.Println(string(m))
		}
	}
}
