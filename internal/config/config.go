// Package config loads the optional ".invidx.kdl" configuration file that
// supplies defaults for the index/search commands (default block size,
// extension filters, compression scheme, skip size, corpus/indices
// directories, color mode). Parsing is grounded on the teacher's
// internal/config/kdl_config.go: same kdl-go document walk, same
// nodeName/firstIntArg/firstStringArg/collectStringArgs helper shapes,
// generalized from lci's project/index/search sections to invidx's
// paths/build/search sections.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	invidxerrors "github.com/standardbeagle/invidx/internal/errors"
)

// Config holds every setting the "index" and "search" commands can source
// from a KDL file instead of flags; flags always take precedence over a
// loaded Config value.
type Config struct {
	CorpusDir     string   // default directory for relative input paths
	IndicesDir    string   // default directory for relative index paths
	BlockSize     int      // 0 means unset (auto or flag-supplied)
	BlockSizeAuto bool     // derive BlockSize from system memory at build time
	Extensions    []string // e.g. [".txt", ".md"]; empty means no filtering
	Compress      string   // "", "block", "front", or "string"
	Skips         int      // skip-pointer size; 0 disables skip pointers
	Color         string   // "auto", "always", "never"
}

// DefaultConfigFileName is the file Load looks for when no explicit path is
// given, mirroring the teacher's "--config"/"-c" default of ".lci.kdl".
const DefaultConfigFileName = ".invidx.kdl"

// defaults returns a Config populated with the system's built-in defaults,
// applied before any KDL file is parsed on top.
func defaults() *Config {
	return &Config{
		CorpusDir:  "corpus",
		IndicesDir: "indices",
		Color:      "auto",
	}
}

// Load reads path (an explicit --config flag value, or DefaultConfigFileName
// under dir if path is empty) and returns the parsed Config. A missing file
// is not an error: Load returns the built-in defaults.
func Load(dir, path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = filepath.Join(dir, DefaultConfigFileName)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, invidxerrors.NewConfigError("", path, err)
	}

	if err := parseKDL(string(content), cfg); err != nil {
		return nil, invidxerrors.NewConfigError("", path, err)
	}
	return cfg, nil
}

func parseKDL(content string, cfg *Config) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("parsing KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "paths":
			for _, cn := range n.Children {
				assignSimpleString(cn, "corpus", func(v string) { cfg.CorpusDir = v })
				assignSimpleString(cn, "indices", func(v string) { cfg.IndicesDir = v })
			}
		case "build":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "block_size":
					if s, ok := firstStringArg(cn); ok && s == "auto" {
						cfg.BlockSizeAuto = true
					} else if v, ok := firstIntArg(cn); ok {
						cfg.BlockSize = v
					}
				case "extensions":
					cfg.Extensions = collectStringArgs(cn)
				case "compress":
					if s, ok := firstStringArg(cn); ok {
						cfg.Compress = s
					}
				}
			}
		case "search":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "skips":
					if v, ok := firstIntArg(cn); ok {
						cfg.Skips = v
					}
				case "color":
					if s, ok := firstStringArg(cn); ok {
						cfg.Color = s
					}
				}
			}
		}
	}
	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

// collectStringArgs gathers a node's string arguments (inline form:
// `extensions ".go" ".md"`) or, failing that, its children's names (block
// form: `extensions { ".go" ; ".md" }`).
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// ResolvePath implements spec.md §6's path resolution rule: a path
// beginning with "data/" is resolved relative to the working directory;
// otherwise it is used as-is if absolute, or resolved relative to
// defaultDir (cfg.CorpusDir or cfg.IndicesDir) if relative.
func ResolvePath(path, defaultDir string) string {
	if strings.HasPrefix(path, "data/") {
		cwd, err := os.Getwd()
		if err != nil {
			return path
		}
		return filepath.Join(cwd, path)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(defaultDir, path)
}
