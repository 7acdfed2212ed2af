// Command yamllsvalidate is a small demonstration of the validation
// core: it validates a single YAML file against a schema URI supplied
// on the command line (or discovered via a yaml-language-server
// modeline) and prints any diagnostics to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yamlls/core/core"
	"github.com/yamlls/core/registry"
)

func main() {
	schemaURI := flag.String("schema", "", "schema URI to validate against (optional; a yaml-language-server modeline overrides this)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: yamllsvalidate -schema=<uri> <file.yaml>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	text, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := core.DefaultConfig()
	if *schemaURI != "" {
		cfg.Schemas = []registry.Association{{Pattern: "**/*", SchemaURI: *schemaURI}}
	}

	session := core.NewSession(cfg)
	version := session.Bump()

	result, err := session.Validate(context.Background(), path, version, text)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if result == nil {
		return
	}

	for _, d := range result.Diagnostics {
		fmt.Printf("%s:%d:%d: %s\n", path, d.Span.StartLine, d.Span.StartColumn, d.Message)
	}
	if len(result.Diagnostics) > 0 {
		os.Exit(1)
	}
}
