package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/cods/internal/builtin"
	"github.com/funvibe/cods/internal/cods"
	"github.com/funvibe/cods/internal/config"
	"github.com/funvibe/cods/internal/renderer"

	gocontext "context"
)

// builtinDoc is the YAML-friendly shape printed by --builtins.
type builtinDoc struct {
	Name       string   `yaml:"name"`
	Signatures []string `yaml:"signatures"`
}

func main() {
	args := os.Args[1:]

	if len(args) >= 1 && (args[0] == "-help" || args[0] == "--help" || args[0] == "help") {
		printHelp()
		return
	}

	if len(args) >= 1 && args[0] == "--builtins" {
		if err := printBuiltins(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		return
	}

	var expr string
	var files []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-e", "--eval":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "error: -e requires an expression argument")
				os.Exit(1)
			}
			expr = args[i+1]
			i++
		case "--force-color":
			config.ForceColor = true
		case "--no-color":
			config.DisableColor = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				files = append(files, args[i])
			}
		}
	}

	if expr != "" {
		runOne(expr)
		return
	}

	if len(files) == 0 {
		src, err := readStdin()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		runOne(src)
		return
	}

	if len(files) == 1 {
		src, err := os.ReadFile(files[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		runOne(string(src))
		return
	}

	runMany(files)
}

func readStdin() (string, error) {
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", fmt.Errorf("usage: cods [file.cods] | cods -e <expr> | pipe source on stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// runOne runs a single source through the pipeline and reports diagnostics,
// exiting non-zero if the run did not complete cleanly.
func runOne(src string) {
	out := bufio.NewWriterSize(os.Stdout, config.SinkBufferSize)
	defer out.Flush()
	ctx := cods.New(out)
	result := ctx.ParseAndEval(src)
	out.Flush()

	for _, w := range result.Warnings {
		renderer.Warning(os.Stderr, src, w)
	}
	if !result.Ok() {
		for _, e := range result.Errors {
			renderer.Error(os.Stderr, src, e)
		}
		os.Exit(1)
	}
}

// runMany evaluates every file concurrently and reports each one's
// diagnostics in input order, exiting non-zero if any source failed.
func runMany(paths []string) {
	sources := make([]string, len(paths))
	for i, p := range paths {
		if !strings.HasSuffix(p, config.SourceExtension) {
			fmt.Fprintf(os.Stderr, "warning: %s does not have the %s extension\n", p, config.SourceExtension)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		sources[i] = string(data)
	}

	out := bufio.NewWriterSize(os.Stdout, config.SinkBufferSize)
	defer out.Flush()
	ctx := cods.New(out)
	results, err := ctx.ParseAndEvalAll(gocontext.Background(), sources)
	out.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}

	failed := false
	for i, r := range results {
		for _, w := range r.Warnings {
			renderer.Warning(os.Stderr, sources[i], w)
		}
		if !r.Ok() {
			failed = true
			fmt.Fprintf(os.Stderr, "%s:\n", paths[i])
			for _, e := range r.Errors {
				renderer.Error(os.Stderr, sources[i], e)
			}
		}
	}
	if failed {
		os.Exit(1)
	}
}

// printBuiltins marshals the builtin catalogue to YAML, one entry per
// surface name with its candidate signatures rendered as plain text.
func printBuiltins(w io.Writer) error {
	names := make([]string, 0, len(builtin.Table))
	for name := range builtin.Table {
		names = append(names, name)
	}
	sort.Strings(names)

	docs := make([]builtinDoc, 0, len(names))
	for _, name := range names {
		sigs := builtin.Table[name]
		lines := make([]string, len(sigs))
		for i, sig := range sigs {
			lines[i] = sigString(name, sig)
		}
		docs = append(docs, builtinDoc{Name: name, Signatures: lines})
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(docs)
}

func sigString(name string, sig builtin.Signature) string {
	params := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = p.String()
	}
	tail := ""
	if len(params) > 0 {
		switch sig.Repetition {
		case builtin.ZeroOrMore:
			tail = "..."
		case builtin.OneOrMore:
			tail = "+"
		}
		params[len(params)-1] += tail
	}
	return fmt.Sprintf("%s(%s) -> %s", name, strings.Join(params, ", "), sig.Return.String())
}

func printHelp() {
	fmt.Println(`cods - a small statically checked expression language

Usage:
  cods <file.cods>        run a source file
  cods                    run source piped on stdin
  cods -e '<expr>'        evaluate a single expression
  cods --builtins         list builtin functions as YAML
  cods <file1> <file2>... run multiple sources concurrently

Flags:
  --force-color   always emit ANSI diagnostics
  --no-color      never emit ANSI diagnostics`)
}
