// dyn evaluates message-send scripts against the Foundation class library
// and any configured protobuf schemas.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/chazu/dynamic/config"
	"github.com/chazu/dynamic/dynamic"
	"github.com/chazu/dynamic/foundation"
	"github.com/chazu/dynamic/invoke"
	"github.com/chazu/dynamic/protort"
	"github.com/chazu/dynamic/script"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var (
		configPath  string
		expressions []string
		verbosity   int
		interactive bool
	)

	flagSet := pflag.NewFlagSet("dyn", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a dynamic.toml (default: search upward from the working directory)")
	flagSet.StringArrayVarP(&expressions, "eval", "e", nil, "evaluate an expression and print its value (repeatable)")
	flagSet.CountVarP(&verbosity, "verbose", "v", "log message dispatch to stderr (repeat for more detail)")
	flagSet.BoolVarP(&interactive, "interactive", "i", false, "start an interactive session after running scripts")
	flagSet.Usage = func() { printHelp(flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if verbosity > 0 {
		cfg.Logging.Enabled = true
		cfg.Logging.Verbosity = verbosity
	}

	opts, err := cfg.FoundationOptions()
	if err != nil {
		return err
	}
	f := foundation.New(opts...)
	defer f.Close()

	fds, err := cfg.ProtoFiles()
	if err != nil {
		return err
	}
	var rt invoke.Runtime = f.Space
	if len(fds) > 0 {
		rt = protort.NewWithFallback(f.Space, fds...)
	}
	in := script.New(dynamic.NewEnv(rt, dynamic.WithLogger(cfg.Logger())))

	for _, path := range flagSet.Args() {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := evalAndPrint(in, string(src), stdout); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	for _, expr := range expressions {
		if err := evalAndPrint(in, expr, stdout); err != nil {
			return err
		}
	}

	switch {
	case interactive:
		runREPL(in, stdin, stdout)
	case len(flagSet.Args()) == 0 && len(expressions) == 0:
		src, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}
		return evalAndPrint(in, string(src), stdout)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

// evalAndPrint runs src and prints the value of its last statement. Only
// syntax errors are returned; failed sends print as error values.
func evalAndPrint(in *script.Interpreter, src string, out io.Writer) error {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	result, err := in.Eval(src)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, script.Render(result))
	return nil
}

// runREPL reads statements until EOF or exit. Input accumulates until a
// line ends with a period or an empty line is entered.
func runREPL(in *script.Interpreter, stdin io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(stdin)
	var buf strings.Builder

	for {
		if buf.Len() == 0 {
			fmt.Fprint(out, ">> ")
		} else {
			fmt.Fprint(out, ".. ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		if buf.Len() == 0 && (line == "exit" || line == "quit") {
			break
		}

		if line != "" {
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(line)
			if !strings.HasSuffix(strings.TrimSpace(line), ".") {
				continue
			}
		}

		input := buf.String()
		buf.Reset()
		if err := evalAndPrint(in, input, out); err != nil {
			fmt.Fprintf(out, "syntax error: %v\n", err)
		}
	}
	fmt.Fprintln(out)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `dyn evaluates message sends against a dynamic runtime.

Scripts are read from the given files, from -e expressions, or from
standard input when neither is given. The value of the last statement
of each script is printed.

Usage:
  dyn [flags] [script...]

Examples:
  dyn -e "'hello' uppercaseString"
  dyn -e "NSUUID new UUIDString"
  dyn -c shop/dynamic.toml -e "shop.Order new setCustomerName: 'Ada'; dictionaryRepresentation"
  dyn -i

Flags:
`)
	flagSet.PrintDefaults()
}
