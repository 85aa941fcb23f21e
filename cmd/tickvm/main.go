// Command tickvm assembles and runs a tickvm program, either to
// completion or under the interactive debugger, matching main.go's
// flag-based CLI shell.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tickvm/tickvm/ast"
	"github.com/tickvm/tickvm/compiler"
	"github.com/tickvm/tickvm/config"
	"github.com/tickvm/tickvm/debugger"
	"github.com/tickvm/tickvm/lexer"
	"github.com/tickvm/tickvm/sourcemap"
	"github.com/tickvm/tickvm/vm"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to a tickvm TOML config file (default: platform config path)")
		maxTicks    = flag.Uint64("max-ticks", 0, "Maximum ticks before halting (0 uses the config default)")
		enableTrace = flag.Bool("trace", false, "Enable the in-memory execution trace")
		tuiMode     = flag.Bool("tui", false, "Launch the interactive debugger instead of running to completion")
		verbose     = flag.Bool("verbose", false, "Verbose output")
		dumpSymbols = flag.Bool("dump-symbols", false, "Print the compiled instruction listing and exit")
	)

	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: tickvm [flags] <source-file>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	sourcePath := flag.Arg(0)
	data, err := os.ReadFile(sourcePath) // #nosec G304 -- user-specified source file
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", sourcePath, err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	unit := sourcemap.New(sourcePath, data)

	if *dumpSymbols {
		if err := runDumpSymbols(unit, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	asm, err := compiler.CompileSource(unit, cfg.ToLimits())
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile error: %v\n", err)
		os.Exit(1)
	}

	machine := vm.New(cfg.ToLimits())
	if err := machine.LoadAssembly(asm); err != nil {
		fmt.Fprintf(os.Stderr, "load error: %v\n", err)
		os.Exit(1)
	}

	machine.SetDbgCallback(func(s string) { fmt.Print(s) })

	if *enableTrace || cfg.Execution.EnableTrace {
		machine.EnableTrace(cfg.Execution.TraceCapacity)
	}

	if *tuiMode {
		d := debugger.NewDebugger(machine, cfg.Debugger.HistorySize)
		tui := debugger.NewTUI(d)
		if err := tui.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "debugger error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	limit := cfg.Execution.MaxTicks
	if *maxTicks > 0 {
		limit = *maxTicks
	}

	if *verbose {
		fmt.Printf("loaded %d instructions, %d byte text section\n", len(asm.Instructions), len(asm.TextSection))
	}

	runToCompletion(machine, limit, *verbose)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func runToCompletion(machine *vm.VM, maxTicks uint64, verbose bool) {
	var ticks uint64
	for {
		status, err := machine.Tick()
		if err != nil {
			fmt.Fprintf(os.Stderr, "runtime error at pc=%d: %v\n", machine.PC(), err)
			os.Exit(1)
		}
		ticks++

		if status.Terminal() {
			if verbose {
				fmt.Printf("halted after %d ticks: %s\n", ticks, status)
			}
			break
		}
		if status == vm.Yield {
			continue
		}
		if maxTicks > 0 && ticks >= maxTicks {
			fmt.Fprintf(os.Stderr, "exceeded max-ticks (%d) without halting\n", maxTicks)
			os.Exit(1)
		}
	}

	for i, r := range machine.Registers() {
		fmt.Printf("r%d = %g\n", i, r)
	}
}

func runDumpSymbols(unit *sourcemap.Unit, cfg *config.Config) error {
	tokens, err := lexer.Tokenize(unit)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	prog, err := ast.Build(unit, tokens)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	asm, err := compiler.Compile(prog, cfg.ToLimits())
	if err != nil {
		return fmt.Errorf("compile error: %w", err)
	}

	labelsByPC := make(map[int]string, len(prog.Labels))
	for name, pc := range prog.Labels {
		labelsByPC[pc] = name
	}

	for i, inst := range asm.Instructions {
		if name, ok := labelsByPC[i]; ok {
			fmt.Printf("%s:\n", name)
		}
		fmt.Printf("  %4d: %s\n", i, inst.String())
	}

	return nil
}
