// Command uflarisc assembles and simulates UFLA-RISC object code.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"uflarisc/asm"
	"uflarisc/exec"
	"uflarisc/objfile"
	"uflarisc/trace"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "uflarisc",
		Short: "UFLA-RISC assembler and functional simulator",
	}

	rootCmd.AddCommand(newAssembleCmd(), newSimulateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "uflarisc:", err)
		os.Exit(1)
	}
}

func newAssembleCmd() *cobra.Command {
	var output string
	var lenient bool

	cmd := &cobra.Command{
		Use:   "assemble <source.asm>",
		Short: "Assemble UFLA-RISC mnemonic source into the binary-row object format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening source: %w", err)
			}
			defer in.Close()

			var opts []asm.Option
			if lenient {
				opts = append(opts, asm.WithLenientImmediates())
			}
			rows, err := asm.New(opts...).Assemble(in)
			if err != nil {
				return fmt.Errorf("assembling: %w", err)
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating output: %w", err)
				}
				defer f.Close()
				out = f
			}
			for _, row := range rows {
				fmt.Fprintln(out, row)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output object file path (default: stdout)")
	cmd.Flags().BoolVar(&lenient, "lenient-immediates", false, "Accept bare 0/1 strings as binary immediates")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var maxCycles uint64
	var tracePath string
	var dumpRegisters bool
	var dumpRange string

	cmd := &cobra.Command{
		Use:   "simulate <program.obj>",
		Short: "Load and run a UFLA-RISC object file to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening object file: %w", err)
			}
			defer in.Close()

			opts := []exec.Option{exec.WithMaxCycles(maxCycles)}

			var logger *trace.Logger
			if tracePath != "" {
				logger = trace.New()
				opts = append(opts, exec.WithObserver(logger))
			}

			e := exec.New(opts...)

			first, last, err := objfile.Load(in, e.Memory())
			if err != nil {
				return fmt.Errorf("loading object file: %w", err)
			}
			if first == -1 {
				return errors.New("object file contained no instructions")
			}
			if err := e.SeedPC(first); err != nil {
				return fmt.Errorf("seeding PC: %w", err)
			}
			fmt.Printf("Loaded addresses %d..%d\n", first, last)

			if logger != nil {
				logger.CaptureInitial(e.Registers(), e.State())
			}

			runErr := e.Run()

			if logger != nil {
				f, err := os.Create(tracePath)
				if err != nil {
					return fmt.Errorf("creating trace file: %w", err)
				}
				defer f.Close()
				if _, err := logger.WriteTo(f); err != nil {
					return fmt.Errorf("writing trace: %w", err)
				}
			}

			printSummary(e)

			if dumpRegisters {
				printRegisterDump(e)
			}
			if dumpRange != "" {
				if err := printMemoryDump(e, dumpRange); err != nil {
					return err
				}
			}

			if runErr != nil {
				return fmt.Errorf("run stopped: %w", runErr)
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&maxCycles, "max-cycles", exec.DefaultMaxCycles, "Cycle safety ceiling (0 disables it)")
	cmd.Flags().StringVar(&tracePath, "trace", "", "Write a per-cycle trace log to this path")
	cmd.Flags().BoolVar(&dumpRegisters, "dump-registers", false, "Print the final register file")
	cmd.Flags().StringVar(&dumpRange, "dump-memory", "", "Print a memory range after the run, as lo:hi")
	return cmd
}

func printSummary(e *exec.Emulator) {
	st := e.State()
	fmt.Printf("\nPC=%d IR=%032b\n", st.PC, st.IR)
	fmt.Printf("Flags: N=%t Z=%t C=%t V=%t\n", st.Flags.N, st.Flags.Z, st.Flags.C, st.Flags.V)
	fmt.Printf("Halted=%t Cycles=%d\n", st.Halted, e.CycleCount())
	fmt.Printf("Modified memory addresses: %v\n", e.Memory().ModifiedAddresses())
}

func printRegisterDump(e *exec.Emulator) {
	fmt.Println("\nRegisters:")
	for _, r := range e.Registers().Dump() {
		fmt.Printf("  R%-2d = %d (signed %d)\n", r.Index, r.Unsigned, r.Signed)
	}
}

func printMemoryDump(e *exec.Emulator, rangeSpec string) error {
	lo, hi, err := parseRange(rangeSpec)
	if err != nil {
		return err
	}
	rows, err := e.Memory().Dump(lo, hi)
	if err != nil {
		return fmt.Errorf("dumping memory: %w", err)
	}
	fmt.Printf("\nMemory [%d..%d]:\n", lo, hi)
	for _, row := range rows {
		fmt.Printf("  [%d] = %s\n", row.Address, row.Bits)
	}
	return nil
}

func parseRange(spec string) (lo, hi int, err error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid range %q, expected lo:hi", spec)
	}
	lo, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range lower bound %q", parts[0])
	}
	hi, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range upper bound %q", parts[1])
	}
	return lo, hi, nil
}
