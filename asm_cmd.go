package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"gohack/pkg/asm"
	"gohack/pkg/utils"
)

var (
	asmOutPath string
	asmStdout  bool
	asmSymbols bool
)

var asmCmd = &cobra.Command{
	Use:   "asm sourceFile",
	Short: "Assemble a .asm file into .hack machine code",
	Long: `Asm runs both assembler passes over one source file and writes one
16-character binary line per instruction. The output defaults to the input
path with a .hack extension. Nothing is written if any line fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, code, err := assembleFile(args[0])
		if err != nil {
			return err
		}

		if asmSymbols {
			printSymbols(cmd, a.Symbols())
		}

		if asmStdout {
			_, err := fmt.Fprint(cmd.OutOrStdout(), hackText(code))
			return err
		}

		output := asmOutPath
		if output == "" {
			output = utils.ReplaceExt(args[0], ".hack")
		}
		if err := os.WriteFile(output, []byte(hackText(code)), 0o644); err != nil {
			return fmt.Errorf("failed to write %q: %w", output, err)
		}
		glog.Infof("assembled %d instructions -> %s", len(code), output)
		return nil
	},
}

func init() {
	asmCmd.Flags().StringVarP(&asmOutPath, "out", "o", "", "output .hack file path (default: input with .hack extension)")
	asmCmd.Flags().BoolVar(&asmStdout, "stdout", false, "write machine code to stdout instead of a file")
	asmCmd.Flags().BoolVar(&asmSymbols, "symbols", false, "print the label and variable tables")
	rootCmd.AddCommand(asmCmd)
}

// assembleFile reads and assembles one source file.
func assembleFile(path string) (*asm.Assembler, []string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read input file %q: %w", path, err)
	}

	a := asm.NewAssembler()
	code, _, err := a.Assemble(string(source))
	if err != nil {
		return nil, nil, fmt.Errorf("assembly of %s failed: %w", path, err)
	}
	glog.V(1).Infof("%s: %d labels, %d variables", path, len(a.Symbols().Labels()), len(a.Symbols().Variables()))
	return a, code, nil
}

func hackText(code []string) string {
	if len(code) == 0 {
		return ""
	}
	return strings.Join(code, "\n") + "\n"
}

type symbolDump struct {
	Labels    map[string]uint16
	Variables map[string]uint16
	Order     []string
}

func printSymbols(cmd *cobra.Command, syms *asm.SymbolTable) {
	printer := pp.New()
	printer.SetOutput(cmd.ErrOrStderr())
	printer.SetColoringEnabled(false)
	printer.Println(symbolDump{
		Labels:    syms.Labels(),
		Variables: syms.Variables(),
		Order:     syms.VariableOrder(),
	})
}
