package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"gohack/pkg/cpu"
	"gohack/pkg/utils"
)

var (
	runSteps      int
	runKey        uint16
	runDump       int
	runScreenshot string
	runScale      int
	runSnapshot   string
	runRestore    string
)

var runCmd = &cobra.Command{
	Use:   "run programFile",
	Short: "Run a .asm or .hack program on the emulated Hack CPU",
	Long: `Run loads a program into ROM, assembling it first when it is not a
.hack file, and executes it until it halts or the step budget runs out.
A program halts when it runs past its last instruction or enters the
"@END / 0;JMP" loop at END.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vm, err := loadMachine(args[0])
		if err != nil {
			return err
		}
		if runRestore != "" {
			if err := vm.RestoreFromFile(runRestore); err != nil {
				return fmt.Errorf("restore from %q failed: %w", runRestore, err)
			}
			glog.Infof("restored machine state from %s", runRestore)
		}
		if runKey != 0 {
			vm.PushKey(runKey)
		}

		steps := vm.Run(runSteps)
		if !vm.Halted {
			glog.Warningf("%s still running after %d steps", args[0], steps)
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"run complete (%s): steps=%d halted=%t PC=%d A=%d D=%d\n",
			args[0], vm.Steps, vm.Halted, vm.PC, vm.A, int16(vm.D),
		)
		for addr := 0; addr < runDump && addr < cpu.RAMSize; addr++ {
			fmt.Fprintf(cmd.OutOrStdout(), "RAM[%d] = %d\n", addr, int16(vm.RAM[addr]))
		}

		if runScreenshot != "" {
			if err := vm.SaveScreenshot(runScreenshot, runScale); err != nil {
				return fmt.Errorf("failed to write screenshot %q: %w", runScreenshot, err)
			}
			glog.Infof("screenshot -> %s", runScreenshot)
		}
		if runSnapshot != "" {
			if err := vm.HibernateToFile(runSnapshot); err != nil {
				return fmt.Errorf("failed to write snapshot %q: %w", runSnapshot, err)
			}
			glog.Infof("snapshot -> %s", runSnapshot)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runSteps, "steps", 1_000_000, "maximum instructions to execute (0 = until halted)")
	runCmd.Flags().Uint16Var(&runKey, "key", 0, "Hack key code held down for the whole run")
	runCmd.Flags().IntVar(&runDump, "dump", 0, "print the first N RAM words after the run")
	runCmd.Flags().StringVar(&runScreenshot, "screenshot", "", "write the screen to this PNG file")
	runCmd.Flags().IntVar(&runScale, "scale", 1, "screenshot scale factor")
	runCmd.Flags().StringVar(&runSnapshot, "snapshot", "", "write the final machine state to this ZIP archive")
	runCmd.Flags().StringVar(&runRestore, "restore", "", "resume from a snapshot instead of a fresh machine")
	rootCmd.AddCommand(runCmd)
}

// loadMachine returns a CPU with path loaded into ROM. Files ending in
// .hack are read as machine code; anything else is assembled first.
func loadMachine(path string) (*cpu.CPU, error) {
	var lines []string
	if strings.EqualFold(filepath.Ext(path), ".hack") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read binary file %q: %w", path, err)
		}
		lines = utils.ReadLines(string(data))
	} else {
		_, code, err := assembleFile(path)
		if err != nil {
			return nil, err
		}
		lines = code
	}

	vm := cpu.NewCPU()
	if err := vm.LoadHack(lines); err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", path, err)
	}
	glog.V(1).Infof("loaded %d words from %s", vm.ProgramSize, path)
	return vm, nil
}
