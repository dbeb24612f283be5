package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/beanboi7/chyp8/emu/cpu"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm path/ROM",
	Short: "list the instructions of a ROM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rom, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return disasm(cmd.OutOrStdout(), rom)
	},
}

// disasm lists rom as it would be laid out from cpu.ProgramStart. Data
// mixed in with code is decoded like anything else.
func disasm(w io.Writer, rom []byte) error {
	addr := int(cpu.ProgramStart)
	for i := 0; i < len(rom); i += 2 {
		if i+1 == len(rom) {
			_, err := fmt.Fprintf(w, "%.3x  %.2x    DB 0x%.2X\n", addr+i, rom[i], rom[i])
			return err
		}
		opcode := uint16(rom[i])<<8 | uint16(rom[i+1])
		if _, err := fmt.Fprintf(w, "%.3x  %.4x  %s\n", addr+i, opcode, cpu.Decode(opcode)); err != nil {
			return err
		}
	}
	return nil
}
