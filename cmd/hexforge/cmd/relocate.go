package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fwtools/hexforge/pkg/firmware"
	"github.com/fwtools/hexforge/pkg/memory"
	"github.com/fwtools/hexforge/pkg/rawbin"
)

// relocateCmd represents the relocate command
var relocateCmd = &cobra.Command{
	Use:   "relocate <in> <out>",
	Short: "Shift an image to other addresses",
	Long: `Shift every byte of a firmware image by a signed delta, or
move the whole image so its lowest address lands on a base. Exactly one
of --delta and --base must be given. The output keeps the input's
encoding. Raw binary input loads at address 0 before the shift.

Examples:
  hexforge relocate app.hex app_moved.hex --delta 0x1000
  hexforge relocate app.hex app_moved.hex --delta -4096
  hexforge relocate boot.bin boot_high.bin --base 0x08000000`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("delta") == cmd.Flags().Changed("base") {
			return fmt.Errorf("exactly one of --delta and --base must be given")
		}

		im, err := loadImage(args[0], "auto", 0)
		if err != nil {
			return err
		}

		var moved *memory.Space
		if cmd.Flags().Changed("delta") {
			deltaRaw, _ := cmd.Flags().GetString("delta")
			delta, err := parseDelta(deltaRaw)
			if err != nil {
				return err
			}
			moved, err = im.Space.Relocate(delta)
			if err != nil {
				return err
			}
		} else {
			baseRaw, _ := cmd.Flags().GetString("base")
			base, err := parseAddress(baseRaw)
			if err != nil {
				return err
			}
			moved, err = firmware.RelocateToBase(im.Space, base)
			if err != nil {
				return err
			}
		}

		out := &firmware.Image{Space: moved, Start: im.Start, Format: im.Format}
		if err := saveImage(args[1], out, out.Format, 0, rawbin.DefaultFill, nil); err != nil {
			return err
		}

		if min, max, ok := moved.AddressRange(); ok {
			cmd.Printf("Wrote %s (0x%08X..0x%08X)\n", args[1], min, max)
		} else {
			cmd.Printf("Wrote %s (empty image)\n", args[1])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(relocateCmd)
	relocateCmd.Flags().String("delta", "", "Signed distance to shift by")
	relocateCmd.Flags().String("base", "", "Target address for the lowest byte")
}
