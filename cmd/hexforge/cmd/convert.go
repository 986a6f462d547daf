package cmd

import (
	"github.com/spf13/cobra"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert an image between encodings",
	Long: `Convert a firmware image between Intel HEX and raw binary.
The input format is detected unless --from names one; the output
format follows --to or the output file extension.

Examples:
  hexforge convert firmware.hex firmware.bin
  hexforge convert dump.bin app.hex --base 0x1000 --record-length 32
  hexforge convert app.hex flash.bin --gap-fill 0x00 --fill-range 0x0:0xFFFF`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		baseRaw, _ := cmd.Flags().GetString("base")
		fillRaw, _ := cmd.Flags().GetString("gap-fill")
		recordLength, _ := cmd.Flags().GetInt("record-length")
		rangeRaw, _ := cmd.Flags().GetString("fill-range")

		base, err := parseAddress(baseRaw)
		if err != nil {
			return err
		}
		fill, err := parseFill(fillRaw)
		if err != nil {
			return err
		}
		rng, err := parseFillRange(rangeRaw)
		if err != nil {
			return err
		}

		im, err := loadImage(args[0], from, base)
		if err != nil {
			return err
		}
		format, err := outputFormat(args[1], to)
		if err != nil {
			return err
		}
		if err := saveImage(args[1], im, format, recordLength, fill, rng); err != nil {
			return err
		}

		cmd.Printf("Wrote %s (%s, %d data bytes)\n", args[1], format, im.Space.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().String("from", "auto", "Input format (auto, hex, bin)")
	convertCmd.Flags().String("to", "auto", "Output format (auto, hex, bin)")
	convertCmd.Flags().String("base", "0", "Load address for raw binary input")
	convertCmd.Flags().String("gap-fill", "0xFF", "Byte substituted for gaps in binary output")
	convertCmd.Flags().Int("record-length", 16, "Data bytes per Intel HEX record")
	convertCmd.Flags().String("fill-range", "", "Inclusive first:last range for binary output")
}
