package cmd

import (
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show what an image file contains",
	Long: `Show the decoded contents of a firmware image: format, data
size, address range, contiguous segments and entry point metadata.

Examples:
  hexforge info firmware.hex
  hexforge info dump.bin --base 0x08000000 --segments`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		baseRaw, _ := cmd.Flags().GetString("base")
		showSegments, _ := cmd.Flags().GetBool("segments")

		base, err := parseAddress(baseRaw)
		if err != nil {
			return err
		}
		im, err := loadImage(args[0], formatName, base)
		if err != nil {
			return err
		}

		st := im.Stats()
		cmd.Printf("Format:        %s\n", st.Format)
		cmd.Printf("Data bytes:    %d\n", st.TotalBytes)
		cmd.Printf("Segments:      %d\n", st.SegmentCount)
		if st.HasData {
			cmd.Printf("Address range: 0x%08X..0x%08X\n", st.MinAddress, st.MaxAddress)
		} else {
			cmd.Printf("Address range: (empty)\n")
		}
		if st.StartKind != "" {
			cmd.Printf("Start:         %s 0x%08X\n", st.StartKind, st.StartValue)
		}
		if showSegments {
			for _, seg := range st.Segments {
				cmd.Printf("  0x%08X..0x%08X  %d bytes\n", seg.Start, seg.End, seg.Length)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().String("format", "auto", "Input format (auto, hex, bin)")
	infoCmd.Flags().String("base", "0", "Load address for raw binary input")
	infoCmd.Flags().Bool("segments", false, "List every contiguous segment")
}
