package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fwtools/hexforge/pkg/firmware"
	"github.com/fwtools/hexforge/pkg/ihex"
	"github.com/fwtools/hexforge/pkg/merge"
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge <out> <in[:offset]>...",
	Short: "Combine several images into one",
	Long: `Combine firmware images into a single output image. Sources
are applied in argument order; an optional :offset suffix shifts a
source before merging. The policy decides what happens where sources
overlap: last (later source wins), first, or strict (overlap is an
error). The output keeps the entry point of the first source that has
one.

Examples:
  hexforge merge full.hex boot.hex app.hex
  hexforge merge full.hex boot.hex app.bin:0x8000 --policy strict
  hexforge merge flash.bin boot.hex app.hex --gap-fill 0x00`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		policyName, _ := cmd.Flags().GetString("policy")
		to, _ := cmd.Flags().GetString("to")
		fillRaw, _ := cmd.Flags().GetString("gap-fill")
		recordLength, _ := cmd.Flags().GetInt("record-length")

		policy, err := merge.ParsePolicy(policyName)
		if err != nil {
			return err
		}
		fill, err := parseFill(fillRaw)
		if err != nil {
			return err
		}

		sources := make([]merge.Source, 0, len(args)-1)
		var entry *ihex.Start
		format := firmware.FormatUnknown
		for _, arg := range args[1:] {
			path, offset := parseSourceArg(arg)
			im, err := loadImage(path, "auto", 0)
			if err != nil {
				return err
			}
			if entry == nil {
				entry = im.Start
			}
			if format == firmware.FormatUnknown {
				format = im.Format
			}
			sources = append(sources, merge.Source{Space: im.Space, Offset: offset})
		}

		merged, err := merge.Merge(sources, merge.WithPolicy(policy))
		if err != nil {
			return err
		}

		out := &firmware.Image{Space: merged, Start: entry, Format: format}
		outFormat, err := outputFormat(args[0], to)
		if err != nil {
			return err
		}
		if err := saveImage(args[0], out, outFormat, recordLength, fill, nil); err != nil {
			return err
		}

		cmd.Printf("Merged %d sources into %s (%d data bytes)\n", len(sources), args[0], merged.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().String("policy", "last", "Collision policy (last, first, strict)")
	mergeCmd.Flags().String("to", "auto", "Output format (auto, hex, bin)")
	mergeCmd.Flags().String("gap-fill", "0xFF", "Byte substituted for gaps in binary output")
	mergeCmd.Flags().Int("record-length", 16, "Data bytes per Intel HEX record")
}
