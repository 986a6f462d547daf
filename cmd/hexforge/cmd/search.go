package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fwtools/hexforge/pkg/search"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <file> <pattern>",
	Short: "Find a pattern inside an image",
	Long: `Find every occurrence of a pattern in an image's data. The
pattern is hex bytes by default; --kind selects ASCII text or a Go
regular expression instead. Matches never span the gaps between
segments.

Examples:
  hexforge search firmware.hex "DE AD BE EF"
  hexforge search firmware.hex fw-1.4 --kind ascii
  hexforge search firmware.hex 'v[0-9]+\.[0-9]+' --kind regex --limit 5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kindName, _ := cmd.Flags().GetString("kind")
		formatName, _ := cmd.Flags().GetString("format")
		baseRaw, _ := cmd.Flags().GetString("base")
		limit, _ := cmd.Flags().GetInt("limit")

		kind, err := search.ParseKind(kindName)
		if err != nil {
			return err
		}
		base, err := parseAddress(baseRaw)
		if err != nil {
			return err
		}
		im, err := loadImage(args[0], formatName, base)
		if err != nil {
			return err
		}

		it, err := search.Run(im.Space, search.Query{Kind: kind, Pattern: args[1]})
		if err != nil {
			return err
		}
		defer it.Close()

		count := 0
		for it.Next() {
			if limit > 0 && count >= limit {
				cmd.Printf("... (stopped after %d matches)\n", limit)
				break
			}
			m := it.Match()
			cmd.Printf("0x%08X  % X\n", m.Address, m.Bytes)
			count++
		}
		if count == 0 {
			cmd.Printf("No matches\n")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().String("kind", "hex", "Pattern kind (hex, ascii, regex)")
	searchCmd.Flags().String("format", "auto", "Input format (auto, hex, bin)")
	searchCmd.Flags().String("base", "0", "Load address for raw binary input")
	searchCmd.Flags().Int("limit", 0, "Stop after this many matches (0 = all)")
}
