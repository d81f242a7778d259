package lexmatch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexmatch/lexmatch/internal/searcher"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <record-file>",
	Short: "Show the structure of a compiled searcher record",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		// JSON first, then the msgpack form; compile emits either.
		s, err := searcher.Decode(data)
		if err != nil {
			s, err = searcher.DecodeBinary(data)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		blacks, blues := s.Edges()
		keywords := s.Keywords()
		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"nodes":       s.Nodes(),
				"blacks":      blacks,
				"blues":       blues,
				"keywords":    keywords,
				"fingerprint": fmt.Sprintf("%016x", searcher.Fingerprint(s)),
			})
		}
		fmt.Printf("nodes: %d  black edges: %d  blue links: %d\n", s.Nodes(), blacks, blues)
		fmt.Printf("fingerprint: %016x\n", searcher.Fingerprint(s))
		fmt.Printf("keywords (%d):\n", len(keywords))
		for _, k := range keywords {
			fmt.Printf("  %s\n", k)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
