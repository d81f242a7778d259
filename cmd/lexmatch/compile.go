package lexmatch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexmatch/lexmatch/internal/config"
	"github.com/lexmatch/lexmatch/internal/searcher"
)

var (
	compileOut    string
	compileFormat string
)

var compileCmd = &cobra.Command{
	Use:   "compile <keywords.yml>",
	Short: "Compile a keyword set into a portable searcher record",
	Long: `Compile builds the automaton once and writes its record to a file,
so serve mode and other hosts can load it without rebuilding. The JSON
format is human-inspectable; msgpack is denser.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		keys, err := config.LoadKeywords(args[0])
		if err != nil {
			return err
		}
		b := searcher.NewBuilder()
		for _, k := range keys {
			b.Insert(k.Pattern, k.Alias)
		}
		s := b.Finalize()

		var data []byte
		switch compileFormat {
		case "json":
			data, err = searcher.Encode(s)
		case "msgpack":
			data, err = searcher.EncodeBinary(s)
		default:
			return fmt.Errorf("unknown format %q (want json or msgpack)", compileFormat)
		}
		if err != nil {
			return err
		}

		out := compileOut
		if out == "" {
			out = args[0] + ".lxr"
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write record: %w", err)
		}

		blacks, blues := s.Edges()
		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"out":         out,
				"keywords":    len(keys),
				"nodes":       s.Nodes(),
				"blacks":      blacks,
				"blues":       blues,
				"fingerprint": fmt.Sprintf("%016x", searcher.Fingerprint(s)),
			})
		}
		fmt.Printf("compiled %d keywords into %s\n", len(keys), out)
		fmt.Printf("nodes: %d  black edges: %d  blue links: %d\n", s.Nodes(), blacks, blues)
		fmt.Printf("fingerprint: %016x\n", searcher.Fingerprint(s))
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVarP(&compileOut, "out", "o", "", "output path (default: <keywords>.lxr)")
	compileCmd.Flags().StringVar(&compileFormat, "format", "json", "record format: json or msgpack")
	rootCmd.AddCommand(compileCmd)
}
