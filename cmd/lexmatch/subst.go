package lexmatch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexmatch/lexmatch/internal/engine"
)

var (
	substKeywords string
	substPath     string
	substWrite    bool
	substInclude  string
	substExclude  string
	substMaxBytes int64
	substNoCache  bool
)

var substCmd = &cobra.Command{
	Use:   "subst [text]",
	Short: "Replace keyword occurrences with their aliases",
	Long: `Subst compiles the keyword set and replaces every occurrence with
its alias. Overlapping matches resolve first-match-wins: an occurrence
starting inside an already replaced span is skipped. Without --path the
result goes to stdout; with --path eligible files in the tree are
substituted, in place when --write is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := loadSearcher(substKeywords, substNoCache)
		if err != nil {
			return err
		}

		if substPath != "" {
			fileCfg := loadFileConfig()
			cfg := engine.Config{
				Root:         substPath,
				IncludeGlobs: pickString(substInclude, fileCfg.Include, ""),
				ExcludeGlobs: pickString(substExclude, fileCfg.Exclude, ""),
				MaxBytes:     pickInt64(substMaxBytes, fileCfg.MaxBytes, 0),
			}
			rewrites, err := engine.SubstTree(cfg, s, substWrite, nil)
			if err != nil {
				return err
			}
			if flagJSON {
				return json.NewEncoder(os.Stdout).Encode(rewrites)
			}
			changed := 0
			for _, rw := range rewrites {
				if rw.Changed {
					changed++
					verb := "would change"
					if substWrite {
						verb = "changed"
					}
					fmt.Printf("%s %s\n", verb, rw.Path)
				}
			}
			fmt.Printf("%d of %d files changed\n", changed, len(rewrites))
			return nil
		}

		text, err := readText(args)
		if err != nil {
			return err
		}
		result := s.Subst(text)
		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(map[string]string{"result": result})
		}
		fmt.Print(result)
		return nil
	},
}

func init() {
	substCmd.Flags().StringVarP(&substKeywords, "keywords", "k", "", "keyword set YAML file (required)")
	substCmd.Flags().StringVarP(&substPath, "path", "p", "", "substitute across a directory tree instead of text")
	substCmd.Flags().BoolVarP(&substWrite, "write", "w", false, "rewrite changed files in place")
	substCmd.Flags().StringVar(&substInclude, "include", "", "comma-separated include globs for tree scans")
	substCmd.Flags().StringVar(&substExclude, "exclude", "", "comma-separated exclude globs for tree scans")
	substCmd.Flags().Int64Var(&substMaxBytes, "max-bytes", 0, "skip files larger than this many bytes")
	substCmd.Flags().BoolVar(&substNoCache, "no-cache", false, "bypass the compiled set cache")
	_ = substCmd.MarkFlagRequired("keywords")
	rootCmd.AddCommand(substCmd)
}
