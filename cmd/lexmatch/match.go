package lexmatch

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexmatch/lexmatch/internal/engine"
	"github.com/lexmatch/lexmatch/internal/report"
	"github.com/lexmatch/lexmatch/internal/types"
)

var (
	matchKeywords string
	matchLine     bool
	matchPath     string
	matchInclude  string
	matchExclude  string
	matchMaxBytes int64
	matchNoCache  bool
)

var matchCmd = &cobra.Command{
	Use:   "match [text]",
	Short: "Find keyword occurrences in text or a file tree",
	Long: `Match compiles the keyword set and reports every occurrence with
character offsets. Without --path it scans the positional argument or
stdin; with --path it walks a directory tree. --line reports only the
last match per line, with the line text as the match name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := loadSearcher(matchKeywords, matchNoCache)
		if err != nil {
			return err
		}
		mode := types.ModeAll
		if matchLine {
			mode = types.ModeLine
		}

		if matchPath != "" {
			fileCfg := loadFileConfig()
			cfg := engine.Config{
				Root:         matchPath,
				IncludeGlobs: pickString(matchInclude, fileCfg.Include, ""),
				ExcludeGlobs: pickString(matchExclude, fileCfg.Exclude, ""),
				MaxBytes:     pickInt64(matchMaxBytes, fileCfg.MaxBytes, 0),
				Mode:         mode,
			}
			started := time.Now()
			scanned := 0
			var findings []types.Finding
			err := engine.Walk(cfg, func(path string, data []byte) {
				scanned++
				for _, m := range s.Run(string(data), mode) {
					findings = append(findings, types.Finding{Path: path, Name: m.Name, Start: m.Start, End: m.End})
				}
			})
			if err != nil {
				return err
			}
			if flagJSON {
				if findings == nil {
					findings = []types.Finding{}
				}
				return json.NewEncoder(os.Stdout).Encode(findings)
			}
			report.PrintFindings(os.Stdout, findings, report.PrintOptions{
				NoColor:      flagNoColor,
				Duration:     time.Since(started),
				FilesScanned: scanned,
			})
			return nil
		}

		text, err := readText(args)
		if err != nil {
			return err
		}
		matches := s.Run(text, mode)
		if flagJSON {
			if matches == nil {
				matches = []types.Match{}
			}
			return json.NewEncoder(os.Stdout).Encode(matches)
		}
		report.PrintMatches(os.Stdout, matches, report.PrintOptions{NoColor: flagNoColor})
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVarP(&matchKeywords, "keywords", "k", "", "keyword set YAML file (required)")
	matchCmd.Flags().BoolVarP(&matchLine, "line", "l", false, "report the last match per line")
	matchCmd.Flags().StringVarP(&matchPath, "path", "p", "", "scan a directory tree instead of text")
	matchCmd.Flags().StringVar(&matchInclude, "include", "", "comma-separated include globs for tree scans")
	matchCmd.Flags().StringVar(&matchExclude, "exclude", "", "comma-separated exclude globs for tree scans")
	matchCmd.Flags().Int64Var(&matchMaxBytes, "max-bytes", 0, "skip files larger than this many bytes")
	matchCmd.Flags().BoolVar(&matchNoCache, "no-cache", false, "bypass the compiled set cache")
	_ = matchCmd.MarkFlagRequired("keywords")
	rootCmd.AddCommand(matchCmd)
}
