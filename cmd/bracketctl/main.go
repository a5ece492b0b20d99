// Command bracketctl previews knockout brackets from group standings without
// touching a database.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Dosada05/tournament-progression/brackets"
	"github.com/Dosada05/tournament-progression/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type standingsFile struct {
	Standings []*models.GroupStanding `yaml:"standings"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bracketctl",
		Short:        "Preview knockout brackets built from group standings",
		SilenceUsage: true,
	}
	root.AddCommand(newPlanCmd(), newSeedCmd(), newPairingsCmd())
	return root
}

func newPlanCmd() *cobra.Command {
	var qualifiers int
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print bracket size, byes and play-in matches for a qualifier count",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := brackets.CalculateStructure(qualifiers)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().IntVarP(&qualifiers, "qualifiers", "n", 0, "number of qualified participants")
	_ = cmd.MarkFlagRequired("qualifiers")
	return cmd
}

type seedingFlags struct {
	standingsPath string
	qualifiers    int
	drawSeed      int64
}

func (f *seedingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.standingsPath, "standings", "s", "", "YAML file with the final group tables")
	cmd.Flags().IntVarP(&f.qualifiers, "qualifiers", "n", 0, "number of qualified participants")
	cmd.Flags().Int64Var(&f.drawSeed, "draw-seed", 1, "seed of the drawing of lots for full ties")
	_ = cmd.MarkFlagRequired("standings")
	_ = cmd.MarkFlagRequired("qualifiers")
}

func (f *seedingFlags) seeds() (models.SeedAssignment, error) {
	standings, err := loadStandings(f.standingsPath)
	if err != nil {
		return models.SeedAssignment{}, err
	}
	return brackets.CalculateSeeds(standings, f.qualifiers, f.drawSeed)
}

func newSeedCmd() *cobra.Command {
	var flags seedingFlags
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Print the seed order of the qualifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := flags.seeds()
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), seeds)
		},
	}
	flags.register(cmd)
	return cmd
}

func newPairingsCmd() *cobra.Command {
	var flags seedingFlags
	cmd := &cobra.Command{
		Use:   "pairings",
		Short: "Print byes, play-in pairings and the first round",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := brackets.CalculateStructure(flags.qualifiers)
			if err != nil {
				return err
			}
			seeds, err := flags.seeds()
			if err != nil {
				return err
			}
			pairings, err := brackets.Pair(seeds, plan)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), pairings)
		},
	}
	flags.register(cmd)
	return cmd
}

func loadStandings(path string) ([]*models.GroupStanding, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading standings: %w", err)
	}
	var file standingsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing standings %s: %w", path, err)
	}
	if len(file.Standings) == 0 {
		return nil, fmt.Errorf("%s contains no standings", path)
	}
	return file.Standings, nil
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
