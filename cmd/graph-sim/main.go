/*
 * graph-sim runs the full layout and reveal choreography on a graph read
 * from a JSON document or a postgres instance, then writes the final
 * renderable snapshot as JSON and optionally as a PNG.
 */
package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rob-hayward/zer0-graph-engine/db"
	"github.com/rob-hayward/zer0-graph-engine/db/postgres"
	"github.com/rob-hayward/zer0-graph-engine/engine"
)

var (
	flagInput    string
	flagPostgres bool
	flagProfile  string
	flagOut      string
	flagPNG      string
	flagInvert   bool
	flagFrames   int
)

var rootCmd = &cobra.Command{
	Use:   "graph-sim",
	Short: "graph-sim — run the vote-weighted layout engine to completion",
	Long: "graph-sim feeds a graph universe through scheduling, the drop and\n" +
		"settlement phases and the staggered reveal, driven by a synthetic\n" +
		"clock, and dumps the resulting snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := engine.GetEnvConfig()
		if flagProfile != "" {
			var err error
			conf, err = loadProfile(flagProfile, conf)
			if err != nil {
				return err
			}
		}
		source, cleanup, err := makeSource()
		if err != nil {
			return err
		}
		defer cleanup()
		return run(cmd.Context(), source, conf, runOptions{
			SnapshotPath: flagOut,
			PNGPath:      flagPNG,
			InvertColor:  flagInvert,
			MaxFrames:    flagFrames,
		})
	},
}

func makeSource() (db.DataSource, func(), error) {
	if flagPostgres {
		pg, err := postgres.NewPostgresDB(db.GetEnvConfig())
		if err != nil {
			return nil, nil, err
		}
		return pg, func() {}, nil
	}
	if flagInput == "-" {
		return db.NewJSONSource(os.Stdin), func() {}, nil
	}
	f, err := os.Open(flagInput)
	if err != nil {
		return nil, nil, err
	}
	return db.NewJSONSource(f), func() { f.Close() }, nil
}

func main() {
	rootCmd.Flags().StringVarP(&flagInput, "input", "i", "-", "graph JSON file, '-' for stdin")
	rootCmd.Flags().BoolVar(&flagPostgres, "postgres", false, "load the graph from postgres instead of JSON")
	rootCmd.Flags().StringVar(&flagProfile, "profile", "", "TOML tuning profile")
	rootCmd.Flags().StringVarP(&flagOut, "out", "o", "snapshot.json", "snapshot output file")
	rootCmd.Flags().StringVar(&flagPNG, "png", "", "also render the snapshot to this PNG file")
	rootCmd.Flags().BoolVar(&flagInvert, "invert", false, "render the PNG white-on-black")
	rootCmd.Flags().IntVar(&flagFrames, "max-frames", 5000, "abort after this many frames")
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("graph-sim failed")
	}
}
