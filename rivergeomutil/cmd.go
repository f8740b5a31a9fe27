/*
Copyright © 2018 the rivergeom authors.
This file is part of rivergeom.

rivergeom is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

rivergeom is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with rivergeom.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package rivergeomutil provides the rivergeom command-line interface.
package rivergeomutil

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/rivergeom"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log receives progress and diagnostic messages.
var Log logrus.FieldLogger = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})

	rasterCmds := []*pflag.FlagSet{rowcolCmd.Flags(), xyCmd.Flags(), sampleCmd.Flags(), slopeCmd.Flags()}
	lineCmds := []*pflag.FlagSet{slopeCmd.Flags(), sinuosityCmd.Flags(), bearingCmd.Flags(),
		stitchCmd.Flags(), pointsCmd.Flags(), transectCmd.Flags()}

	// Options are the configuration options available to rivergeom.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel sets the verbosity of log messages. Valid values are
              "panic", "fatal", "error", "warn", "info", and "debug".`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Raster.File",
			usage: `
              Raster.File is the path to an elevation raster in ESRI ASCII grid
              format. A world file (.wld, .asw, or .tfw) next to the grid overrides
              the placement in the grid header, and a .prj file next to the grid
              gives its spatial reference. The path can include environment
              variables and can be a URL or a blob storage location.`,
			defaultVal: "",
			flagsets:   rasterCmds,
		},
		{
			name: "Raster.Affine",
			usage: `
              Raster.Affine gives the six coefficients a, b, c, d, e, f of the
              map from pixel (col, row) to coordinates (x, y), where
              x = a·col + b·row + c and y = d·col + e·row + f. If set, it
              overrides the placement read from Raster.File.`,
			defaultVal: []string{},
			flagsets:   rasterCmds,
		},
		{
			name: "Coord.X",
			usage: `
              Coord.X is a list of X coordinates.`,
			shorthand:  "x",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{rowcolCmd.Flags(), sampleCmd.Flags()},
		},
		{
			name: "Coord.Y",
			usage: `
              Coord.Y is a list of Y coordinates, one for each X coordinate.`,
			shorthand:  "y",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{rowcolCmd.Flags(), sampleCmd.Flags()},
		},
		{
			name: "Pixel.Rows",
			usage: `
              Pixel.Rows is a list of pixel row indices. Fractional indices
              are allowed.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{xyCmd.Flags()},
		},
		{
			name: "Pixel.Cols",
			usage: `
              Pixel.Cols is a list of pixel column indices, one for each row
              index. Fractional indices are allowed.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{xyCmd.Flags()},
		},
		{
			name: "Lines.File",
			usage: `
              Lines.File is the path to a shapefile or GeoJSON file holding the
              input lines. Multi-part features are split into their parts. The
              path can include environment variables and can be a URL or a
              blob storage location.`,
			defaultVal: "",
			flagsets:   lineCmds,
		},
		{
			name: "Lines.IDField",
			usage: `
              Lines.IDField is the attribute of Lines.File that holds feature
              IDs. If it is empty, features are numbered from 0.`,
			defaultVal: "",
			flagsets:   lineCmds[:5],
		},
		{
			name: "Slope.Absolute",
			usage: `
              Slope.Absolute specifies whether to report the magnitude of
              each slope rather than its sign.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{slopeCmd.Flags()},
		},
		{
			name: "Slope.Percent",
			usage: `
              Slope.Percent specifies whether to report slopes as percentages
              rather than fractions.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{slopeCmd.Flags()},
		},
		{
			name: "Bearing.Shift",
			usage: `
              Bearing.Shift is how many vertices back the bearing at each
              vertex is measured from. It must be at least 1.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{bearingCmd.Flags()},
		},
		{
			name: "Stitch.Seed",
			usage: `
              Stitch.Seed is the ID of the segment that stitching starts from.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{stitchCmd.Flags()},
		},
		{
			name: "Stitch.MaxAttempts",
			usage: `
              Stitch.MaxAttempts is the maximum number of attempts to attach a
              segment. If < 1, twice the number of segments is used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{stitchCmd.Flags()},
		},
		{
			name: "Points.Interval",
			usage: `
              Points.Interval is the distance between points placed along each
              line, in the units of the line coordinates.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags()},
		},
		{
			name: "Transect.Bank",
			usage: `
              Transect.Bank is the path to a shapefile or GeoJSON file holding
              the bank lines or the channel polygon. The path can include
              environment variables and can be a URL or a blob storage location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{transectCmd.Flags()},
		},
		{
			name: "Transect.Step",
			usage: `
              Transect.Step is the increment by which each transect is grown
              while searching for the bank.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{transectCmd.Flags()},
		},
		{
			name: "Transect.Spacing",
			usage: `
              Transect.Spacing is the distance between transects along the
              center line.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{transectCmd.Flags()},
		},
		{
			name: "Transect.Buffer",
			usage: `
              Transect.Buffer is the distance each transect is extended past
              the bank.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{transectCmd.Flags()},
		},
		{
			name: "Transect.MaxSearchDistance",
			usage: `
              Transect.MaxSearchDistance is the longest distance from the center
              line that is searched for the bank.`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{transectCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output shapefile location.
              If it is empty, results are printed instead. It can include
              environment variables and can be a blob storage location.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   lineCmds,
		},
		{
			name: "Batch.File",
			usage: `
              Batch.File is the path to a TOML file of [[Stitch]] and [[Transect]]
              jobs. It can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("RIVERGEOM")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(rowcolCmd)
	Root.AddCommand(xyCmd)
	Root.AddCommand(sampleCmd)
	Root.AddCommand(slopeCmd)
	Root.AddCommand(sinuosityCmd)
	Root.AddCommand(bearingCmd)
	Root.AddCommand(stitchCmd)
	Root.AddCommand(pointsCmd)
	Root.AddCommand(transectCmd)
	Root.AddCommand(batchCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func setConfig() error {
	if cfgpath := os.ExpandEnv(Cfg.GetString("config")); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("rivergeom: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("rivergeom: invalid LogLevel: %v", err)
	}
	logrus.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "rivergeom",
	Short: "Geometry tools for river channel analysis.",
	Long: `rivergeom measures river channels: it converts between raster pixels
and map coordinates, samples elevation rasters, calculates slope, sinuosity,
and bearing along lines, stitches line segments into a single line, places
points along lines, and builds transects across channels.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'RIVERGEOM_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of rivergeom.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("rivergeom v%s\n", rivergeom.Version)
	},
	DisableAutoGenTag: true,
}

var rowcolCmd = &cobra.Command{
	Use:   "rowcol",
	Short: "Find the pixels containing coordinates",
	Long: `rowcol prints the row and column of the raster pixel containing each
of the coordinates given by Coord.X and Coord.Y. The raster placement is
given by Raster.Affine or read from Raster.File.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rc, err := rasterConfig(Cfg)
		if err != nil {
			return err
		}
		t, err := rc.Transform(ctx)
		if err != nil {
			return err
		}
		xs, ys, err := coords(Cfg, "Coord.X", "Coord.Y")
		if err != nil {
			return err
		}
		return RowCol(cmd.OutOrStdout(), t, xs, ys)
	},
	DisableAutoGenTag: true,
}

var xyCmd = &cobra.Command{
	Use:   "xy",
	Short: "Find the coordinates of pixels",
	Long: `xy prints the coordinates of the top-left corner of each of the pixels
given by Pixel.Rows and Pixel.Cols. The raster placement is given by
Raster.Affine or read from Raster.File.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rc, err := rasterConfig(Cfg)
		if err != nil {
			return err
		}
		t, err := rc.Transform(ctx)
		if err != nil {
			return err
		}
		rows, cols, err := coords(Cfg, "Pixel.Rows", "Pixel.Cols")
		if err != nil {
			return err
		}
		return XY(cmd.OutOrStdout(), t, rows, cols)
	},
	DisableAutoGenTag: true,
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Sample raster values",
	Long: `sample prints the value of the Raster.File pixel under each of the
coordinates given by Coord.X and Coord.Y.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rc, err := rasterConfig(Cfg)
		if err != nil {
			return err
		}
		r, err := rc.Load(ctx)
		if err != nil {
			return err
		}
		xs, ys, err := coords(Cfg, "Coord.X", "Coord.Y")
		if err != nil {
			return err
		}
		return Sample(cmd.OutOrStdout(), r, xs, ys)
	},
	DisableAutoGenTag: true,
}

var slopeCmd = &cobra.Command{
	Use:   "slope",
	Short: "Calculate the average slope of lines",
	Long: `slope calculates the average slope of each line in Lines.File as the
elevation change from its first to its last vertex, sampled from Raster.File,
divided by its length. Output is written to OutputFile, or printed if
OutputFile is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rc, err := rasterConfig(Cfg)
		if err != nil {
			return err
		}
		dem, err := rc.Load(ctx)
		if err != nil {
			return err
		}
		ls, err := ReadLineSet(ctx, os.ExpandEnv(Cfg.GetString("Lines.File")), Cfg.GetString("Lines.IDField"))
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return Slope(ctx, cmd.OutOrStdout(), ls, dem,
			Cfg.GetBool("Slope.Absolute"), Cfg.GetBool("Slope.Percent"), outputFile)
	},
	DisableAutoGenTag: true,
}

var sinuosityCmd = &cobra.Command{
	Use:   "sinuosity",
	Short: "Calculate the sinuosity of lines",
	Long: `sinuosity calculates the length of each line in Lines.File divided by
the straight distance between its endpoints. Output is written to OutputFile,
or printed if OutputFile is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ls, err := ReadLineSet(ctx, os.ExpandEnv(Cfg.GetString("Lines.File")), Cfg.GetString("Lines.IDField"))
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return Sinuosity(ctx, cmd.OutOrStdout(), ls, outputFile)
	},
	DisableAutoGenTag: true,
}

var bearingCmd = &cobra.Command{
	Use:   "bearing",
	Short: "Calculate bearings along lines",
	Long: `bearing calculates the clockwise angle from north, in radians, of the
direction to each vertex of each line in Lines.File from the vertex
Bearing.Shift places earlier. Vertices without an earlier vertex get NaN.
Output is written to OutputFile as points, or printed if OutputFile is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ls, err := ReadLineSet(ctx, os.ExpandEnv(Cfg.GetString("Lines.File")), Cfg.GetString("Lines.IDField"))
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return Bearing(ctx, cmd.OutOrStdout(), ls, Cfg.GetInt("Bearing.Shift"), outputFile)
	},
	DisableAutoGenTag: true,
}

var stitchCmd = &cobra.Command{
	Use:   "stitch",
	Short: "Stitch line segments into one line",
	Long: `stitch joins the segments in Lines.File into one line, starting from the
segment with ID Stitch.Seed and repeatedly attaching the one remaining
segment that touches the line built so far. Segments that cannot be
attached are reported. The line is written to OutputFile, or its vertices
are printed if OutputFile is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		j := StitchJob{
			Input:       os.ExpandEnv(Cfg.GetString("Lines.File")),
			IDField:     Cfg.GetString("Lines.IDField"),
			Seed:        Cfg.GetString("Stitch.Seed"),
			MaxAttempts: Cfg.GetInt("Stitch.MaxAttempts"),
			OutputFile:  outputFile,
		}
		_, err = j.Run(ctx, cmd.OutOrStdout())
		return err
	},
	DisableAutoGenTag: true,
}

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Place points along lines",
	Long: `points places points every Points.Interval along each line in
Lines.File, starting at the first vertex. Output is written to OutputFile,
or printed if OutputFile is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ls, err := ReadLineSet(ctx, os.ExpandEnv(Cfg.GetString("Lines.File")), Cfg.GetString("Lines.IDField"))
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return Points(ctx, cmd.OutOrStdout(), ls, Cfg.GetFloat64("Points.Interval"), outputFile)
	},
	DisableAutoGenTag: true,
}

var transectCmd = &cobra.Command{
	Use:   "transect",
	Short: "Build transects across a channel",
	Long: `transect builds lines across each center line in Lines.File, every
Transect.Spacing along it, that reach the bank given by Transect.Bank on
both sides. Output is written to OutputFile, or printed if OutputFile is
empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		j := TransectJob{
			Center:         os.ExpandEnv(Cfg.GetString("Lines.File")),
			Bank:           os.ExpandEnv(Cfg.GetString("Transect.Bank")),
			TransectConfig: transectConfig(Cfg),
			OutputFile:     outputFile,
		}
		_, err = j.Run(ctx, cmd.OutOrStdout())
		return err
	},
	DisableAutoGenTag: true,
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a batch of jobs",
	Long: `batch runs the [[Stitch]] and [[Transect]] jobs listed in the TOML file
Batch.File concurrently. Each job table takes the fields of the matching
command: Input, IDField, Seed, MaxAttempts, and OutputFile for stitching;
Center, Bank, Step, Spacing, Buffer, MaxSearchDistance, and OutputFile for
transects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := os.ExpandEnv(Cfg.GetString("Batch.File"))
		if path == "" {
			return fmt.Errorf("rivergeom: no batch file specified; please set Batch.File")
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("rivergeom: %v", err)
		}
		defer f.Close()
		b, err := ReadBatch(f)
		if err != nil {
			return err
		}
		Log.WithFields(logrus.Fields{
			"file":      path,
			"stitch":    len(b.Stitch),
			"transects": len(b.Transect),
		}).Info("running batch")
		return b.Run(context.Background(), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}
