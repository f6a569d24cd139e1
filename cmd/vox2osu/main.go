// Package main is the entry point for vox2osu CLI
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/okawaffles/vox2osu/pkg/api"
	"github.com/okawaffles/vox2osu/pkg/config"
	"github.com/okawaffles/vox2osu/pkg/converter"
	"github.com/okawaffles/vox2osu/pkg/converter/targets"
	"github.com/okawaffles/vox2osu/pkg/tui"
	"github.com/okawaffles/vox2osu/pkg/vox"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile    string
	targetName    string
	keys          int
	strict        bool
	offset        float64
	resourcesPath string
	encoding      string
	logLevel      string
	serverPort    int

	title, artist, creator, diffName, audio string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vox2osu [chart.vox]",
	Short: "Convert VOX charts to osu!mania beatmaps",
	Long: `vox2osu reads VOX chart files, rebuilds their tempo and meter timeline
and writes an osu!mania beatmap (or a MIDI preview).

Examples:
  vox2osu chart.vox
  vox2osu convert chart.vox -o chart.osu --keys 6
  vox2osu midi chart.vox
  vox2osu inspect chart.vox
  vox2osu tui
  vox2osu serve --port 8080`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runRoot,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input.vox>",
	Short: "Convert a VOX chart",
	Long:  `Converts a VOX chart to the target format. The target is taken from --target, or from the output file extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var midiCmd = &cobra.Command{
	Use:   "midi <input.vox>",
	Short: "Export a VOX chart as a MIDI preview",
	Args:  cobra.ExactArgs(1),
	RunE:  runMIDI,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.vox>",
	Short: "Print the timeline, markers and diagnostics of a VOX chart",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.IntVarP(&keys, "keys", "k", 4, "Key mode: 4 (BT only) or 6 (BT + FX)")
	flags.BoolVar(&strict, "strict", false, "Fail on any malformed line")
	flags.Float64Var(&offset, "offset", 0, "Calibration offset added to every output time (ms)")
	flags.StringVar(&resourcesPath, "resources", "", "YAML file overriding section headers and osu! settings")
	flags.StringVar(&encoding, "encoding", string(vox.EncodingShiftJIS), "Source encoding (shift_jis, utf-8)")
	flags.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&title, "title", "", "Beatmap title")
	flags.StringVar(&artist, "artist", "", "Beatmap artist")
	flags.StringVar(&creator, "creator", "", "Beatmap creator")
	flags.StringVar(&diffName, "diff-name", "", "Difficulty name (default: key mode, e.g. 4K)")
	flags.StringVar(&audio, "audio", "", "Audio file name")

	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .osu file path")

	// Convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")
	convertCmd.Flags().StringVarP(&targetName, "target", "t", "", "Target format (osu, midi)")

	// midi command
	midiCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(midiCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func newLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:  level,
		Prefix: "vox2osu",
	}), nil
}

// buildOptions assembles converter options from the command line
func buildOptions() (converter.Options, error) {
	logger, err := newLogger()
	if err != nil {
		return converter.Options{}, err
	}

	res, err := config.Load(resourcesPath)
	if err != nil {
		return converter.Options{}, err
	}
	res = res.Merge(config.Resources{Osu: config.OsuConfig{
		Metadata: config.OsuMetadata{Title: title, Artist: artist, Creator: creator, Version: diffName},
		General:  config.OsuGeneral{AudioFilename: audio},
	}})

	enc := vox.Encoding(encoding)
	if enc != vox.EncodingShiftJIS && enc != vox.EncodingUTF8 {
		return converter.Options{}, fmt.Errorf("unsupported encoding %q", encoding)
	}
	if _, err := converter.Layout(keys); err != nil {
		return converter.Options{}, err
	}

	return converter.Options{
		Resources: res,
		Keys:      keys,
		Strict:    strict,
		Offset:    offset,
		Encoding:  enc,
		Logger:    logger,
	}, nil
}

func getOutputPath(input string, format converter.Format) string {
	if outputFile != "" {
		return outputFile
	}
	return converter.OutputPath(input, format)
}

func convertTo(input string, target converter.Target, opts converter.Options) error {
	output := getOutputPath(input, target.Format())
	conv := converter.New(target, opts)

	opts.Logger.Info("Converting", "input", input, "output", output, "target", target.Name())
	if _, err := conv.ConvertFile(input, output); err != nil {
		return err
	}
	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	return convertTo(args[0], targets.NewOsu(opts.Resources.Osu), opts)
}

func runConvert(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}

	var target converter.Target
	switch {
	case targetName != "":
		target, err = targets.ByName(targetName, opts.Resources)
	case outputFile != "":
		target, err = targets.ForFormat(converter.DetectFormat(outputFile), opts.Resources)
	default:
		target = targets.NewOsu(opts.Resources.Osu)
	}
	if err != nil {
		return err
	}
	return convertTo(args[0], target, opts)
}

func runMIDI(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	return convertTo(args[0], targets.NewMIDI(), opts)
}

func runInspect(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	chart, err := converter.New(nil, opts).Inspect(data)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), chart.Summary())
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	// The alt screen owns the terminal
	opts.Logger.SetOutput(io.Discard)
	return tui.Run(opts)
}

func runServe(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	opts.Logger.Info("Starting API server", "port", serverPort)
	return api.StartServer(serverPort, opts)
}
