package main

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/clarktrimble/sabot"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"logtab"
	"logtab/convert"
	nt "logtab/entity"
	"logtab/filter"
	"logtab/runner"
	"logtab/sorter"
	"logtab/store/duck"
	"logtab/util"
	"logtab/view"
)

//go:embed logtab.yaml
var sample []byte

// Config is the cli's yaml config.
type Config struct {
	Pipeline   logtab.Config  `yaml:",inline"`
	Convert    convert.Config `yaml:",inline"`
	LogFile    string         `yaml:"log_file"`
	LogMaxSize int            `yaml:"log_max_size"`
	Columns    []nt.Column    `yaml:"columns,omitempty"`
}

var (
	configPath string
	sortOpt    string
	filterOpt  string
	watch      bool
	outPath    string

	cfg     = defaults()
	logFile io.Writer
	lgr     *sabot.Sabot
)

func main() {

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	util.CloseLog(logFile)
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "logtab",
	Short:        "Filter, sort and browse converted log tables",
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) (err error) {

		_, err = os.Stat(configPath)
		if err == nil {
			err = util.LoadConfig(cfg, configPath)
			if err != nil {
				return
			}
		}

		logFile = util.OpenLog(cfg.LogFile, 0o644)
		lgr = newLogger(logFile, cfg.LogMaxSize)

		lgr.Info(cmd.Context(), "starting", "command", cmd.Name(), "config", configPath)
		return nil
	},
}

func init() {

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "logtab.yaml", "path to config yaml")

	for _, cmd := range []*cobra.Command{showCmd, browseCmd, downloadCmd, statsCmd} {
		cmd.Flags().StringVar(&filterOpt, "filter", "", `date range "YYYY-MM-DD HH:MM:SS,YYYY-MM-DD HH:MM:SS"`)
	}
	for _, cmd := range []*cobra.Command{showCmd, browseCmd, downloadCmd} {
		cmd.Flags().StringVar(&sortOpt, "sort", "", `sort keys, "+2,-0" sorts by level then descending line id`)
	}
	showCmd.Flags().BoolVar(&watch, "watch", false, "show again whenever the csv changes")
	configCmd.Flags().StringVar(&outPath, "out", "", "write the effective config here instead of sampling")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(metaCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
}

// --- Show ---

var showCmd = &cobra.Command{
	Use:   "show <csv>",
	Short: "Print a log table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {

		req, err := request(args[0])
		if err != nil {
			return
		}
		pl := pipeline()

		if !watch {
			var tbl nt.Table
			tbl, err = pl.Table(cmd.Context(), req)
			if err != nil {
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.Render(tbl, cfg.Columns))
			return
		}

		err = pl.Watch(cmd.Context(), req, func(tbl nt.Table, err error) {
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.Render(tbl, cfg.Columns))
		})
		return
	},
}

// --- Browse ---

var browseCmd = &cobra.Command{
	Use:   "browse <csv>",
	Short: "Page through a log table, keys 0-5 toggle sorting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {

		req, err := request(args[0])
		if err != nil {
			return
		}

		brs := view.NewBrowser(cmd.Context(), pipeline(), req, cfg.Columns, lgr)
		_, err = tea.NewProgram(brs, tea.WithContext(cmd.Context())).Run()
		err = errors.Wrapf(err, "failed to run browser")
		return
	},
}

// --- Download ---

var downloadCmd = &cobra.Command{
	Use:   "download <csv>",
	Short: "Prepare a filtered and sorted csv, printing its path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {

		req, err := request(args[0])
		if err != nil {
			return
		}

		path, err := pipeline().Download(cmd.Context(), req)
		if err != nil {
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		return
	},
}

// --- Stats ---

var statsCmd = &cobra.Command{
	Use:   "stats <csv>",
	Short: "Summarize events over time, levels and event codes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {

		req, err := request(args[0])
		if err != nil {
			return
		}

		tbl, err := pipeline().Table(cmd.Context(), req)
		if err != nil {
			return
		}

		dk, err := duck.New(lgr)
		if err != nil {
			return
		}
		defer dk.Close()

		err = dk.Load(cmd.Context(), tbl)
		if err != nil {
			return
		}

		summary, err := dk.Summary(cmd.Context())
		if err != nil {
			return
		}

		printSummary(cmd.OutOrStdout(), summary)
		return
	},
}

// --- Convert ---

var convertCmd = &cobra.Command{
	Use:   "convert <log>",
	Short: "Convert a raw log into a csv in the processed dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {

		if filepath.Ext(args[0]) != ".log" {
			err = errors.Wrapf(nt.ErrConvertFailed, "only .log files are accepted, got %s", args[0])
			return
		}

		cvt := cfg.Convert.New(collaborator(), lgr)

		id, csvPath, err := cvt.Convert(cmd.Context(), args[0])
		if err != nil {
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, csvPath)
		return
	},
}

// --- Meta ---

var metaCmd = &cobra.Command{
	Use:   "meta <csv>",
	Short: "Print the id and time span of a csv",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {

		start, end, err := pipeline().Timestamps(cmd.Context(), args[0])
		if err != nil {
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", documentId(args[0]), start, end)
		return
	},
}

// --- List ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List converted csvs in the processed dir",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) (err error) {

		paths, err := filepath.Glob(filepath.Join(cfg.Convert.ProcessedDir, "*.csv"))
		if err != nil {
			err = errors.Wrapf(err, "failed to list %s", cfg.Convert.ProcessedDir)
			return
		}
		sort.Strings(paths)

		pl := pipeline()
		for _, path := range paths {
			if filter.IsOutput(path) {
				continue
			}

			start, end, err := pl.Timestamps(cmd.Context(), path)
			if err != nil {
				lgr.Error(cmd.Context(), "skipping unreadable csv", err, "path", path)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", documentId(path), start, end)
		}
		return
	},
}

// --- Config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write a sample config unless one exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) (err error) {

		if outPath != "" {
			err = util.WriteConfig(cfg, outPath, 0o644)
			return
		}

		wrote, err := util.SampleConfig(sample, configPath, 0o644)
		if err != nil {
			return
		}

		if wrote {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote sample config to %s\n", configPath)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config already exists at %s\n", configPath)
		return
	},
}

// unexported

func defaults() *Config {

	return &Config{
		Pipeline:   logtab.Config{Filter: filter.Config{Program: "bash/filter_by_date.sh"}},
		Convert:    convert.Config{Program: "bash/validate_parse.sh", ProcessedDir: "processed"},
		LogFile:    "logtab.log",
		LogMaxSize: 999,
	}
}

// newLogger logs to wtr, truncating values past maxLen.
// Failures to write a log line are reported on stderr.
func newLogger(wtr io.Writer, maxLen int) (lgr *sabot.Sabot) {

	lcfg := &sabot.Config{MaxLen: maxLen}
	lgr = lcfg.New(wtr)
	lgr.AltWriter = os.Stderr
	return
}

func collaborator() *runner.Exec {
	return &runner.Exec{Timeout: cfg.Pipeline.Timeout}
}

func pipeline() *logtab.Pipeline {
	return cfg.Pipeline.New(nil, lgr)
}

func request(path string) (req logtab.Request, err error) {

	spec, err := sorter.ParseSpec(sortOpt)
	if err != nil {
		return
	}

	rng, err := nt.ParseRange(filterOpt)
	if err != nil {
		return
	}

	req = logtab.Request{
		Path:  path,
		Sort:  spec,
		Range: rng,
	}
	return
}

func documentId(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
