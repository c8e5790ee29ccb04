package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/orizon-lang/scopetree/internal/cli"
	"github.com/orizon-lang/scopetree/internal/input"
	"github.com/orizon-lang/scopetree/internal/pipeline"
)

const toolName = "scopetree"

// env carries the configuration shared by every subcommand.
type env struct {
	configPath  string
	verbose     bool
	debug       bool
	policy      string
	concurrency int
	methods     []string

	config *cli.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	cmd := &cobra.Command{
		Use:   toolName,
		Short: "Build and check lexical scope trees for debug info",
		Long: `scopetree arranges the flat per-method scope records emitted by a compiler
front end into validated, strictly nested scope trees, the form debug-info
writers need.

Input files list methods and their scopes in YAML or JSON:

  methods:
    - name: Program.Main
      length: 100
      scopes:
        - {offset: 0, length: 100, variables: [{name: args}]}
        - {offset: 99, point: true, constants: [{name: k, value: "1"}]}`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&e.configPath, "config", "c", "", "config file (YAML or JSON)")
	flags.BoolVarP(&e.verbose, "verbose", "v", false, "log progress")
	flags.BoolVar(&e.debug, "debug", false, "log every dropped or built scope")
	flags.StringVar(&e.policy, "policy", "", "failing method policy: abort|omit")
	flags.IntVarP(&e.concurrency, "parallel", "p", 0, "methods built at once (default GOMAXPROCS)")
	flags.StringSliceVarP(&e.methods, "method", "m", nil, "only methods matching these globs")

	cmd.AddCommand(
		newBuildCmd(e),
		newValidateCmd(e),
		newLookupCmd(e),
		newWatchCmd(e),
		newVersionCmd(),
	)
	return cmd
}

// load reads the config file and applies flag overrides on top of it.
func (e *env) load(cmd *cobra.Command) error {
	config, err := cli.LoadConfig(e.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		config.Verbose = e.verbose
	}
	if flags.Changed("debug") {
		config.Debug = e.debug
	}
	if flags.Changed("policy") {
		config.Policy = e.policy
	}
	if flags.Changed("parallel") {
		config.Concurrency = e.concurrency
	}
	if flags.Changed("method") {
		config.Methods = e.methods
	}
	if err := config.Validate(); err != nil {
		return err
	}
	e.config = config
	e.logger = cli.NewLogger(cmd.ErrOrStderr(), config.Verbose, config.Debug)
	return nil
}

// run loads path and builds the trees of every selected method.
func (e *env) run(ctx context.Context, path string, extra ...pipeline.Option) (*pipeline.Result, error) {
	methods, err := input.Load(path)
	if err != nil {
		return nil, err
	}
	methods = e.config.FilterMethods(methods)
	if len(methods) == 0 {
		return nil, fmt.Errorf("no methods in %s match the method filters", path)
	}
	e.logger.Debug().Int("methods", len(methods)).Str("input", path).Msg("loaded scope records")

	opts, err := e.config.PipelineOptions(e.logger)
	if err != nil {
		return nil, err
	}
	return pipeline.New(append(opts, extra...)...).Run(ctx, methods)
}
