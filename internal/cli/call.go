package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/apiwrapper/client"
	"github.com/roach88/apiwrapper/dump"
	"github.com/roach88/apiwrapper/internal/config"
	"github.com/roach88/apiwrapper/internal/store"
	"github.com/roach88/apiwrapper/transport"
)

// CallOptions holds flags for the call and action commands.
type CallOptions struct {
	*RootOptions
	DumpDir   string
	LogParams bool
}

// CallResult is the JSON payload of a successful call.
type CallResult struct {
	Call   string   `json:"call"`
	Return any      `json:"return"`
	Dumped []string `json:"dumped,omitempty"`
}

// NewCallCommand creates the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <module> <function> [json-params]",
		Short: "Call a module function",
		Long: `Call a module function with the configured auth and print its return value.

Params are a JSON array of positional arguments.

Exit codes:
  0 - The call succeeded
  1 - The API reported an error
  2 - Command error (bad params, missing configuration, etc.)

Examples:
  apiwrapper call ShopModule getOrder '[42]'
  apiwrapper call ShopModule listOrders '[0, 10]' --dump-dir ./dumps`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[2:])
			if err != nil {
				return err
			}
			return runCall(cmd, opts, args[0]+"::"+args[1], func(ctx context.Context, c client.Caller) (any, error) {
				return c.CallFunction(ctx, args[0], args[1], params, nil)
			})
		},
	}
	addCallFlags(cmd, opts)

	return cmd
}

// NewActionCommand creates the action command.
func NewActionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "action <name> [json-params]",
		Short: "Call an action",
		Long: `Call a named action and print its return value.

Actions need no auth. Params are a JSON array sent as the request body.

Examples:
  apiwrapper action ping
  apiwrapper action testAction '["a", "b"]' --format json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			return runCall(cmd, opts, "action "+args[0], func(ctx context.Context, c client.Caller) (any, error) {
				return c.CallAction(ctx, args[0], params)
			})
		},
	}
	addCallFlags(cmd, opts)

	return cmd
}

func addCallFlags(cmd *cobra.Command, opts *CallOptions) {
	cmd.Flags().StringVar(&opts.DumpDir, "dump-dir", "", "record the call to a dump file in this directory")
	cmd.Flags().BoolVar(&opts.LogParams, "log-params", false, "include redacted params in log output")
}

// parseParams decodes the optional JSON params argument.
func parseParams(args []string) ([]any, error) {
	if len(args) == 0 || args[0] == "" {
		return []any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(args[0])))
	dec.UseNumber()
	var params []any
	if err := dec.Decode(&params); err != nil {
		return nil, WrapExitError(ExitCommandError, "params must be a JSON array", err)
	}
	if params == nil {
		params = []any{}
	}
	return params, nil
}

func runCall(cmd *cobra.Command, opts *CallOptions, name string, call func(context.Context, client.Caller) (any, error)) error {
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	cfg, err := opts.loadConfig()
	if err != nil {
		if opts.Transport == nil || opts.ConfigPath != "" {
			return WrapExitError(ExitCommandError, "failed to load configuration", err)
		}
		cfg = &config.Config{}
	}

	var t transport.Transport = opts.Transport
	if t == nil {
		t = cfg.NewTransport(logger)
	}
	dc := client.NewDebug(t, cfg.NewAuth(), client.WithLogger(logger))
	dc.SetLogParams(opts.LogParams)
	if len(cfg.Dump.SecretKeys) > 0 {
		dc.SetSecretKeys(cfg.Dump.SecretKeys...)
	}

	closeIndex, err := enableDumping(dc, cfg, opts.DumpDir, logger)
	if err != nil {
		return err
	}
	defer closeIndex()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ret, callErr := call(ctx, dc)

	var dumped []string
	if w := dc.DumpWriter(); w != nil {
		dumped = w.DumpedPaths()
	}
	for _, path := range dumped {
		f.VerboseLog("dumped %s", path)
	}

	if callErr != nil {
		return f.CallFailed(name, callErr)
	}

	if f.Format == "json" {
		return f.Success(CallResult{Call: name, Return: ret, Dumped: dumped})
	}
	return f.Value(ret)
}

// enableDumping turns on recording when a dump directory is configured,
// indexing files into the catalog when one is configured. The returned
// function closes the catalog.
func enableDumping(dc *client.DebugClient, cfg *config.Config, dir string, logger *slog.Logger) (func(), error) {
	noop := func() {}
	if dir == "" {
		dir = cfg.Dump.Dir
	}
	if dir == "" {
		return noop, nil
	}

	opts := append(cfg.DumpOptions(), dump.WithLogger(logger))
	closeIndex := noop
	if cfg.Dump.Index != "" {
		st, err := store.Open(cfg.Dump.Index)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open dump catalog", err)
		}
		opts = append(opts, dump.WithIndex(st))
		closeIndex = func() {
			if err := st.Close(); err != nil {
				logger.Error("error closing dump catalog", "error", err)
			}
		}
	}

	if err := dc.EnableDumping(dir, opts...); err != nil {
		closeIndex()
		return nil, WrapExitError(ExitCommandError, "failed to enable dumping", err)
	}
	return closeIndex, nil
}

