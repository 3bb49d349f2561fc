package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/apiwrapper/dump"
	"github.com/roach88/apiwrapper/internal/store"
)

// NewDumpCommand creates the dump command group.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Inspect, hash and catalog dump files",
	}

	cmd.AddCommand(newDumpShowCommand(rootOpts))
	cmd.AddCommand(newDumpHashCommand(rootOpts))
	cmd.AddCommand(newDumpIndexCommand(rootOpts))
	cmd.AddCommand(newDumpListCommand(rootOpts))

	return cmd
}

// DumpSummary describes one dump file.
type DumpSummary struct {
	File              string         `json:"file"`
	Type              string         `json:"type"`
	Subject           string         `json:"subject"`
	MatchKey          string         `json:"match_key"`
	MatchKeyForParams string         `json:"match_key_params"`
	Success           bool           `json:"success"`
	CallID            string         `json:"call_id,omitempty"`
	TimeMs            int64          `json:"time_ms"`
	Data              map[string]any `json:"data"`
}

func newDumpShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Validate a dump file and print its contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := dump.NewReader().Read(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "invalid dump", err)
			}
			keyWithParams, err := rec.MatchKeyForRecordedParams()
			if err != nil {
				return WrapExitError(ExitFailure, "invalid dump", err)
			}

			summary := DumpSummary{
				File:              args[0],
				Type:              rec.Type(),
				Subject:           rec.Subject(),
				MatchKey:          rec.MatchKey(),
				MatchKeyForParams: keyWithParams,
				Success:           rec.Success(),
				CallID:            rec.CallID(),
				TimeMs:            rec.TimeMs(),
				Data:              rec.Data(),
			}

			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(summary)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Type:      %s\n", summary.Type)
			fmt.Fprintf(w, "Subject:   %s\n", summary.Subject)
			fmt.Fprintf(w, "Match key: %s\n", summary.MatchKey)
			fmt.Fprintf(w, "  params:  %s\n", summary.MatchKeyForParams)
			fmt.Fprintf(w, "Success:   %t\n", summary.Success)
			fmt.Fprintf(w, "Call ID:   %s\n", summary.CallID)
			fmt.Fprintf(w, "Time:      %dms\n", summary.TimeMs)
			return f.Value(summary.Data)
		},
	}
}

func newDumpHashCommand(rootOpts *RootOptions) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "hash <json>",
		Short: "Print the canonical hash of a JSON value",
		Long: `Print the canonical hash of a JSON value, as used in params match keys.

With --key the full params-sensitive match key is printed instead.

Examples:
  apiwrapper dump hash '["a", "b"]'
  apiwrapper dump hash '[42]' --key moduleFunction.ShopModule::getOrder`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dec := json.NewDecoder(bytes.NewReader([]byte(args[0])))
			dec.UseNumber()
			var v any
			if err := dec.Decode(&v); err != nil {
				return WrapExitError(ExitCommandError, "invalid JSON", err)
			}

			var (
				out string
				err error
			)
			if key != "" {
				out, err = dump.WithParams(key, v)
			} else {
				out, err = dump.DataHash(v)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to hash value", err)
			}
			return rootOpts.formatter(cmd).Success(out)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "match key to append the hash to")

	return cmd
}

// IndexSummary is the output of dump index.
type IndexSummary struct {
	Dir     string            `json:"dir"`
	Indexed int               `json:"indexed"`
	Skipped map[string]string `json:"skipped,omitempty"`
}

func newDumpIndexCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "index <dir>",
		Short: "Catalog the dump files of a directory",
		Long: `Catalog every dump file of a directory into a SQLite database.

Exit codes:
  0 - All files were catalogued
  1 - Some files are not valid dumps and were skipped
  2 - Command error (directory or database unusable)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(dbPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			result, err := st.IndexDir(cmd.Context(), args[0], dump.NewReader())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to index directory", err)
			}

			summary := IndexSummary{Dir: args[0], Indexed: result.Indexed}
			if len(result.Skipped) > 0 {
				summary.Skipped = make(map[string]string, len(result.Skipped))
				for name, err := range result.Skipped {
					summary.Skipped[name] = err.Error()
				}
			}

			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				if err := f.Success(summary); err != nil {
					return err
				}
			} else {
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Indexed %d dump(s) from %s\n", summary.Indexed, summary.Dir)
				names := make([]string, 0, len(summary.Skipped))
				for name := range summary.Skipped {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(w, "  skipped %s: %s\n", name, summary.Skipped[name])
				}
			}

			if len(summary.Skipped) > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) skipped", len(summary.Skipped)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to SQLite catalog (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// ListedDump is one row of dump list.
type ListedDump struct {
	Path           string `json:"path"`
	Type           string `json:"type"`
	Subject        string `json:"subject"`
	MatchKey       string `json:"match_key"`
	Success        bool   `json:"success"`
	ExceptionClass string `json:"exception_class,omitempty"`
	Timestamp      string `json:"timestamp"`
}

func newDumpListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath string
		filter store.Filter
		failed bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued dumps",
		Long: `List catalogued dumps in timestamp order.

Examples:
  apiwrapper dump list --db ./dumps/catalog.db
  apiwrapper dump list --db ./dumps/catalog.db --key action.testAction
  apiwrapper dump list --db ./dumps/catalog.db --failed --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(dbPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			if cmd.Flags().Changed("failed") {
				success := !failed
				filter.Success = &success
			}
			entries, err := st.List(cmd.Context(), filter)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list dumps", err)
			}

			rows := make([]ListedDump, len(entries))
			for i, e := range entries {
				rows[i] = ListedDump{
					Path:           e.Path(),
					Type:           e.Type,
					Subject:        e.Subject,
					MatchKey:       e.MatchKeyWithParams(),
					Success:        e.Success,
					ExceptionClass: e.ExceptionClass,
					Timestamp:      e.Timestamp,
				}
			}

			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dumps found.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIMESTAMP\tTYPE\tSUBJECT\tRESULT\tPATH")
			for _, r := range rows {
				result := "success"
				if !r.Success {
					result = "error"
					if r.ExceptionClass != "" {
						result += " (" + r.ExceptionClass + ")"
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Timestamp, r.Type, r.Subject, result, r.Path)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to SQLite catalog (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&filter.Dir, "dir", "", "only dumps stored in this directory")
	cmd.Flags().StringVar(&filter.Type, "type", "", "only dumps of this type (action, moduleFunction)")
	cmd.Flags().StringVar(&filter.Subject, "subject", "", "only dumps of this subject")
	cmd.Flags().StringVar(&filter.MatchKey, "key", "", "only dumps with this match key")
	cmd.Flags().BoolVar(&failed, "failed", false, "only failed calls (--failed=false for successful ones)")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of dumps")

	return cmd
}
