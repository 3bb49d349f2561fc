package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/apiwrapper/internal/ir"
)

// VersionInfo is the output of the version command.
type VersionInfo struct {
	Client string `json:"client"`
	Dump   string `json:"dump"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client and dump format versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{Client: ir.ClientVersion, Dump: ir.DumpVersion}
			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(info)
			}
			return f.Success(fmt.Sprintf("apiwrapper %s (dump format %s)", info.Client, info.Dump))
		},
	}
}
