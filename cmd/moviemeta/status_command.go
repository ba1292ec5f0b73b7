package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moviemeta/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check directories, the API key and OMDb connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			var results []preflight.Result
			if offline {
				results = append(preflight.RunLocal(cfg), preflight.CheckAPIKey(cfg))
			} else {
				results = preflight.RunAll(cmd.Context(), cfg, nil)
			}

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			for _, line := range renderSectionHeader("moviemeta status", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
			fmt.Fprintln(out, renderStatusLine("Journal", statusInfo, yesNo(cfg.Journal.Enabled), colorize))
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the OMDb probe lookup")
	return cmd
}
