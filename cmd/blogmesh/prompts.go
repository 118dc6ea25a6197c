package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/hupe1980/blogmesh/config"
	"github.com/hupe1980/blogmesh/prompt"
)

func (a *app) promptsCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "prompts [name]",
		Short: "List the effective prompt templates or print one",
		Long: `Without arguments, lists every template name with the source it resolves
from ("embedded" or a file path). With a name, prints the raw template.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := prompt.New(func(o *prompt.Options) {
				o.Dir = dir
				if dir == "" {
					o.Dir = a.getenv(config.EnvPromptsDir)
				}
			})
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				text, err := store.Load(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(out, text)
				return nil
			}

			for _, name := range prompt.Names() {
				src, err := store.Source(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-20s %s\n", name, src)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory overlaying <name>.txt templates")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the blogmesh version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blogmesh %s (%s)\n", version, runtime.Version())
		},
	}
}
