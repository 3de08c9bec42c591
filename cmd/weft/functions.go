package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newFunctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "functions",
		Aliases: []string{"ls"},
		Short:   "List the registered functions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			category, _ := cmd.Flags().GetString("category")
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tDESCRIPTION")
			for _, def := range rt.Engine.Definitions() {
				if category != "" && def.Category != category {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", def.ID, def.Category, def.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("category", "", "Only list functions of this category")
	return cmd
}

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <function>",
		Short: "Show parameters, outputs and actions of a function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			def, ok := rt.Engine.Definition(args[0])
			if !ok {
				return fmt.Errorf("function '%s' not found", args[0])
			}

			md := tui.DefinitionMarkdown(def)
			if plain, _ := cmd.Flags().GetBool("plain"); plain {
				_, err = fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}
			out, err := tui.NewRenderer()(md)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().Bool("plain", false, "Print raw markdown")
	return cmd
}
