package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/liveable/internal/registry"
)

var toolCmd = &cobra.Command{
	Use:   "tool <name>",
	Short: "Invoke any tool by name with JSON or key=value arguments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		argsFile, _ := cmd.Flags().GetString("args-file")
		pairs, _ := cmd.Flags().GetStringArray("arg")

		targs, err := toolArgs(argsFile, pairs)
		if err != nil {
			return err
		}
		return invokeTool(cmd, args[0], targs)
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available tools",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tPARAMS\tDESCRIPTION")
		for _, t := range a.Tools.List() {
			params := make([]string, len(t.Params))
			for i, p := range t.Params {
				params[i] = p.Name
				if p.Required {
					params[i] += "*"
				}
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, strings.Join(params, ","), t.Description)
		}
		return w.Flush()
	},
}

// toolArgs merges an optional JSON args file with key=value pairs. Pairs win.
func toolArgs(path string, pairs []string) (registry.Args, error) {
	targs := registry.Args{}
	if path != "" {
		loaded, err := registry.LoadArgsFromFile(path)
		if err != nil {
			return nil, err
		}
		targs = loaded
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, eris.Errorf("invalid --arg %q (want key=value)", pair)
		}
		targs[key] = value
	}
	return targs, nil
}

func init() {
	toolCmd.Flags().String("args-file", "", "JSON file with the tool arguments")
	toolCmd.Flags().StringArray("arg", nil, "tool argument as key=value (repeatable)")

	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(toolsCmd)
}
