package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type invokeOutput struct {
	Result any            `json:"result"`
	Store  map[string]any `json:"store"`
}

func newInvokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <function>",
		Short: "Invoke one function and print its Result and store as JSON",
		Example: `  weft invoke counter --params '{"step":5}' --store '{"counter":10}'
  weft invoke batch_foreach --params '{"items":[1,2,3],"processor":"log","maxConcurrency":2}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := jsonFlag(cmd, "params")
			if err != nil {
				return err
			}
			store, err := jsonFlag(cmd, "store")
			if err != nil {
				return err
			}

			rt, _, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ec := rt.Engine.NewContext("cli:"+args[0], store)
			res, err := rt.Engine.Invoke(cmd.Context(), args[0], params, ec)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(invokeOutput{Result: res, Store: ec.Store.Snapshot()}); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("%s failed: %s", args[0], res.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringP("params", "p", "", "JSON object of parameters")
	cmd.Flags().StringP("store", "s", "", "JSON object seeding the store")
	return cmd
}

func jsonFlag(cmd *cobra.Command, name string) (map[string]any, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return out, nil
}
