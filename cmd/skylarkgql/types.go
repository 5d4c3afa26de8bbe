package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/llehouerou/skylark-graphql/schema"
)

var typesCmd subCommand

func init() {
	typesCmd.Cmd = &cobra.Command{
		Use:   "types",
		Short: "List the object types of the schema and the operations they support",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(&typesCmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			s, err := loadSchema(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tFIELDS\tRELATIONSHIPS\tOPERATIONS")
			for _, meta := range s.Objects {
				ops := supportedOperations(meta)
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n",
					meta.Name, len(meta.Fields), len(meta.Relationships), strings.Join(ops, ","))
			}
			for _, warning := range s.Warnings {
				fmt.Fprintf(w, "warning: %s\n", warning)
			}
			return w.Flush()
		},
	}
	register(&typesCmd)
}

func supportedOperations(meta *schema.ObjectTypeMeta) []string {
	var ops []string
	for _, op := range []struct {
		name string
		op   *schema.Operation
	}{
		{"get", meta.Operations.Get},
		{"list", meta.Operations.List},
		{"create", meta.Operations.Create},
		{"update", meta.Operations.Update},
		{"delete", meta.Operations.Delete},
		{"publish", meta.Operations.Publish},
	} {
		if op.op != nil {
			ops = append(ops, op.name)
		}
	}
	return ops
}
