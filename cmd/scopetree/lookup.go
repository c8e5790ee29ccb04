package main

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/orizon-lang/scopetree/internal/debug"
	"github.com/orizon-lang/scopetree/internal/scope"
)

func newLookupCmd(e *env) *cobra.Command {
	var method string
	var offset uint32
	cmd := &cobra.Command{
		Use:   "lookup <input>",
		Short: "List the locals a debugger sees at an instruction offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e.config.Methods = []string{method}
			res, err := e.run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m := res.Methods[0]
			if m.Err != nil {
				return fmt.Errorf("method %s: %w", m.Name, m.Err)
			}
			bindings, ok := debug.BuildOffsetMap(m.Tree).Resolve(offset)
			if !ok {
				return fmt.Errorf("no scope of %s covers offset %#x", m.Name, offset)
			}
			return writeBindings(cmd, bindings)
		},
	}
	cmd.Flags().StringVar(&method, "in", "", "method name (a glob; the first match is used)")
	cmd.Flags().Uint32Var(&offset, "offset", 0, "instruction offset")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func writeBindings(cmd *cobra.Command, bindings []debug.Binding) error {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Name", "Kind", "Type", "Scope"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, b := range bindings {
		kind := "variable"
		if b.Constant {
			kind = "constant"
		}
		typ := ""
		if d, ok := b.Local.(scope.Definition); ok {
			typ = d.Type
			if b.Constant && d.Value != "" {
				typ += " = " + d.Value
			}
		}
		table.Append([]string{b.Local.Name(), kind, typ, b.Scope.Span().String()})
	}
	table.Render()

	_, err := fmt.Fprint(cmd.OutOrStdout(), tableBuffer.String())
	return err
}
