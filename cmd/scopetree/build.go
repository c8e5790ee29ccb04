package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/orizon-lang/scopetree/internal/debug"
	"github.com/orizon-lang/scopetree/internal/pipeline"
	"github.com/orizon-lang/scopetree/internal/position"
	"github.com/orizon-lang/scopetree/internal/scope"
)

type buildOptions struct {
	json  bool
	out   string
	chart int
	dump  bool
}

func newBuildCmd(e *env) *cobra.Command {
	o := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build <input>",
		Short: "Build scope trees and print a summary or debug dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := e.run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return o.write(cmd.OutOrStdout(), e, res)
		},
	}
	cmd.Flags().BoolVar(&o.json, "json", false, "write the JSON scope dump")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "write the JSON scope dump to a file")
	cmd.Flags().IntVar(&o.chart, "chart", 0, "draw each tree as an offset chart of the given width")
	cmd.Flags().BoolVar(&o.dump, "dump", false, "print the raw trees")
	return cmd
}

func (o *buildOptions) write(w io.Writer, e *env, res *pipeline.Result) error {
	if o.json || o.out != "" {
		js, err := serialize(e, res)
		if err != nil {
			return err
		}
		if o.out != "" {
			if err := os.WriteFile(o.out, js, 0o644); err != nil {
				return fmt.Errorf("write scope dump failed: %w", err)
			}
			e.logger.Info().Str("path", o.out).Int("bytes", len(js)).Msg("wrote scope dump")
		}
		if o.json {
			_, err = fmt.Fprintln(w, string(js))
			return err
		}
	}

	if o.dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
		for _, m := range res.Methods {
			fmt.Fprintf(w, "%s:\n", m.Name)
			if m.Err != nil {
				fmt.Fprintf(w, "omitted: %v\n", m.Err)
				continue
			}
			for v := range m.Tree.All() {
				fmt.Fprintf(w, "#%d parent=%d %s", v.Index, v.Parent, cfg.Sdump(v.Scope))
			}
		}
		return nil
	}

	if o.chart > 0 {
		for _, m := range res.Methods {
			if m.Tree == nil {
				continue
			}
			fmt.Fprintf(w, "%s\n%s\n", m.Name, renderChart(m.Tree, o.chart))
		}
		return nil
	}

	return writeSummary(w, res)
}

func serialize(e *env, res *pipeline.Result) ([]byte, error) {
	em, err := debug.NewEmitter(e.config.FormatVersion)
	if err != nil {
		return nil, err
	}
	methods := make([]debug.MethodDebugInfo, 0, len(res.Methods))
	for _, m := range res.Methods {
		if m.Err != nil {
			methods = append(methods, debug.MethodDebugInfo{Name: m.Name, Length: m.Length, Scopes: []debug.ScopeEntry{}, Error: m.Err.Error()})
			continue
		}
		mi, err := em.EmitMethod(m.Name, m.Length, m.Tree)
		if err != nil {
			return nil, err
		}
		methods = append(methods, mi)
	}
	return debug.Serialize(em.Program(methods))
}

func writeSummary(w io.Writer, res *pipeline.Result) error {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Method", "Scopes", "Roots", "Depth", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})

	total := 0
	for _, m := range res.Methods {
		if m.Err != nil {
			table.Append([]string{m.Name, "-", "-", "-", "omitted: " + m.Err.Error()})
			continue
		}
		depth := 0
		for v := range m.Tree.All() {
			if v.Depth+1 > depth {
				depth = v.Depth + 1
			}
		}
		total += m.Tree.Len()
		table.Append([]string{
			m.Name,
			strconv.Itoa(m.Tree.Len()),
			strconv.Itoa(len(m.Tree.Roots())),
			strconv.Itoa(depth),
			"ok",
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Methods %d", len(res.Methods)),
		strconv.Itoa(total),
		"", "",
		fmt.Sprintf("%d omitted", len(res.Failed())),
	})
	table.Render()

	_, err := fmt.Fprint(w, tableBuffer.String())
	return err
}

func renderChart(tree *scope.Tree, width int) string {
	extent := tree.Extent()
	if n, ok := tree.MethodLength(); ok {
		extent = position.NewSpan(0, n)
	}
	var rows []position.SpanRow
	for v := range tree.All() {
		rows = append(rows, position.SpanRow{Label: scopeLabel(v.Scope), Span: v.Scope.Span(), Depth: v.Depth})
	}
	return position.NewSpanChart(extent, width).Render(rows)
}

func scopeLabel(s scope.Scope) string {
	label := ""
	for _, l := range s.Variables() {
		if label != "" {
			label += ","
		}
		label += l.Name()
	}
	for _, l := range s.Constants() {
		if label != "" {
			label += ","
		}
		label += "const " + l.Name()
	}
	if label == "" {
		return "{}"
	}
	return label
}
