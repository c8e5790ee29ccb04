package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orizon-lang/scopetree/internal/pipeline"
)

func newValidateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input>",
		Short: "Check every method's scopes and report all defects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validate(cmd, e, args[0])
		},
	}
}

// validate builds every method under the omit policy so that one run
// reports all failing methods instead of the first.
func validate(cmd *cobra.Command, e *env, path string) error {
	res, err := e.run(cmd.Context(), path, pipeline.WithPolicy(pipeline.PolicyOmit))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	failed := res.Failed()
	for _, m := range failed {
		fmt.Fprintf(w, "FAIL %s: %v\n", m.Name, m.Err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d method(s) failed validation", len(failed), len(res.Methods))
	}
	fmt.Fprintf(w, "ok: %d method(s)\n", len(res.Methods))
	return nil
}
