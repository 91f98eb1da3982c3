package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zkaiera/last30days-skill/internal/app"
	"github.com/zkaiera/last30days-skill/internal/config"
	"github.com/zkaiera/last30days-skill/internal/render"
	healthuc "github.com/zkaiera/last30days-skill/internal/usecase/health"
)

func newStatusCmd(debug *bool) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check provider keys, the bird CLI and the model cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := cliEnvironment()
			cfg, err := config.LoadOrEnv(env)
			if err != nil {
				return err
			}
			logger, err := newCLILogger(env, cfg, *debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := app.New(cmd.Context(), cfg, logger, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			rep := a.Health.Check(cmd.Context())
			if jsonOutput {
				return writeStatusJSON(cmd, rep)
			}
			return writeStatus(cmd, cfg, rep)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func writeStatusJSON(cmd *cobra.Command, rep healthuc.Report) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func writeStatus(cmd *cobra.Command, cfg config.Config, rep healthuc.Report) error {
	w := cmd.OutOrStdout()
	st := render.StylesFor(w)

	fmt.Fprintln(w, st.Header.Render("last30days status"))
	cacheLine := st.Dim.Render(cfg.Cache.Driver)
	if result, ok := rep.Checks["cache"]; ok {
		cacheLine += " " + checkLabel(st, result)
	}
	fmt.Fprintf(w, "  %-8s %s\n", "cache", cacheLine)
	for _, name := range []string{"openai", "xai", "bird"} {
		result, ok := rep.Checks[name]
		if !ok {
			fmt.Fprintf(w, "  %-8s %s\n", name, st.Dim.Render("not configured"))
			continue
		}
		fmt.Fprintf(w, "  %-8s %s\n", name, checkLabel(st, result))
	}

	status := string(rep.Status)
	switch rep.Status {
	case healthuc.Degraded:
		status = st.Warning.Render(status)
	case healthuc.Unhealthy:
		status = st.Error.Render(status)
	}
	_, err := fmt.Fprintf(w, "Status: %s\n", status)
	return err
}

func checkLabel(st render.Styles, result healthuc.CheckResult) string {
	if result == healthuc.CheckError {
		return st.Error.Render(string(result))
	}
	return st.ID.Render(string(result))
}
