package main

import (
	"github.com/aretw0/statemap/internal/cli"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project [layout]",
	Short: "Project a diagram layout into a state configuration",
	Long: `Reads a layout document (GraphLinksModel JSON) from a file or stdin and
writes the state configuration projected from it. A layout without a Start
node projects to an empty document, written as {}.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		strict, _ := cmd.Flags().GetBool("strict")
		quiet, _ := cmd.Flags().GetBool("quiet")
		return cli.RunProject(cmd.Context(), a.env, cli.ProjectOptions{
			Input:  inputArg(args),
			Output: output,
			Format: format,
			Strict: strict,
			Quiet:  quiet,
		})
	},
}

var hydrateCmd = &cobra.Command{
	Use:   "hydrate [config]",
	Short: "Rebuild a diagram layout from a state configuration",
	Long: `Reads a state configuration (JSON or YAML) and writes the equivalent layout
document. An invalid configuration is rejected with every problem listed and
nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		return cli.RunHydrate(cmd.Context(), a.env, cli.HydrateOptions{
			Input:  inputArg(args),
			Output: output,
			Format: format,
		})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [config]",
	Short: "Check a state configuration for structural problems",
	Long: `Reports duplicate ids, a missing or repeated entry point, invalid ports,
dangling links and empty required fields. Exits non-zero when any is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		quiet, _ := cmd.Flags().GetBool("quiet")
		return cli.RunValidate(cmd.Context(), a.env, cli.ValidateOptions{
			Input:  inputArg(args),
			Format: format,
			Quiet:  quiet,
		})
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph [config]",
	Short: "Export a state configuration as a Mermaid flowchart",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		fromLayout, _ := cmd.Flags().GetBool("layout")
		return cli.RunGraph(cmd.Context(), a.env, cli.GraphOptions{
			Input:      inputArg(args),
			Output:     output,
			Format:     format,
			FromLayout: fromLayout,
		})
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe [config]",
	Short: "Summarize a state configuration and its problems",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		fromLayout, _ := cmd.Flags().GetBool("layout")
		plain, _ := cmd.Flags().GetBool("plain")
		return cli.RunDescribe(cmd.Context(), a.env, cli.DescribeOptions{
			Input:      inputArg(args),
			Format:     format,
			FromLayout: fromLayout,
			Plain:      plain,
		})
	},
}

func init() {
	rootCmd.AddCommand(projectCmd, hydrateCmd, validateCmd, graphCmd, describeCmd)

	for _, c := range []*cobra.Command{projectCmd, hydrateCmd, graphCmd} {
		c.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	}
	for _, c := range []*cobra.Command{projectCmd, hydrateCmd, validateCmd, graphCmd, describeCmd} {
		c.Flags().StringP("format", "f", "", "Configuration format: json or yaml (default: from file extension)")
	}
	for _, c := range []*cobra.Command{graphCmd, describeCmd} {
		c.Flags().Bool("layout", false, "Read a layout document and project it first")
	}

	projectCmd.Flags().Bool("strict", false, "Fail on projection diagnostics and attribute problems")
	projectCmd.Flags().BoolP("quiet", "q", false, "Do not print warnings")
	validateCmd.Flags().BoolP("quiet", "q", false, "Print nothing when the configuration is valid")
	describeCmd.Flags().Bool("plain", false, "Disable terminal styling")
}
