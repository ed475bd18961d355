// Command sparkling runs Sparkling actions over delimited, JSON lines or plain text files
package main

import (
	"github.com/spf13/cobra"
)

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("schema", "s", "", "column schema, e.g. 'name:string,age:int64' (default: raw lines)")
	cmd.Flags().String("input-format", "csv", "input format when a schema is given, 'csv' or 'jsonl'")
	cmd.Flags().String("delimiter", ",", "column delimiter for csv input")
	cmd.Flags().String("comment", "", "comment character; lines beginning with it are ignored")
	cmd.Flags().String("nil-value", "", "string representing null values in csv input")
	cmd.Flags().Int("header-lines", 0, "number of lines to skip at the start of each file")
	cmd.Flags().IntP("partitions", "p", 0, "minimum number of partitions (default: number of workers)")
}

func addCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "count pattern",
		Short: "Count the records in the matched files",
		Args:  cobra.ExactArgs(1),
		Run:   count}
	addInputFlags(cmd)
	cmd.Flags().Bool("distinct", false, "count distinct records")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "head pattern",
		Short: "Show the first records of the matched files",
		Args:  cobra.ExactArgs(1),
		Run:   head}
	addInputFlags(cmd)
	cmd.Flags().IntP("num", "n", 10, "number of records to show")
	cmd.Flags().String("where", "", "SQL condition which records must satisfy")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "stats pattern",
		Short: "Summarize a numeric column: count, mean, stdev, max and min",
		Args:  cobra.ExactArgs(1),
		Run:   summarize}
	addInputFlags(cmd)
	cmd.Flags().StringP("column", "c", "", "numeric column (default: each line is a number)")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "quantile pattern",
		Short: "Estimate quantiles of numeric columns",
		Args:  cobra.ExactArgs(1),
		Run:   quantile}
	addInputFlags(cmd)
	cmd.Flags().StringArrayP("column", "c", nil, "numeric column (repeatable, required)")
	cmd.Flags().Float64Slice("prob", []float64{0.25, 0.5, 0.75}, "probabilities in [0, 1]")
	cmd.Flags().Float64("relative-error", 0.01, "relative error of the estimate; 0 is exact")
	cmd.MarkFlagRequired("column")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "sample pattern output-dir",
		Short: "Write a random sample of the matched files to a directory",
		Args:  cobra.ExactArgs(2),
		Run:   sample}
	addInputFlags(cmd)
	cmd.Flags().Float64("fraction", 0.1, "expected fraction of records to keep")
	cmd.Flags().Int64("seed", 42, "random seed")
	cmd.Flags().Bool("with-replacement", false, "sample with replacement")
	cmd.Flags().String("ext", "", "compression extension for output files, e.g. '.gz'")
	cmd.Flags().Int("coalesce", 0, "number of output files (default: one per partition)")
	root.AddCommand(cmd)
}

func newRootCommand() *cobra.Command {
	var root = &cobra.Command{Use: "sparkling"}
	root.PersistentFlags().Int("workers", 0, "number of worker goroutines (default: SPARKLING_NUM_WORKERS or the number of CPUs)")
	root.PersistentFlags().String("log-level", "", "log level (default: SPARKLING_LOG_LEVEL or WARN)")
	root.PersistentFlags().BoolP("quiet", "q", false, "silence status output")
	addCommands(root)
	return root
}

func main() {
	newRootCommand().Execute()
}
