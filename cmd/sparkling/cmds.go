package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/datasource/parser/dsv"
	"github.com/go-sif/sparkling/datasource/parser/jsonl"
	"github.com/go-sif/sparkling/datasource/text"
	"github.com/go-sif/sparkling/fileio"
	"github.com/go-sif/sparkling/operations/action"
	"github.com/go-sif/sparkling/operations/transform"
	"github.com/go-sif/sparkling/session"
	"github.com/spf13/cobra"
)

// envPrefix is the prefix of environment variables which configure sessions
const envPrefix = "SPARKLING_"

var (
	osExit     = os.Exit
	fileSystem fileio.FileSystem // replaces the local file system of sessions, if non-nil
)

// Action carries the state of a single command invocation
type Action struct {
	cmd   *cobra.Command
	sess  *session.Session
	start time.Time
	quiet bool
}

func newAction(cmd *cobra.Command) *Action {
	result := &Action{cmd: cmd, start: time.Now()}
	result.quiet = result.getBool("quiet")
	return result
}

func (a *Action) Context() context.Context {
	if ctx := a.cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (a *Action) getBool(name string) bool {
	result, _ := a.cmd.Flags().GetBool(name)
	return result
}

func (a *Action) getInt(name string) int {
	result, _ := a.cmd.Flags().GetInt(name)
	return result
}

func (a *Action) getInt64(name string) int64 {
	result, _ := a.cmd.Flags().GetInt64(name)
	return result
}

func (a *Action) getFloat64(name string) float64 {
	result, _ := a.cmd.Flags().GetFloat64(name)
	return result
}

func (a *Action) getFloat64Slice(name string) []float64 {
	result, _ := a.cmd.Flags().GetFloat64Slice(name)
	return result
}

func (a *Action) getRune(name string) rune {
	s, _ := a.cmd.Flags().GetString(name)
	if s == "" {
		return rune(0)
	}
	return []rune(s)[0]
}

func (a *Action) getString(name string) string {
	result, _ := a.cmd.Flags().GetString(name)
	return result
}

func (a *Action) getStringArray(name string) []string {
	result, _ := a.cmd.Flags().GetStringArray(name)
	return result
}

// Session lazily starts the Session used by this Action, configured from the
// environment and then from flags
func (a *Action) Session() *session.Session {
	if a.sess != nil {
		return a.sess
	}
	opts, err := session.LoadOptions(envPrefix)
	if err != nil {
		a.Exit(nil, err)
	}
	if workers := a.getInt("workers"); workers > 0 {
		opts.NumWorkers = workers
	}
	if fileSystem != nil {
		opts.FileSystem = fileSystem
	}
	if level := a.getString("log-level"); level != "" {
		opts.LogLevel = level
	} else if opts.LogLevel == "" {
		opts.LogLevel = "WARN"
	}
	a.sess, err = session.NewSession(opts)
	if err != nil {
		a.Exit(nil, err)
	}
	return a.sess
}

// parser builds the LineParser selected by flags, or nil for raw lines
func (a *Action) parser() (text.LineParser, error) {
	definition := a.getString("schema")
	if definition == "" {
		return nil, nil
	}
	schema, err := parseSchema(definition)
	if err != nil {
		return nil, err
	}
	switch format := a.getString("input-format"); format {
	case "csv":
		return dsv.CreateParser(&dsv.ParserConf{
			Delimiter: a.getRune("delimiter"),
			Comment:   a.getRune("comment"),
			NilValue:  a.getString("nil-value"),
		}, schema)
	case "jsonl":
		return jsonl.CreateParser(&jsonl.ParserConf{Comment: a.getRune("comment")}, schema), nil
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

// Input creates a Dataset from the files matched by pattern, according to the input flags
func (a *Action) Input(pattern string) sparkling.Dataset {
	parser, err := a.parser()
	if err != nil {
		a.Exit(nil, err)
	}
	sess := a.Session()
	source := text.CreateDataSource(sess.FileSystem(), pattern, a.getInt("partitions"), parser).
		WithHeaderLines(a.getInt("header-lines"))
	d, err := sess.FromDataSource(source)
	if err != nil {
		a.Exit(nil, err)
	}
	return d
}

func (a *Action) Append(format string, args ...interface{}) *Action {
	if a.quiet {
		return a
	}
	fmt.Fprintf(a.cmd.ErrOrStderr(), format, args...)
	return a
}

// Show the action banner message.
func (a *Action) Start(format string, args ...interface{}) *Action {
	if a.quiet {
		return a
	}
	fmt.Fprintf(a.cmd.ErrOrStderr(), "%s .. ", fmt.Sprintf(format, args...))
	return a
}

// Update the action banner, stop the session and exit.
func (a *Action) Exit(result interface{}, err error) {
	delta := time.Since(a.start).Seconds()
	if a.sess != nil {
		a.sess.Stop()
	}
	if err != nil {
		a.Append("(%.1fs)\n", delta)
		fmt.Fprintf(a.cmd.ErrOrStderr(), "Error: %s\n", strings.TrimRight(err.Error(), "\r\n"))
		osExit(1)
		return
	}
	a.Append("Ok (%.1fs)\n", delta)
	showValue(a.cmd.OutOrStdout(), result)
	osExit(0)
}

func showValue(w io.Writer, v interface{}) {
	switch vv := v.(type) {
	case nil:
		return
	case []interface{}:
		for _, e := range vv {
			showValue(w, e)
		}
	case sparkling.Row:
		fmt.Fprintln(w, vv.ToString())
	case string:
		fmt.Fprintln(w, strings.TrimRight(vv, "\r\n"))
	default:
		fmt.Fprintln(w, vv)
	}
}

func count(cmd *cobra.Command, args []string) {
	action := newAction(cmd)
	d := action.Input(args[0])
	action.Start("Count %s", args[0])
	if action.getBool("distinct") {
		var err error
		d, err = d.To(transform.Distinct(0))
		if err != nil {
			action.Exit(nil, err)
		}
	}
	n, err := action.Count(d)
	action.Exit(n, err)
}

// Count wraps action.Count for use with Exit
func (a *Action) Count(d sparkling.Dataset) (interface{}, error) {
	n, err := action.Count(a.Context(), d)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func head(cmd *cobra.Command, args []string) {
	action := newAction(cmd)
	d := action.Input(args[0])
	if where := action.getString("where"); where != "" {
		var err error
		d, err = d.To(transform.WhereSQL(where))
		if err != nil {
			action.Exit(nil, err)
		}
	}
	action.Start("Take %d from %s", action.getInt("num"), args[0])
	elements, err := action.Take(d, action.getInt("num"))
	action.Exit(elements, err)
}

// Take wraps action.Take for use with Exit
func (a *Action) Take(d sparkling.Dataset, n int) (interface{}, error) {
	elements, err := action.Take(a.Context(), d, n)
	if err != nil {
		return nil, err
	}
	return elements, nil
}

// numbers parses raw lines into float64 values
func numbers(d sparkling.Dataset) (sparkling.Dataset, error) {
	return d.To(transform.Map(func(element interface{}) (interface{}, error) {
		line, ok := element.(string)
		if !ok {
			return element, nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return nil, nil
		}
		return strconv.ParseFloat(line, 64)
	}))
}

func summarize(cmd *cobra.Command, args []string) {
	action := newAction(cmd)
	d := action.Input(args[0])
	column := action.getString("column")
	if column == "" {
		var err error
		if d, err = numbers(d); err != nil {
			action.Exit(nil, err)
		}
	}
	action.Start("Stats %s", args[0])
	s, err := action.Stats(d, column)
	action.Exit(s, err)
}

// Stats wraps action.Stats for use with Exit
func (a *Action) Stats(d sparkling.Dataset, column string) (interface{}, error) {
	s, err := action.Stats(a.Context(), d, column)
	if err != nil {
		return nil, err
	}
	return s.String(), nil
}

func quantile(cmd *cobra.Command, args []string) {
	action := newAction(cmd)
	d := action.Input(args[0])
	columns := action.getStringArray("column")
	probs := action.getFloat64Slice("prob")
	action.Start("Quantiles of %s", args[0])
	results, err := action.ApproxQuantile(d, columns, probs, action.getFloat64("relative-error"))
	action.Exit(results, err)
}

// ApproxQuantile wraps action.ApproxQuantile, rendering one line per column
func (a *Action) ApproxQuantile(d sparkling.Dataset, columns []string, probs []float64, relErr float64) (interface{}, error) {
	results, err := action.ApproxQuantile(a.Context(), d, columns, probs, relErr)
	if err != nil {
		return nil, err
	}
	lines := make([]interface{}, len(columns))
	for i, col := range columns {
		parts := make([]string, len(probs))
		for j, p := range probs {
			parts[j] = fmt.Sprintf("p%g=%g", p, results[i][j])
		}
		lines[i] = fmt.Sprintf("%s: %s", col, strings.Join(parts, " "))
	}
	return lines, nil
}

func sample(cmd *cobra.Command, args []string) {
	action := newAction(cmd)
	d := action.Input(args[0])
	ops := []*sparkling.DatasetOperation{
		transform.Sample(action.getBool("with-replacement"), action.getFloat64("fraction"), action.getInt64("seed")),
	}
	if n := action.getInt("coalesce"); n > 0 {
		ops = append(ops, transform.Coalesce(n))
	}
	d, err := d.To(ops...)
	if err != nil {
		action.Exit(nil, err)
	}
	action.Start("Sample %s into %s", args[0], args[1])
	err = action.SaveAsTextFile(d, args[1], action.getString("ext"))
	action.Exit(nil, err)
}

// SaveAsTextFile writes a Dataset using the FileSystem of the session
func (a *Action) SaveAsTextFile(d sparkling.Dataset, dir string, ext string) error {
	return action.SaveAsTextFile(a.Context(), d, a.Session().FileSystem(), dir, ext)
}
