package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/ddl"
	"github.com/xaviermathew/Aragog/internal/schema"
)

// schemaFlags selects where a stored schema is read from.
type schemaFlags struct {
	file string
}

func (s *schemaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.file, "schema", "s", "", "read the schema from this JSON file instead of the registry")
}

// maxShownChoices caps the choices column of describe output.
const maxShownChoices = 5

type describeFlags struct {
	schemaFlags
	plain bool
}

func newDescribeCmd(root *rootFlags) *cobra.Command {
	f := &describeFlags{}
	cmd := &cobra.Command{
		Use:   "describe <dataset>",
		Short: "Print the stored schema of a dataset as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := jobForSchema(root, f.file)
			if err != nil {
				return err
			}
			s, err := loadSchema(cmd.Context(), job, args[0], f.file)
			if err != nil {
				return err
			}
			md := describeMarkdown(args[0], s)
			if f.plain {
				_, err = fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}
			out, err := renderMarkdown(md)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.plain, "plain", false, "print raw markdown")
	return cmd
}

// jobForSchema loads the job, tolerating a missing job file when the schema
// comes from a file.
func jobForSchema(root *rootFlags, schemaFile string) (config.Job, error) {
	job, _, err := loadJob(root)
	if err != nil && schemaFile != "" && errors.Is(err, fs.ErrNotExist) {
		return config.Job{}, nil
	}
	return job, err
}

func describeMarkdown(name string, s *schema.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)
	fmt.Fprintf(&b, "%s records, %d fields\n\n", humanize.Comma(s.Records), len(s.Fields))
	b.WriteString("| field | column | type | required | nulls | range | choices |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, d := range ddl.Describe(s) {
		f := s.Fields[d.Field]
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			escapeCell(d.Field), d.Column, f.Type, yesNo(f.Required),
			humanize.Comma(f.NullCount), valueRange(f), choicesCell(d.Choices, f.Overflowed))
	}
	return b.String()
}

func valueRange(f schema.Field) string {
	if f.MinValue == nil || f.MaxValue == nil {
		return ""
	}
	return fmt.Sprintf("%s .. %s", humanize.Ftoa(*f.MinValue), humanize.Ftoa(*f.MaxValue))
}

func choicesCell(choices []string, overflowed bool) string {
	if overflowed {
		return "(too many)"
	}
	shown := choices
	if len(shown) > maxShownChoices {
		shown = shown[:maxShownChoices]
	}
	cells := make([]string, len(shown))
	for i, c := range shown {
		cells[i] = escapeCell(c)
	}
	out := strings.Join(cells, ", ")
	if n := len(choices) - len(shown); n > 0 {
		out += fmt.Sprintf(" (+%d)", n)
	}
	return out
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
