package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/sketchnotes/pkg/core"
)

// render writes v as json or yaml. table falls back to the given printer.
func render(w io.Writer, format string, v any, table func(w io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		if err := table(tw); err != nil {
			return err
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

func notesTable(notes []core.Note, empty string) func(io.Writer) error {
	return func(w io.Writer) error {
		if len(notes) == 0 {
			_, err := fmt.Fprintln(w, empty)
			return err
		}
		fmt.Fprintln(w, "ID\tDONE\tTITLE\tDESCRIPTION\tIMAGE")
		for _, n := range notes {
			done := " "
			if n.Done {
				done = "x"
			}
			fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\t%s\n", n.ID, done, n.Title, n.Description, n.Image)
		}
		return nil
	}
}
