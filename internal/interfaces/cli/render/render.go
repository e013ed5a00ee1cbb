// Package render prints records and audit entries as aligned tables.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clinadm/internal/domain/anex"
	"clinadm/internal/domain/history"
	"clinadm/internal/domain/record"
)

var titleCaser = cases.Title(language.English)

// Heading turns a snake_case field name into a column heading.
func Heading(field string) string {
	return titleCaser.String(strings.ReplaceAll(field, "_", " "))
}

// Records prints a collection as a table, one column per visible field
// plus the id.
func Records(w io.Writer, schema record.Schema, records []record.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fields := schema.TableFields()

	headings := []string{"Id"}
	for _, f := range fields {
		headings = append(headings, Heading(f.Name))
	}
	fmt.Fprintln(tw, strings.Join(headings, "\t"))

	for _, rec := range records {
		id := ""
		if n, ok := rec.ID(); ok {
			id = fmt.Sprintf("%d", n)
		}
		row := []string{id}
		for _, f := range fields {
			row = append(row, record.DisplayValue(f, rec[f.Name]))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
}

// AnexRows prints an edit session's rows with their position, which is
// what the row-level commands take as argument.
func AnexRows(w io.Writer, editor *anex.Editor) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "#\tDoctor\tService\tFunder\tPayable\tPaid")
	for i := 0; i < editor.Len(); i++ {
		item, err := editor.Row(i)
		if err != nil {
			continue
		}
		marker := fmt.Sprintf("%d", i)
		if editor.EditingIndex() == i {
			marker += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%.2f\t%.2f\n",
			marker, ref(item.DoctorID), item.ServiceID, funder(item), item.PayableAmount, item.PaidAmount)
	}
}

// HistoryEntries prints audit log entries with their decoded changes.
func HistoryEntries(w io.Writer, entries []history.Entry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "When\tWho\tAction\tEntity\tPatient\tChanges")
	for _, e := range entries {
		patient := ""
		if e.PatientContext != nil {
			patient = *e.PatientContext
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s #%d\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04"), e.ActorLabel(), e.Action,
			e.EntityType, e.EntityID, patient, changeSummary(e))
	}
}

// CSV prints parsed export rows.
func CSV(w io.Writer, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
}

func changeSummary(e history.Entry) string {
	set, err := e.ChangeSet()
	if err != nil || len(set) == 0 {
		return ""
	}
	fields := make([]string, 0, len(set))
	for field := range set {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(set))
	for _, field := range fields {
		change := set[field]
		switch {
		case change.Old != nil && change.New != nil:
			parts = append(parts, fmt.Sprintf("%s: %v -> %v", field, change.Old, change.New))
		case change.New != nil:
			parts = append(parts, fmt.Sprintf("%s: %v", field, change.New))
		default:
			parts = append(parts, fmt.Sprintf("%s: %v", field, change.Old))
		}
	}
	return strings.Join(parts, ", ")
}

func ref(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

func funder(item anex.LineItem) string {
	if item.SelfFunded() {
		return "self-funded"
	}
	return fmt.Sprintf("%d", *item.FinanceID)
}
