// Package forms prompts through a schema's fields to build or edit a
// record, mirroring the payload rules: blank passwords keep the current
// value, read-only fields are shown but never asked for.
package forms

import (
	"fmt"

	"clinadm/internal/domain/record"
	"clinadm/internal/interfaces/cli/prompt"
	"clinadm/internal/interfaces/cli/render"
)

// Fill walks every form field of the schema and prompts for a value,
// pre-filling from the record's current contents when editing.
func Fill(p *prompt.Prompter, schema record.Schema, rec record.Record) error {
	isNew := rec.IsNew()
	for _, f := range schema.FormFields() {
		if isNew && !createAllows(schema, f.Name) {
			continue
		}
		if err := FillField(p, f, rec); err != nil {
			return err
		}
	}
	return nil
}

// FillField prompts for one field and stores the answer in the record.
func FillField(p *prompt.Prompter, f record.FieldSpec, rec record.Record) error {
	label := render.Heading(f.Name)

	if f.ReadOnly {
		if current := rec.StringValue(f.Name); current != "" {
			fmt.Printf("%s: %s\n", label, current)
		}
		return nil
	}

	switch f.Kind {
	case record.KindPassword:
		if !rec.IsNew() {
			label += " (blank keeps current)"
		}
		value, err := p.Password(label)
		if err != nil {
			return err
		}
		rec[f.Name] = value
	case record.KindCheckbox:
		rec[f.Name] = p.ConfirmDefault(label+"?", currentBool(rec, f.Name))
	default:
		value, err := p.LineDefault(label, rec.StringValue(f.Name))
		if err != nil {
			return err
		}
		rec[f.Name] = value
	}
	return nil
}

// currentBool reads the record's current checkbox state so a blank
// answer on edit keeps it instead of silently flipping to false.
func currentBool(rec record.Record, name string) bool {
	switch v := rec[name].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "yes" || v == "y" || v == "1"
	default:
		return false
	}
}

func createAllows(schema record.Schema, name string) bool {
	if len(schema.CreateFields) == 0 {
		return true
	}
	for _, allowed := range schema.CreateFields {
		if allowed == name {
			return true
		}
	}
	return false
}
