// Package resource builds the CRUD command tree for one API resource.
// Every resource shares the same four subcommands; the schema decides
// the columns, the form fields, and the filters.
package resource

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clinadm/internal/application/crud"
	"clinadm/internal/domain/record"
	"clinadm/internal/interfaces/cli/app"
	"clinadm/internal/interfaces/cli/forms"
	"clinadm/internal/interfaces/cli/prompt"
	"clinadm/internal/interfaces/cli/render"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
)

// Filters returns the filter bar of a resource view. Selecting a funder
// scopes the service filter, so changing the funder clears it.
func Filters(resource string) []crud.FilterSpec {
	switch resource {
	case "patients":
		return []crud.FilterSpec{
			{Name: "finance", Placeholder: "funder name", Resets: []string{"service"}},
			{Name: "service", Placeholder: "service name"},
			{Name: "search", Placeholder: "name or personal number"},
		}
	case "admin/users":
		return []crud.FilterSpec{
			{Name: "role", Options: []string{"admin", "doctor", "staff"}},
			{Name: "search", Placeholder: "name or username"},
		}
	default:
		return []crud.FilterSpec{{Name: "search"}}
	}
}

func NewCommand(schema record.Schema) *cobra.Command {
	use := commandName(schema)
	cmd := &cobra.Command{
		Use:   use,
		Short: "Manage " + strings.ToLower(schema.Title),
	}
	cmd.AddCommand(
		newListCommand(schema),
		newCreateCommand(schema),
		newEditCommand(schema),
		newDeleteCommand(schema),
	)
	return cmd
}

// newManager bootstraps the app and builds the resource's manager after
// checking the signed-in role may see the view at all.
func newManager(schema record.Schema) (*crud.Manager, *app.App, error) {
	a, err := app.Bootstrap()
	if err != nil {
		return nil, nil, err
	}
	role, err := a.Role()
	if err != nil {
		return nil, nil, err
	}
	if !a.Gate.Allowed(role, schema.Resource, authorization.ActionView) {
		return nil, nil, errors.NewForbiddenError("this view is not available for your role")
	}
	return crud.NewManager(a.Client, schema, a.Gate, role, Filters(schema.Resource)...), a, nil
}

func newListCommand(schema record.Schema) *cobra.Command {
	values := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + strings.ToLower(schema.Title),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := newManager(schema)
			if err != nil {
				return err
			}
			for _, spec := range m.Filters() {
				if v := *values[spec.Name]; v != "" {
					if err := m.SetFilter(spec.Name, v); err != nil {
						return err
					}
				}
			}
			if err := m.Fetch(cmd.Context()); err != nil {
				return err
			}
			render.Records(os.Stdout, schema, m.Records())
			return nil
		},
	}
	for _, spec := range Filters(schema.Resource) {
		usage := "Filter by " + spec.Name
		if spec.Placeholder != "" {
			usage = "Filter by " + spec.Placeholder
		}
		if len(spec.Options) > 0 {
			usage += " (" + strings.Join(spec.Options, ", ") + ")"
		}
		values[spec.Name] = cmd.Flags().String(spec.Name, "", usage)
	}
	return cmd
}

func newCreateCommand(schema record.Schema) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new " + singular(schema),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := newManager(schema)
			if err != nil {
				return err
			}

			rec := record.Record{}
			if err := forms.Fill(prompt.New(), schema, rec); err != nil {
				return err
			}
			if err := m.Save(cmd.Context(), rec); err != nil {
				return err
			}
			fmt.Println("Created")
			return nil
		},
	}
}

func newEditCommand(schema record.Schema) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an existing " + singular(schema),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := newManager(schema)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := m.Fetch(cmd.Context()); err != nil {
				return err
			}
			current := findRecord(m.Records(), id)
			if current == nil {
				return errors.NewNotFoundError(fmt.Sprintf("no %s with id %d", singular(schema), id))
			}

			draft := current.Clone()
			if err := forms.Fill(prompt.New(), schema, draft); err != nil {
				return err
			}
			if err := m.Save(cmd.Context(), draft); err != nil {
				return err
			}
			fmt.Println("Saved")
			return nil
		},
	}
}

func newDeleteCommand(schema record.Schema) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + singular(schema),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := newManager(schema)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			p := prompt.New()
			confirm := func() bool {
				return p.Confirm(fmt.Sprintf("Delete %s %d? This cannot be undone.", singular(schema), id))
			}
			if err := m.Delete(cmd.Context(), record.Record{"id": id}, confirm); err != nil {
				return err
			}
			return nil
		},
	}
}

func findRecord(records []record.Record, id int64) record.Record {
	for _, rec := range records {
		if recID, ok := rec.ID(); ok && recID == id {
			return rec
		}
	}
	return nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, errors.NewValidationError("id must be a number")
	}
	return id, nil
}

// commandName is the last segment of the resource path, so admin-scoped
// resources still get a short command ("admin/users" -> "users").
func commandName(schema record.Schema) string {
	parts := strings.Split(schema.Resource, "/")
	return parts[len(parts)-1]
}

func singular(schema record.Schema) string {
	return strings.TrimSuffix(commandName(schema), "s")
}
