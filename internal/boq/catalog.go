// Package boq declares the telecom BOQ resource catalog. Every entry is the
// same thing: an endpoint path plus a field schema. The one generic
// controller pair in internal/resource drives all of them; nothing here is
// per-screen code.
package boq

import (
	"fmt"
	"sort"

	"boqtrack/internal/schema"
)

// Resource binds one remote collection to its schema.
type Resource struct {
	// Name is the CLI-facing resource name, e.g. "projects".
	Name string
	// Path is the collection path under the API root, e.g. "/projects".
	Path string
	// Label names the field used when describing a record to the user.
	Label  string
	Schema schema.Schema
}

// ItemPath returns the path of one record.
func (r Resource) ItemPath(id string) string {
	return r.Path + "/" + id
}

// UploadPath returns the CSV ingestion path.
func (r Resource) UploadPath() string {
	return r.Path + "/upload-csv"
}

// Describe renders a short human label for a record, for confirmation
// prompts and notifications.
func (r Resource) Describe(record map[string]any) string {
	if v, ok := record[r.Label].(string); ok && v != "" {
		return fmt.Sprintf("%s %q", r.Name, v)
	}
	if v, ok := record[r.Schema.IDField].(string); ok && v != "" {
		return fmt.Sprintf("%s %s", r.Name, v)
	}
	return r.Name
}

func str(name string, required, editable bool) schema.Field {
	return schema.Field{Name: name, Kind: schema.String, Required: required, EditableOnUpdate: editable}
}

func num(name string, kind schema.Kind, required bool) schema.Field {
	return schema.Field{Name: name, Kind: kind, Required: required, EditableOnUpdate: true}
}

func date(name string, required bool) schema.Field {
	return schema.Field{Name: name, Kind: schema.Date, Required: required, EditableOnUpdate: true}
}

var catalog = []Resource{
	{
		Name:  "projects",
		Path:  "/projects",
		Label: "name",
		Schema: schema.Schema{
			IDField: "id",
			Fields: []schema.Field{
				str("name", true, true),
				str("code", true, false),
				str("customer", true, true),
				str("region", false, true),
				date("start_date", false),
				date("end_date", false),
				str("status", false, true),
			},
		},
	},
	{
		Name:  "sites",
		Path:  "/sites",
		Label: "site_code",
		Schema: schema.Schema{
			IDField: "id",
			Fields: []schema.Field{
				str("site_code", true, false),
				str("name", true, true),
				str("project_id", true, false),
				str("region", false, true),
				num("latitude", schema.Float, false),
				num("longitude", schema.Float, false),
				str("status", false, true),
			},
		},
	},
	{
		Name:  "inventory",
		Path:  "/inventory",
		Label: "item_code",
		Schema: schema.Schema{
			IDField: "id",
			Fields: []schema.Field{
				str("site_id", true, false),
				str("item_code", true, true),
				str("description", false, true),
				num("qty", schema.Int, true),
				str("uom", false, true),
				str("status", false, true),
			},
		},
	},
	{
		Name:  "lvl1",
		Path:  "/lvl1-items",
		Label: "item_code",
		Schema: schema.Schema{
			IDField: "id",
			Fields: []schema.Field{
				str("project_id", true, false),
				str("item_code", true, true),
				str("description", false, true),
				str("uom", false, true),
				num("qty", schema.Int, true),
				num("unit_price", schema.Float, false),
			},
		},
	},
	{
		Name:  "lvl3",
		Path:  "/lvl3-items",
		Label: "item_code",
		Schema: schema.Schema{
			IDField: "id",
			Fields: []schema.Field{
				str("lvl1_id", true, false),
				str("item_code", true, true),
				str("description", false, true),
				str("uom", false, true),
				num("qty", schema.Int, true),
				num("unit_price", schema.Float, false),
			},
		},
	},
	{
		Name:  "dismantle",
		Path:  "/dismantling",
		Label: "item_code",
		Schema: schema.Schema{
			IDField: "id",
			Fields: []schema.Field{
				str("site_id", true, false),
				str("item_code", true, true),
				str("description", false, true),
				num("qty", schema.Int, true),
				date("dismantle_date", false),
				str("status", false, true),
			},
		},
	},
	{
		Name:  "lld",
		Path:  "/lld",
		Label: "sector",
		Schema: schema.Schema{
			IDField: "id",
			Fields: []schema.Field{
				str("site_id", true, false),
				str("sector", true, true),
				num("antenna_height", schema.Float, false),
				num("azimuth", schema.Int, false),
				num("tilt", schema.Int, false),
				str("band", false, true),
				str("status", false, true),
			},
		},
	},
	{
		Name:  "rop-packages",
		Path:  "/rop/packages",
		Label: "name",
		Schema: schema.Schema{
			IDField: "id",
			Fields: []schema.Field{
				str("project_id", true, false),
				str("name", true, true),
				num("qty", schema.Int, true),
				date("start_date", true),
				date("end_date", true),
				num("lead_time_months", schema.Int, false),
				str("status", false, true),
			},
		},
	},
	{
		Name:  "ran",
		Path:  "/ran",
		Label: "scope",
		Schema: schema.Schema{
			IDField: "id",
			Fields: []schema.Field{
				str("site_id", true, false),
				str("scope", true, true),
				str("vendor", false, true),
				num("qty", schema.Int, false),
				str("status", false, true),
			},
		},
	},
	{
		Name:  "du",
		Path:  "/du",
		Label: "du_type",
		Schema: schema.Schema{
			IDField: "id",
			Fields: []schema.Field{
				str("site_id", true, false),
				str("du_type", true, true),
				num("qty", schema.Int, false),
				date("install_date", false),
				str("status", false, true),
			},
		},
	},
}

// Catalog returns all resources in declaration order.
func Catalog() []Resource {
	out := make([]Resource, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a resource by name.
func Lookup(name string) (Resource, bool) {
	for _, r := range catalog {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}

// Names returns all resource names, sorted.
func Names() []string {
	names := make([]string, len(catalog))
	for i, r := range catalog {
		names[i] = r.Name
	}
	sort.Strings(names)
	return names
}
