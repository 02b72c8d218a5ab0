package pg

import (
	"fmt"
	"strings"

	"paramforge/internal/class"
	"paramforge/internal/param"
)

// Schema holds one table per final class.
const Schema = "paramforge"

var reserved = map[string]struct{}{
	"user": {}, "select": {}, "table": {}, "insert": {}, "update": {}, "delete": {},
	"where": {}, "join": {}, "group": {}, "order": {}, "limit": {}, "offset": {},
	"primary": {}, "foreign": {}, "key": {}, "constraint": {}, "default": {},
	"from": {}, "into": {}, "values": {}, "unique": {}, "index": {}, "create": {},
	"drop": {}, "alter": {}, "schema": {}, "grant": {}, "revoke": {},
}

// system columns of every instance table
var system = []string{"id", "version", "created_at", "updated_at", "body"}

func isReserved(s string) bool { _, ok := reserved[strings.ToLower(s)]; return ok }

// naive pluralization (swords, players, ...)
func plural(s string) string {
	s = strings.ToLower(s)
	if strings.HasSuffix(s, "s") {
		return s
	}
	return s + "s"
}

// Table names the instance table of a final class.
func Table(c *class.Class) string {
	t := plural(c.Name())
	if isReserved(t) {
		t = "e_" + t
	}
	return t
}

// Column names the mirror column of a persistent attribute.
func Column(a *class.Attr) string {
	col := strings.ToLower(a.Name())
	if isReserved(col) {
		col = "p_" + col
	}
	return col
}

func sqlIdent(s string) string { return `"` + strings.ToLower(s) + `"` }

func qualified(c *class.Class) string {
	return sqlIdent(Schema) + "." + sqlIdent(Table(c))
}

func mapType(t param.Type) string {
	switch t {
	case param.TypeInt, param.TypeClassRef:
		return "integer"
	case param.TypeInt64:
		return "bigint"
	case param.TypeBitSetFilter:
		// unsigned 64-bit; bigint would wrap bit 63
		return "numeric(20)"
	case param.TypeFloat:
		return "real"
	case param.TypeBool:
		return "boolean"
	case param.TypeString, param.TypeLocalizedString:
		return "text"
	case param.TypeGuid:
		return "uuid"
	default:
		// composite values are stored in their JSON form
		return "jsonb"
	}
}

// Persistent returns the attributes of c mirrored into columns.
func Persistent(c *class.Class) []*class.Attr {
	var out []*class.Attr
	for _, a := range c.Attrs() {
		if a.Flags().Has(param.FlagPersistent) {
			out = append(out, a)
		}
	}
	return out
}

// GenerateDDL returns key -> SQL; ApplyDDL executes keys in
// sorted order. Every statement is idempotent so the DDL can run on each
// start: new persistent attributes become new columns, nothing is dropped.
func GenerateDDL(reg *class.Registry) (map[string]string, error) {
	out := map[string]string{
		"000_schema": fmt.Sprintf("create schema if not exists %s;\n", sqlIdent(Schema)),
	}

	tables := map[string]string{}
	for _, c := range reg.Finals() {
		tbl := Table(c)
		if prev, ok := tables[tbl]; ok {
			return nil, fmt.Errorf("classes %s and %s map to the same table %q", prev, c.Name(), tbl)
		}
		tables[tbl] = c.Name()

		seen := map[string]struct{}{}
		for _, s := range system {
			seen[s] = struct{}{}
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "create table if not exists %s (\n", qualified(c))
		sb.WriteString("  \"id\" text primary key,\n")
		sb.WriteString("  \"version\" bigint not null,\n")
		sb.WriteString("  \"created_at\" timestamp with time zone not null default now(),\n")
		sb.WriteString("  \"updated_at\" timestamp with time zone not null,\n")
		sb.WriteString("  \"body\" bytea not null\n")
		sb.WriteString(");\n")

		for _, a := range Persistent(c) {
			col := Column(a)
			if _, dup := seen[col]; dup {
				return nil, fmt.Errorf("%s.%s: column %q duplicates a system or another column", c.Name(), a.Name(), col)
			}
			seen[col] = struct{}{}
			fmt.Fprintf(&sb, "alter table %s add column if not exists %s %s;\n",
				qualified(c), sqlIdent(col), mapType(a.Type()))
		}
		out["100_"+tbl] = sb.String()
	}
	return out, nil
}
