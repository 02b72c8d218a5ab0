package binding

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"

	"paramforge/internal/class"
)

type emitAttr struct {
	Name   string
	ID     uint16
	Getter string
	Setter string
	IDName string
	GoType string
	Ref    bool
	Recv   string
}

type emitContract struct {
	Name   string
	Type   string
	Parent string
	Owned  []emitAttr
}

type emitFinal struct {
	Name     string
	ID       uint16
	Type     string
	IDName   string
	Contract string
	Attrs    []emitAttr
}

type emitFile struct {
	Package     string
	DataVersion int
	UsesParam   bool
	Contracts   []emitContract
	Finals      []emitFinal
}

var goTemplate = template.Must(template.New("bindings").Parse(`// Code generated by paramc from schema data version {{.DataVersion}}. DO NOT EDIT.

package {{.Package}}

import (
	"paramforge/internal/box"
	"paramforge/internal/class"
{{- if .UsesParam}}
	"paramforge/internal/param"
{{- end}}
)

// ClassIds of the final classes.
const (
{{- range .Finals}}
	{{.IDName}} uint16 = {{.ID}}
{{- end}}
)
{{range .Contracts}}
// {{.Type}} is the accessor contract of class {{.Name}}.
type {{.Type}} interface {
{{- if .Parent}}
	{{.Parent}}
{{- else}}
	ParamTable() *class.Table
{{- end}}
{{- range .Owned}}
	{{.Getter}}() {{.GoType}}
	{{.Setter}}(v {{.GoType}})
{{- end}}
}
{{end}}
{{- range .Finals}}
// {{.Type}} is the attribute table of final class {{.Name}}.
type {{.Type}} struct{ t *class.Table }

var _ {{.Contract}} = {{.Type}}{}

// Attribute ids of {{.Name}}.
const (
{{- range .Attrs}}
	{{.IDName}} uint16 = {{.ID}}
{{- end}}
)

// New{{.Type}} returns a {{.Name}} table holding its defaults.
func New{{.Type}}(reg *class.Registry) ({{.Type}}, error) {
	t, err := reg.New({{printf "%q" .Name}})
	if err != nil {
		return {{.Type}}{}, err
	}
	return {{.Type}}{t}, nil
}

func (c {{.Type}}) ParamTable() *class.Table { return c.t }
{{range .Attrs}}
{{- if .Ref}}
// {{.Getter}} returns the stored {{.Name}}; callers must not mutate it.
{{- end}}
func (c {{.Recv}}) {{.Getter}}() {{.GoType}} { return class.MustGet[{{.GoType}}](c.t, {{printf "%q" .Name}}) }

func (c {{.Recv}}) {{.Setter}}(v {{.GoType}}) { class.MustSet(c.t, {{printf "%q" .Name}}, v) }
{{end}}
{{- end}}
// Register installs the typed wrappers into d.
func Register(d *box.Dispatch) error {
{{- range .Finals}}
	if err := d.Register({{.IDName}}, func(t *class.Table) box.Concrete { return {{.Type}}{t} }); err != nil {
		return err
	}
{{- end}}
	return nil
}
`))

// EmitGo renders typed accessors for reg: one contract interface per class
// embedding its parent's, one wrapper struct per final class and a Register
// function for the box dispatch table.
func EmitGo(reg *class.Registry, pkg string) ([]byte, error) {
	f := emitFile{Package: pkg, DataVersion: reg.DataVersion}
	idents := map[string]string{}
	claim := func(ident, what string) error {
		if prev, ok := idents[ident]; ok {
			return fmt.Errorf("identifier %s of %s collides with %s", ident, what, prev)
		}
		idents[ident] = what
		return nil
	}
	if err := claim("Register", "the dispatch hook"); err != nil {
		return nil, err
	}

	for _, c := range reg.Classes() {
		ct := emitContract{Name: c.Name(), Type: exported(c.Name()) + "Params"}
		if err := claim(ct.Type, "class "+c.Name()); err != nil {
			return nil, err
		}
		if p := c.Parent(); p != nil {
			ct.Parent = exported(p.Name()) + "Params"
		}
		for _, a := range c.Owned() {
			ct.Owned = append(ct.Owned, attrView(a, ""))
		}
		f.Contracts = append(f.Contracts, ct)
	}

	for _, c := range reg.Finals() {
		base := exported(c.Name())
		fin := emitFinal{
			Name:     c.Name(),
			ID:       c.ID(),
			Type:     base + "Class",
			IDName:   base + "ClassID",
			Contract: base + "Params",
		}
		for _, ident := range []string{fin.Type, fin.IDName, "New" + fin.Type} {
			if err := claim(ident, "class "+c.Name()); err != nil {
				return nil, err
			}
		}
		methods := map[string]string{"ParamTable": "table accessor"}
		for _, a := range c.Attrs() {
			v := attrView(a, fin.Type)
			v.IDName = base + exported(a.Name()) + "ID"
			if err := claim(v.IDName, c.Name()+"."+a.Name()); err != nil {
				return nil, err
			}
			for _, m := range []string{v.Getter, v.Setter} {
				if prev, ok := methods[m]; ok {
					return nil, fmt.Errorf("class %s: method %s of %s collides with %s", c.Name(), m, a.Name(), prev)
				}
				methods[m] = a.Name()
			}
			fin.Attrs = append(fin.Attrs, v)
			f.UsesParam = true
		}
		f.Finals = append(f.Finals, fin)
	}

	var buf bytes.Buffer
	if err := goTemplate.Execute(&buf, f); err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return src, nil
}

func attrView(a *class.Attr, recv string) emitAttr {
	name := exported(a.Name())
	return emitAttr{
		Name:   a.Name(),
		ID:     a.ID(),
		Getter: name,
		Setter: "Set" + name,
		GoType: a.Type().GoType(),
		Ref:    a.Type().IsRef(),
		Recv:   recv,
	}
}

// exported converts a schema identifier such as max_hp or maxHp to MaxHp.
func exported(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	s := b.String()
	if s == "" || unicode.IsDigit(rune(s[0])) {
		s = "X" + s
	}
	return s
}
