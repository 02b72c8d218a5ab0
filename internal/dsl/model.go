package dsl

import "paramforge/internal/param"

// Directive is one parsed schema line.
type Directive interface {
	// Line is the 1-based source line the directive came from.
	Line() int
}

type lineNo int

func (l lineNo) Line() int { return int(l) }

// DataVersion is `data_ver <n>`.
type DataVersion struct {
	lineNo
	Version int
}

// DefaultClass is one of the default_<kind>_class directives naming the
// class instantiated for avatars, parties, trades, mails and clans.
type DefaultClass struct {
	lineNo
	Kind  string
	Class string
}

// Table is `table <name> [args...]`, a content table declaration.
type Table struct {
	lineNo
	Name string
	Args []string
}

// ClassProp is `class <name> <key> <value>`. A class is declared by one or
// more of these lines.
type ClassProp struct {
	lineNo
	Class string
	Key   string
	Value string
}

// ParamID is `paramid <Class.attr> <id>`.
type ParamID struct {
	lineNo
	Class string
	Attr  string
	ID    uint16
}

// ParamOption is `<Class.attr> (type T | flag F | default V)+`.
type ParamOption struct {
	lineNo
	Class string
	Attr  string
	// Type is TypeInvalid when the line carries no `type` pair.
	Type  param.Type
	Flags param.Flag
	// Default is set when the line carries a `default` pair. RawDefault keeps
	// the literal for lines whose type comes from another line.
	Default    param.Value
	RawDefault *string
	// Skipped lists option keys that were not understood.
	Skipped []string
	// Dangling is a trailing key that had no value.
	Dangling string
}

// Ignored marks comments, help text and unrecognized lines.
type Ignored struct {
	lineNo
	Text string
}

// Class keys recognized on `class` lines.
const (
	KeyUniqueID            = "uniqueid"
	KeyBindsTo             = "bindsto"
	KeyContentTableBinding = "contenttablebinding"
	KeyExtends             = "extends"
	KeyIcon                = "icon"
)

// Default class directive kinds.
var defaultClassKinds = map[string]string{
	"default_avatar_class": "avatar",
	"default_party_class":  "party",
	"default_trade_class":  "trade",
	"default_mail_class":   "mail",
	"default_clan_class":   "clan",
}
