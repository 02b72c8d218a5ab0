package schema

import (
	"fmt"
	"sort"

	"paramforge/internal/param"
)

// Issue is a non-fatal schema inconsistency.
type Issue struct {
	Class   string `json:"class"`
	Attr    string `json:"attr,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Lint reports contradictions the resolver accepts but that are almost
// certainly mistakes.
func Lint(g *Graph, alwaysFinal []string) []Issue {
	var issues []Issue

	for _, name := range alwaysFinal {
		if _, ok := g.Class(name); !ok {
			issues = append(issues, Issue{
				Class:   name,
				Code:    "always_final_unknown",
				Message: "class listed as always final is not in the schema",
			})
		}
	}

	for _, c := range g.Classes {
		names := make([]string, 0, len(c.Options))
		for name := range c.Options {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			opt := c.Options[name]
			add := func(code, format string, args ...any) {
				issues = append(issues, Issue{Class: c.Name, Attr: name, Code: code, Message: fmt.Sprintf(format, args...)})
			}

			if !declaredInChain(g, c, name) {
				add("option_undeclared", "option for attribute without paramid")
			}

			// ownership flags are exclusive
			owners := 0
			for _, f := range []param.Flag{param.FlagNodeOwn, param.FlagServerOwn, param.FlagClientOwn} {
				if opt.Flags.Has(f) {
					owners++
				}
			}
			if owners > 1 {
				add("ownership_conflict", "more than one of nodeOwn, serverOwn, clientOwn: %s", opt.Flags)
			}

			if opt.Flags.Has(param.FlagClientOwn) && !opt.Flags.ClientVisible() {
				add("client_own_hidden", "clientOwn attribute is excluded from the client")
			}
			if opt.Flags.Has(param.FlagClientPrivileged) && opt.Flags.Has(param.FlagExcludeFromClient) {
				add("privileged_hidden", "clientPrivileged attribute is excluded from the client")
			}
			if opt.Flags.Has(param.FlagUts) && opt.Type != param.TypeVector3Uts {
				add("uts_type", "uts flag has no effect on type %s", opt.Type)
			}
			if opt.Flags.Has(param.FlagDeprecated) && opt.Flags.Has(param.FlagPersistent) {
				add("deprecated_persistent", "deprecated attribute is still persistent")
			}
			if opt.Flags.Has(param.FlagContentJSON) && opt.Type != param.TypeJSON {
				add("content_json_type", "contentJSON flag on non-Json type %s", opt.Type)
			}
		}
	}
	return issues
}

func declaredInChain(g *Graph, c *ClassDef, name string) bool {
	return g.Owner(c, name) != nil
}
