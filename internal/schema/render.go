package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var builtinDirectives = map[string]bool{
	"include": true, "skip": true, "deprecated": true, "specifiedBy": true,
	"oneOf": true, "defer": true, ResolverDirective: true,
}

// Render prints s as SDL. Root types come first, in operation order; other
// types and directives follow sorted by name. Built-in types and directives
// are left out.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	w := &sdlWriter{}
	w.schemaBlock(s)

	var names []string
	for _, root := range []string{s.Query, s.Mutation, s.Subscription} {
		if t := s.Types[root]; t != nil {
			names = append(names, root)
		}
	}
	rest := make([]string, 0, len(s.Types))
	for name, t := range s.Types {
		if t.BuiltIn || strings.HasPrefix(name, "__") || contains(names, name) {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)

	for _, name := range append(names, rest...) {
		w.typ(s.Types[name])
	}

	dirs := make([]string, 0, len(s.Directives))
	for name, d := range s.Directives {
		if !d.BuiltIn && !builtinDirectives[name] {
			dirs = append(dirs, name)
		}
	}
	sort.Strings(dirs)
	for _, name := range dirs {
		w.directive(s.Directives[name])
	}
	return strings.TrimRight(w.String(), "\n") + "\n"
}

type sdlWriter struct{ strings.Builder }

func (w *sdlWriter) printf(format string, args ...any) { fmt.Fprintf(w, format, args...) }

// schemaBlock is only written when a root type has a non-default name.
func (w *sdlWriter) schemaBlock(s *Schema) {
	if (s.Query == "" || s.Query == "Query") &&
		(s.Mutation == "" || s.Mutation == "Mutation") &&
		(s.Subscription == "" || s.Subscription == "Subscription") {
		return
	}
	w.WriteString("schema {\n")
	for _, r := range [][2]string{{"query", s.Query}, {"mutation", s.Mutation}, {"subscription", s.Subscription}} {
		if r[1] != "" {
			w.printf("  %s: %s\n", r[0], r[1])
		}
	}
	w.WriteString("}\n\n")
}

func (w *sdlWriter) description(desc, indent string) {
	if desc == "" {
		return
	}
	if !strings.Contains(desc, "\n") {
		w.printf("%s%s\n", indent, strconv.Quote(desc))
		return
	}
	w.printf("%s\"\"\"\n%s%s\n%s\"\"\"\n", indent, indent, strings.ReplaceAll(desc, `"""`, `\"""`), indent)
}

func (w *sdlWriter) typ(t *Type) {
	w.description(t.Description, "")
	switch t.Kind {
	case Scalar:
		w.printf("scalar %s", t.Name)
		if t.SpecifiedByURL != "" {
			w.printf(" @specifiedBy(url: %s)", strconv.Quote(t.SpecifiedByURL))
		}
		w.WriteString("\n\n")
	case Enum:
		w.printf("enum %s {\n", t.Name)
		for _, v := range t.EnumValues {
			w.description(v.Description, "  ")
			w.printf("  %s%s\n", v.Name, deprecated(v.Deprecation))
		}
		w.WriteString("}\n\n")
	case Object:
		w.printf("type %s {\n", t.Name)
		for _, f := range t.Fields {
			w.description(f.Description, "  ")
			w.printf("  %s%s: %s%s\n", f.Name, arguments(f.Arguments), f.Type, deprecated(f.Deprecation))
		}
		w.WriteString("}\n\n")
	}
}

func (w *sdlWriter) directive(d *Directive) {
	w.description(d.Description, "")
	w.printf("directive @%s%s", d.Name, arguments(d.Arguments))
	if d.IsRepeatable {
		w.WriteString(" repeatable")
	}
	w.printf(" on %s\n\n", strings.Join(d.Locations, " | "))
}

func arguments(args []*InputValue) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Name + ": " + a.Type.String()
		if a.DefaultValue != nil {
			parts[i] += " = " + FormatValue(a.DefaultValue)
		}
		parts[i] += deprecated(a.Deprecation)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func deprecated(d Deprecation) string {
	switch {
	case !d.Deprecated:
		return ""
	case d.Reason == "" || d.Reason == "No longer supported":
		return " @deprecated"
	default:
		return " @deprecated(reason: " + strconv.Quote(d.Reason) + ")"
	}
}

// FormatValue renders a default value as a GraphQL literal, as used in SDL
// and in introspection's defaultValue.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
