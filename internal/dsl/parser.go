// Package dsl parses the line-oriented class/param schema into directive
// records. Every line parses on its own; any malformed line aborts the parse.
package dsl

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"paramforge/internal/param"
)

var (
	qualifiedRe = regexp.MustCompile(`^([A-Za-z_][\w]*)\.([A-Za-z_][\w]*)$`)
	identRe     = regexp.MustCompile(`^[A-Za-z_][\w]*$`)
)

// tokenize splits a line into bare words and double-quoted strings.
// Spaces, tabs and commas separate bare words; inside quotes \" and \\ are
// the only escapes.
func tokenize(line string) ([]string, error) {
	var (
		out     []string
		buf     []rune
		inQuote bool
		escaped bool
		quoted  bool
	)
	flush := func() {
		if len(buf) > 0 || quoted {
			out = append(out, string(buf))
			buf = buf[:0]
		}
		quoted = false
	}
	for _, r := range line {
		switch {
		case escaped:
			if r != '"' && r != '\\' {
				buf = append(buf, '\\')
			}
			buf = append(buf, r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			if inQuote {
				inQuote = false
				flush()
			} else {
				flush()
				inQuote, quoted = true, true
			}
		case !inQuote && (r == ' ' || r == '\t' || r == ','):
			flush()
		default:
			buf = append(buf, r)
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quoted string")
	}
	flush()
	return out, nil
}

// ParseLine parses one schema line. n is the 1-based line number.
func ParseLine(n int, raw string) (Directive, error) {
	line := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	ln := lineNo(n)
	if line == "" || strings.HasPrefix(line, "//") {
		return Ignored{ln, line}, nil
	}
	toks, err := tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return Ignored{ln, line}, nil
	}

	keyword := strings.ToLower(toks[0])
	args := toks[1:]
	switch keyword {
	case "help":
		return Ignored{ln, line}, nil
	case "data_ver":
		if len(args) != 1 {
			return nil, fmt.Errorf("data_ver expects 1 argument, got %d", len(args))
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("data_ver: %w", err)
		}
		return DataVersion{ln, v}, nil
	case "table":
		if len(args) == 0 {
			return nil, errors.New("table expects a name")
		}
		return Table{ln, args[0], append([]string(nil), args[1:]...)}, nil
	case "class":
		if len(args) < 2 {
			return nil, fmt.Errorf("class expects <name> <key> <value>, got %q", line)
		}
		if !identRe.MatchString(args[0]) {
			return nil, fmt.Errorf("invalid class name %q", args[0])
		}
		value := ""
		if len(args) > 2 {
			value = strings.Join(args[2:], " ")
		}
		return ClassProp{ln, args[0], strings.ToLower(args[1]), value}, nil
	case "paramid":
		if len(args) != 2 {
			return nil, fmt.Errorf("paramid expects <Class.attr> <id>, got %q", line)
		}
		m := qualifiedRe.FindStringSubmatch(args[0])
		if m == nil {
			return nil, fmt.Errorf("paramid: invalid attribute reference %q", args[0])
		}
		id, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("paramid %s: %w", args[0], err)
		}
		return ParamID{ln, m[1], m[2], uint16(id)}, nil
	}

	if kind, ok := defaultClassKinds[keyword]; ok {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects a class name", keyword)
		}
		return DefaultClass{ln, kind, args[0]}, nil
	}

	if m := qualifiedRe.FindStringSubmatch(toks[0]); m != nil {
		opt, recognized, err := parseOptions(m[1], m[2], args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", toks[0], err)
		}
		if recognized {
			opt.lineNo = ln
			return opt, nil
		}
	}
	return Ignored{ln, line}, nil
}

// parseOptions reads `type`, `flag` and `default` pairs. recognized is false
// when no pair was found at all, in which case the line is not an option line.
func parseOptions(class, attr string, args []string) (ParamOption, bool, error) {
	opt := ParamOption{Class: class, Attr: attr}
	recognized := false
	for i := 0; i+1 < len(args); i += 2 {
		key, val := strings.ToLower(args[i]), args[i+1]
		switch key {
		case "type":
			t, err := param.ParseType(val)
			if err != nil {
				return opt, false, err
			}
			opt.Type = t
		case "flag", "flags":
			for _, f := range strings.Split(val, "|") {
				flag, err := param.ParseFlag(f)
				if err != nil {
					return opt, false, err
				}
				opt.Flags |= flag
			}
		case "default":
			lit := val
			opt.RawDefault = &lit
		default:
			opt.Skipped = append(opt.Skipped, key)
			continue
		}
		recognized = true
	}
	if len(args)%2 == 1 {
		opt.Dangling = args[len(args)-1]
	}
	if opt.Type != param.TypeInvalid {
		opt.Type = opt.Type.Resolve(opt.Flags)
		if opt.RawDefault != nil {
			v, err := param.ParseDefault(opt.Type, *opt.RawDefault)
			if err != nil {
				return opt, false, err
			}
			opt.Default = v
		}
	}
	return opt, recognized, nil
}

// Parse reads a whole schema. UTF-16 input is detected by its byte order
// mark (or a NUL second byte); anything else is read as UTF-8.
func Parse(r io.Reader, log *slog.Logger) ([]Directive, error) {
	if log == nil {
		log = slog.Default()
	}
	br := bufio.NewReader(r)
	head, _ := br.Peek(2)
	var src io.Reader = br
	switch {
	case bytes.HasPrefix(head, []byte{0xff, 0xfe}), bytes.HasPrefix(head, []byte{0xfe, 0xff}):
		src = transform.NewReader(br, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	case len(head) == 2 && head[0] != 0 && head[1] == 0:
		src = transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder())
	}

	var out []Directive
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		d, err := ParseLine(n, scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if opt, ok := d.(ParamOption); ok && len(opt.Skipped) > 0 {
			log.Warn("unknown option keys skipped", "line", n, "attr", opt.Class+"."+opt.Attr, "keys", opt.Skipped)
		}
		if opt, ok := d.(ParamOption); ok && opt.Dangling != "" {
			log.Warn("option key without value skipped", "line", n, "attr", opt.Class+"."+opt.Attr, "key", opt.Dangling)
		}
		if ig, ok := d.(Ignored); ok {
			if ig.Text != "" && !strings.HasPrefix(ig.Text, "//") {
				log.Debug("schema line ignored", "line", n, "text", ig.Text)
			}
			continue
		}
		out = append(out, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFile parses the schema file at path.
func LoadFile(path string, log *slog.Logger) ([]Directive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := Parse(f, log)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ds, nil
}
