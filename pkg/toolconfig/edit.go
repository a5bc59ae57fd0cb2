package toolconfig

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// errNotInPlace is returned when a Set cannot be expressed as a local edit
var errNotInPlace = errors.New("value cannot be written in place")

var bareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// keyValueSpan locates one key/value expression by byte offsets
type keyValueSpan struct {
	path       []string
	section    int
	valueStart int
	valueEnd   int
	// end is past the value and any comment on the same line
	end int
}

// section is the root of the document or the body of one table header.
// insertAt is where a new key of the section goes: the end of its last
// key/value line, or of its header when it has none. It is -1 for a root
// without keys.
type section struct {
	path     []string
	array    bool
	insertAt int
}

type layout struct {
	keyValues []keyValueSpan
	sections  []section
}

// scanLayout walks the top-level expressions of a TOML document and records
// where every key/value and table lives
func scanLayout(data []byte) (*layout, error) {
	p := unstable.Parser{KeepComments: true}
	p.Reset(data)

	l := &layout{sections: []section{{insertAt: -1}}}
	current := 0
	pending := -1

	// finish closes a key/value whose value runs up to boundary
	finish := func(boundary int) {
		if pending < 0 {
			return
		}
		kv := &l.keyValues[pending]
		kv.valueEnd = kv.valueStart + len(bytes.TrimRight(data[kv.valueStart:boundary], " \t\r\n"))
		kv.end = kv.valueEnd
		l.sections[kv.section].insertAt = kv.end
		pending = -1
	}

	for p.NextExpression() {
		e := p.Expression()

		if e.Kind == unstable.Comment {
			finish(int(e.Raw.Offset))
			continue
		}

		parts, last := keyParts(e)
		start := int(e.Key().Node().Raw.Offset)
		afterKey := int(last.Raw.Offset + last.Raw.Length)
		comment := trailingComment(e)

		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			for start > 0 && strings.IndexByte("[ \t", data[start-1]) >= 0 {
				start--
			}
			finish(start)

			end := skipSpace(data, afterKey)
			for end < len(data) && data[end] == ']' {
				end++
			}
			if comment != nil {
				end = int(comment.Raw.Offset + comment.Raw.Length)
			}
			l.sections = append(l.sections, section{
				path:     parts,
				array:    e.Kind == unstable.ArrayTable,
				insertAt: end,
			})
			current = len(l.sections) - 1

		case unstable.KeyValue:
			finish(start)

			valueStart := skipSpace(data, afterKey)
			if valueStart >= len(data) || data[valueStart] != '=' {
				return nil, fmt.Errorf("expected = after key at offset %d", afterKey)
			}
			valueStart = skipSpace(data, valueStart+1)

			path := append(slices.Clone(l.sections[current].path), parts...)
			l.keyValues = append(l.keyValues, keyValueSpan{path: path, section: current, valueStart: valueStart})
			pending = len(l.keyValues) - 1

			if comment != nil {
				finish(int(comment.Raw.Offset))
				kv := &l.keyValues[len(l.keyValues)-1]
				kv.end = int(comment.Raw.Offset + comment.Raw.Length)
				l.sections[current].insertAt = kv.end
			}
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	finish(len(data))
	return l, nil
}

func keyParts(e *unstable.Node) (parts []string, last *unstable.Node) {
	it := e.Key()
	for it.Next() {
		last = it.Node()
		parts = append(parts, string(last.Data))
	}
	return parts, last
}

// trailingComment returns the comment sharing the expression's line, if any
func trailingComment(e *unstable.Node) *unstable.Node {
	next := e.Next()
	if next != nil && next.Kind == unstable.Comment {
		return next
	}
	return nil
}

func skipSpace(data []byte, i int) int {
	for i < len(data) && (data[i] == ' ' || data[i] == '\t') {
		i++
	}
	return i
}

// spliceSet returns data with the key at parts set to value. Only the bytes
// of that key change: an existing value is replaced where it stands, a new
// key goes at the end of its table, and a missing table is appended.
func spliceSet(data []byte, parts []string, value any) ([]byte, error) {
	literal, err := encodeValue(value)
	if err != nil {
		return nil, err
	}

	l, err := scanLayout(data)
	if err != nil {
		return nil, err
	}

	for _, kv := range l.keyValues {
		if slices.Equal(kv.path, parts) {
			return replaceRange(data, kv.valueStart, kv.valueEnd, literal), nil
		}
	}

	parent, name := parts[:len(parts)-1], parts[len(parts)-1]
	line := encodeKey(name) + " = " + literal

	for _, s := range l.sections {
		if s.array || !slices.Equal(s.path, parent) {
			continue
		}
		if s.insertAt < 0 {
			if len(data) > 0 {
				line += "\n"
			}
			return replaceRange(data, 0, 0, line+"\n"), nil
		}
		return replaceRange(data, s.insertAt, s.insertAt, "\n"+line), nil
	}

	var buf bytes.Buffer
	buf.Write(data)
	if buf.Len() > 0 {
		if !bytes.HasSuffix(data, []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	fmt.Fprintf(&buf, "[%s]\n%s\n", encodeKeyPath(parent), line)
	return buf.Bytes(), nil
}

func replaceRange(data []byte, from, to int, text string) []byte {
	out := make([]byte, 0, len(data)-(to-from)+len(text))
	out = append(out, data[:from]...)
	out = append(out, text...)
	return append(out, data[to:]...)
}

// encodeValue renders value as an inline TOML literal
func encodeValue(value any) (string, error) {
	data, err := toml.Marshal(map[string]any{"v": value})
	if err != nil {
		return "", err
	}
	literal, ok := strings.CutPrefix(strings.TrimRight(string(data), "\n"), "v = ")
	if !ok || strings.Contains(literal, "\n") {
		return "", errNotInPlace
	}
	return literal, nil
}

func encodeKey(segment string) string {
	if bareKey.MatchString(segment) {
		return segment
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(segment) + `"`
}

func encodeKeyPath(parts []string) string {
	encoded := make([]string, len(parts))
	for i, part := range parts {
		encoded[i] = encodeKey(part)
	}
	return strings.Join(encoded, ".")
}
