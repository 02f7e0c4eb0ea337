package fixtures

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// encodeBody writes a JSON value on one line with ", " and ": " separators
// and every non-ASCII character escaped. Object keys keep the order of the
// fixture file; a repeated key keeps its first position and its last value.
func encodeBody(value gjson.Result) []byte {
	var b strings.Builder
	writeValue(&b, value)
	return []byte(b.String())
}

func writeValue(b *strings.Builder, value gjson.Result) {
	switch {
	case value.IsObject():
		writeObject(b, value)
	case value.IsArray():
		b.WriteByte('[')
		for i, item := range value.Array() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, item)
		}
		b.WriteByte(']')
	case value.Type == gjson.String:
		writeString(b, value.Str)
	case value.Type == gjson.Number:
		b.WriteString(numberText(value))
	case value.Type == gjson.True:
		b.WriteString("true")
	case value.Type == gjson.False:
		b.WriteString("false")
	default:
		b.WriteString("null")
	}
}

func writeObject(b *strings.Builder, value gjson.Result) {
	var keys []string
	values := map[string]gjson.Result{}
	value.ForEach(func(key, v gjson.Result) bool {
		if _, seen := values[key.Str]; !seen {
			keys = append(keys, key.Str)
		}
		values[key.Str] = v
		return true
	})

	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		writeString(b, key)
		b.WriteString(": ")
		writeValue(b, values[key])
	}
	b.WriteByte('}')
}

func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r >= ' ' && r <= '~':
				b.WriteRune(r)
			case r > 0xFFFF:
				r -= 0x10000
				fmt.Fprintf(b, `\u%04x\u%04x`, 0xD800+(r>>10), 0xDC00+(r&0x3FF))
			default:
				fmt.Fprintf(b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('"')
}

// numberText keeps integers as written and prints every other number in its
// shortest round-trip form: fixed notation with a trailing ".0" when the
// decimal exponent is in [-4, 16), scientific notation otherwise.
func numberText(value gjson.Result) string {
	raw := value.Raw
	if !strings.ContainsAny(raw, ".eE") {
		return raw
	}

	f := value.Float()
	scientific := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(scientific[strings.IndexByte(scientific, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return scientific
	}

	fixed := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(fixed, ".") {
		fixed += ".0"
	}
	return fixed
}
