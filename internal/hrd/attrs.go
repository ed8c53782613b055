package hrd

import (
	"strconv"
	"strings"
)

// attrString returns the raw text of an attribute and whether it was
// present at all.
func attrString(el *Element, name string) (string, bool) {
	v, ok := el.Attrs[name]
	return v, ok
}

// decodeBool implements the §4.D boolean literal grammar: {"yes","1"}
// is true, {"no","0"} is false, anything else is a syntax error.
func decodeBool(s string) (bool, error) {
	switch s {
	case "yes", "1":
		return true, nil
	case "no", "0":
		return false, nil
	default:
		return false, newError(KindSyntax, "", "invalid boolean literal: "+s)
	}
}

// attrBool reads a boolean attribute, defaulting to def when absent.
func attrBool(el *Element, name string, def bool) (bool, error) {
	v, ok := el.Attrs[name]
	if !ok {
		return def, nil
	}
	return decodeBool(v)
}

// decodeNumber implements the §4.D numeric literal grammar: hex when
// the literal contains 'x' or 'X', decimal otherwise, both as unsigned
// 64-bit values. Trailing garbage is a syntax error because
// strconv.ParseUint rejects any non-digit character in its input.
func decodeNumber(s string) (uint64, error) {
	if strings.ContainsAny(s, "xX") {
		trimmed := s
		for _, prefix := range []string{"0x", "0X", "x", "X"} {
			if strings.HasPrefix(trimmed, prefix) {
				trimmed = trimmed[len(prefix):]
				break
			}
		}
		v, err := strconv.ParseUint(trimmed, 16, 64)
		if err != nil {
			return 0, newError(KindSyntax, "", "invalid hex literal: "+s)
		}
		return v, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, newError(KindSyntax, "", "invalid decimal literal: "+s)
	}
	return v, nil
}

// attrNumber reads a numeric attribute, reporting whether it was
// present.
func attrNumber(el *Element, name string) (uint64, bool, error) {
	v, ok := el.Attrs[name]
	if !ok {
		return 0, false, nil
	}
	n, err := decodeNumber(v)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// splitTypeNames splits a space-separated "type" attribute value into
// individual declared type names.
func splitTypeNames(s string) []string {
	return strings.Fields(s)
}
