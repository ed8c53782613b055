package hrd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// docTags are accepted and ignored everywhere they're permitted.
func isDocTag(name string) bool {
	return name == "brief" || name == "doc"
}

func pos(path string, line int) string {
	return fmt.Sprintf("%s:%d", path, line)
}

func (db *DB) fail(kind Kind, path string, line int, format string, args ...interface{}) {
	db.estatus = true
	msg := fmt.Sprintf(format, args...)
	db.logger.Error().
		Str("kind", kind.String()).
		Str("file", path).
		Int("line", line).
		Msg(msg)
}

// ParseFile loads one HRD document, recursing into <import> elements.
// It is idempotent per path: a file already in the loaded-file set is
// skipped, which both short-circuits repeated imports and breaks
// import cycles (including diamonds).
func (db *DB) ParseFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if db.files[abs] {
		return nil
	}
	db.files[abs] = true

	data, err := os.ReadFile(path)
	if err != nil {
		db.fail(KindIoOpen, path, 0, "open %s: %v", path, err)
		return nil
	}

	root, err := parseDocument(bytesReader(data))
	if err != nil {
		db.fail(KindSyntax, path, 0, "parse xml: %v", err)
		return nil
	}
	if root == nil {
		return nil
	}

	for _, child := range root.Children {
		if err := db.parseTopLevel(path, child); err != nil {
			return err
		}
	}
	return nil
}

// parseTopLevel dispatches one child of <database> (or of another
// container that permits the same tag set) to its handler.
func (db *DB) parseTopLevel(path string, el *Element) error {
	switch el.Name {
	case "enum":
		return db.parseEnum(path, el)
	case "bitset":
		return db.parseBitset(path, el)
	case "group":
		return db.parseGroup(path, el)
	case "domain":
		return db.parseDomain(path, el)
	case "import":
		return db.parseImport(path, el)
	default:
		if isDocTag(el.Name) {
			return nil
		}
		db.fail(KindSyntax, path, el.Line, "unknown top-level tag <%s>", el.Name)
		return nil
	}
}

func (db *DB) parseImport(path string, el *Element) error {
	file, ok := attrString(el, "file")
	if !ok || file == "" {
		db.fail(KindSchema, path, el.Line, "<import> missing file attribute")
		return nil
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(filepath.Dir(path), file)
	}
	return db.ParseFile(file)
}

func readVI(el *Element) VariantInfo {
	prefix, _ := attrString(el, "prefix")
	varset, _ := attrString(el, "varset")
	variants, _ := attrString(el, "variants")
	return VariantInfo{PrefixName: prefix, VarsetName: varset, VariantsExpr: variants}
}

func viMatch(a, b VariantInfo) bool {
	return a.PrefixName == b.PrefixName && a.VarsetName == b.VarsetName && a.VariantsExpr == b.VariantsExpr
}

// parseEnum handles <enum>. A same-named enum already present must
// agree on {prefix, varset, variants, isinline, bare}; on mismatch the
// first declaration remains authoritative and estatus latches. On
// agreement the new <value> children are appended to the existing
// enum.
func (db *DB) parseEnum(path string, el *Element) error {
	name, ok := attrString(el, "name")
	if !ok || name == "" {
		db.fail(KindSchema, path, el.Line, "<enum> without a name")
		return nil
	}
	bare, err := attrBool(el, "bare", false)
	if err != nil {
		db.fail(KindSyntax, path, el.Line, "enum %q: %v", name, err)
	}
	isinline, err := attrBool(el, "inline", false)
	if err != nil {
		db.fail(KindSyntax, path, el.Line, "enum %q: %v", name, err)
	}
	vi := readVI(el)

	values, err := db.parseValues(path, el)
	if err != nil {
		return err
	}

	if existing := db.findEnumRaw(name); existing != nil {
		if !viMatch(existing.VI, vi) || existing.IsInline != isinline || existing.Bare != bare {
			db.fail(KindSchema, path, el.Line, "enum %q redeclared with mismatched attributes", name)
			return nil
		}
		existing.Values = append(existing.Values, values...)
		return nil
	}

	db.Enums = append(db.Enums, &Enum{
		Name:     name,
		IsInline: isinline,
		Bare:     bare,
		VI:       vi,
		Values:   values,
	})
	return nil
}

func (db *DB) parseValues(path string, el *Element) ([]*Value, error) {
	var values []*Value
	for _, child := range el.Children {
		switch child.Name {
		case "value":
			v, err := db.parseValue(path, child)
			if err != nil {
				return nil, err
			}
			if v != nil {
				values = append(values, v)
			}
		default:
			if isDocTag(child.Name) {
				continue
			}
			db.fail(KindSyntax, path, child.Line, "unexpected tag <%s> inside enum", child.Name)
		}
	}
	return values, nil
}

func (db *DB) parseValue(path string, el *Element) (*Value, error) {
	name, ok := attrString(el, "name")
	if !ok || name == "" {
		db.fail(KindSchema, path, el.Line, "<value> without a name")
		return nil, nil
	}
	v := &Value{Name: name, VI: readVI(el)}
	if raw, present := attrString(el, "value"); present {
		n, err := decodeNumber(raw)
		if err != nil {
			db.fail(KindSyntax, path, el.Line, "value %q: %v", name, err)
			return v, nil
		}
		v.Value = n
		v.ValValid = true
	}
	return v, nil
}

// parseBitset handles <bitset>, the Bitfield analogue of parseEnum.
func (db *DB) parseBitset(path string, el *Element) error {
	name, ok := attrString(el, "name")
	if !ok || name == "" {
		db.fail(KindSchema, path, el.Line, "<bitset> without a name")
		return nil
	}
	bare, err := attrBool(el, "bare", false)
	if err != nil {
		db.fail(KindSyntax, path, el.Line, "bitset %q: %v", name, err)
	}
	isinline, err := attrBool(el, "inline", false)
	if err != nil {
		db.fail(KindSyntax, path, el.Line, "bitset %q: %v", name, err)
	}
	vi := readVI(el)

	bitfields, err := db.parseBitfields(path, el)
	if err != nil {
		return err
	}

	if existing := db.findBitsetRaw(name); existing != nil {
		if !viMatch(existing.VI, vi) || existing.IsInline != isinline || existing.Bare != bare {
			db.fail(KindSchema, path, el.Line, "bitset %q redeclared with mismatched attributes", name)
			return nil
		}
		existing.Bitfields = append(existing.Bitfields, bitfields...)
		return nil
	}

	db.Bitsets = append(db.Bitsets, &Bitset{
		Name:      name,
		IsInline:  isinline,
		Bare:      bare,
		VI:        vi,
		Bitfields: bitfields,
	})
	return nil
}

func (db *DB) parseBitfields(path string, el *Element) ([]*Bitfield, error) {
	var bitfields []*Bitfield
	for _, child := range el.Children {
		switch child.Name {
		case "bitfield":
			bf, err := db.parseBitfield(path, child)
			if err != nil {
				return nil, err
			}
			if bf != nil {
				bitfields = append(bitfields, bf)
			}
		default:
			if isDocTag(child.Name) {
				continue
			}
			db.fail(KindSyntax, path, child.Line, "unexpected tag <%s> inside bitset", child.Name)
		}
	}
	return bitfields, nil
}

// parseBitfield handles <bitfield>. It may itself nest <value> and
// <bitfield> children directly (without a wrapping <enum>/<bitset>);
// these feed straight into the resulting TypeInfo's Vals/Bitfields and
// are prepared alongside type names resolved to an inline definition.
func (db *DB) parseBitfield(path string, el *Element) (*Bitfield, error) {
	name, ok := attrString(el, "name")
	if !ok || name == "" {
		db.fail(KindSchema, path, el.Line, "<bitfield> without a name")
		return nil, nil
	}
	lowRaw, lowPresent, err := attrNumber(el, "low")
	if err != nil {
		db.fail(KindSyntax, path, el.Line, "bitfield %q: %v", name, err)
		return nil, nil
	}
	highRaw, highPresent, err := attrNumber(el, "high")
	if err != nil {
		db.fail(KindSyntax, path, el.Line, "bitfield %q: %v", name, err)
		return nil, nil
	}
	if !lowPresent || !highPresent {
		db.fail(KindSchema, path, el.Line, "bitfield %q missing low/high", name)
		return nil, nil
	}
	if lowRaw > 63 || highRaw > 63 || lowRaw > highRaw {
		db.fail(KindSchema, path, el.Line, "bitfield %q has invalid low=%d high=%d", name, lowRaw, highRaw)
		return nil, nil
	}

	bf := &Bitfield{Name: name, Low: uint8(lowRaw), High: uint8(highRaw), VI: readVI(el)}

	if shrRaw, present, err := attrNumber(el, "shr"); err != nil {
		db.fail(KindSyntax, path, el.Line, "bitfield %q: %v", name, err)
	} else if present {
		bf.Type.Shr = uint8(shrRaw)
	}
	if typeAttr, present := attrString(el, "type"); present {
		bf.Type.TypeNames = splitTypeNames(typeAttr)
	}

	for _, child := range el.Children {
		switch child.Name {
		case "value":
			v, err := db.parseValue(path, child)
			if err != nil {
				return nil, err
			}
			if v != nil {
				bf.Type.Vals = append(bf.Type.Vals, v)
			}
		case "bitfield":
			nested, err := db.parseBitfield(path, child)
			if err != nil {
				return nil, err
			}
			if nested != nil {
				bf.Type.Bitfields = append(bf.Type.Bitfields, nested)
			}
		default:
			if isDocTag(child.Name) {
				continue
			}
			db.fail(KindSyntax, path, child.Line, "unexpected tag <%s> inside bitfield", child.Name)
		}
	}
	return bf, nil
}

// parseGroup handles <group>; merge is by name alone, no attribute
// check is required.
func (db *DB) parseGroup(path string, el *Element) error {
	name, ok := attrString(el, "name")
	if !ok || name == "" {
		db.fail(KindSchema, path, el.Line, "<group> without a name")
		return nil
	}
	subelems, err := db.parseDelems(path, el)
	if err != nil {
		return err
	}
	if existing := db.findGroup(name); existing != nil {
		existing.Subelems = append(existing.Subelems, subelems...)
		return nil
	}
	db.Groups = append(db.Groups, &Group{Name: name, Subelems: subelems})
	return nil
}

// parseDomain handles <domain>. On merge, prefixes/varset/variants/
// width/bare must agree; size may be adopted if the existing
// declaration left it zero.
func (db *DB) parseDomain(path string, el *Element) error {
	name, ok := attrString(el, "name")
	if !ok || name == "" {
		db.fail(KindSchema, path, el.Line, "<domain> without a name")
		return nil
	}
	width := uint8(8)
	if w, present, err := attrNumber(el, "width"); err != nil {
		db.fail(KindSyntax, path, el.Line, "domain %q: %v", name, err)
	} else if present {
		width = uint8(w)
	}
	bare, err := attrBool(el, "bare", false)
	if err != nil {
		db.fail(KindSyntax, path, el.Line, "domain %q: %v", name, err)
	}
	var size uint64
	var hasSize bool
	if s, present, err := attrNumber(el, "size"); err != nil {
		db.fail(KindSyntax, path, el.Line, "domain %q: %v", name, err)
	} else if present {
		size, hasSize = s, true
	}
	vi := readVI(el)

	subelems, err := db.parseDelems(path, el)
	if err != nil {
		return err
	}

	if existing := db.findDomainRaw(name); existing != nil {
		if !viMatch(existing.VI, vi) || existing.Width != width || existing.Bare != bare {
			db.fail(KindSchema, path, el.Line, "domain %q redeclared with mismatched attributes", name)
			return nil
		}
		if !existing.HasSize && hasSize {
			existing.Size = size
			existing.HasSize = true
		}
		existing.Subelems = append(existing.Subelems, subelems...)
		return nil
	}

	db.Domains = append(db.Domains, &Domain{
		Name:     name,
		Size:     size,
		HasSize:  hasSize,
		Width:    width,
		Bare:     bare,
		VI:       vi,
		Subelems: subelems,
	})
	return nil
}

func (db *DB) findDomainRaw(name string) *Domain {
	for _, d := range db.Domains {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}
