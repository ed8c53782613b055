package hrd

// regWidths maps a <regN> tag name to its bit width.
var regWidths = map[string]uint8{
	"reg8":  8,
	"reg16": 16,
	"reg32": 32,
	"reg64": 64,
}

// parseDelems parses the domain-element children of a <group>,
// <domain>, <array> or <stripe>: reg8/16/32/64 (ElemReg), array
// (ElemArray), stripe (ElemStripe) and use-group (ElemUseGroup).
func (db *DB) parseDelems(path string, el *Element) ([]*DomainElement, error) {
	var out []*DomainElement
	for _, child := range el.Children {
		if isDocTag(child.Name) {
			continue
		}
		de, err := db.parseDelem(path, child)
		if err != nil {
			return nil, err
		}
		if de != nil {
			out = append(out, de)
		}
	}
	return out, nil
}

func (db *DB) parseDelem(path string, el *Element) (*DomainElement, error) {
	if width, ok := regWidths[el.Name]; ok {
		return db.parseReg(path, el, width)
	}
	switch el.Name {
	case "array":
		return db.parseArrayOrStripe(path, el, ElemArray)
	case "stripe":
		return db.parseArrayOrStripe(path, el, ElemStripe)
	case "use-group":
		return db.parseUseGroup(path, el)
	default:
		db.fail(KindSyntax, path, el.Line, "unexpected tag <%s> inside domain element container", el.Name)
		return nil, nil
	}
}

func delemName(db *DB, path string, el *Element) (string, bool) {
	name, ok := attrString(el, "name")
	if !ok || name == "" {
		db.fail(KindSchema, path, el.Line, "<%s> without a name", el.Name)
		return "", false
	}
	return name, true
}

func delemOffset(db *DB, path string, el *Element) uint64 {
	off, _, err := attrNumber(el, "offset")
	if err != nil {
		db.fail(KindSyntax, path, el.Line, "<%s>: %v", el.Name, err)
	}
	return off
}

func delemAccess(db *DB, path string, el *Element) Access {
	raw, present := attrString(el, "access")
	if !present {
		return AccessRW
	}
	switch raw {
	case "rw":
		return AccessRW
	case "r":
		return AccessR
	case "w":
		return AccessW
	default:
		db.fail(KindSchema, path, el.Line, "invalid access %q", raw)
		return AccessRW
	}
}

func (db *DB) parseReg(path string, el *Element, width uint8) (*DomainElement, error) {
	name, ok := delemName(db, path, el)
	if !ok {
		return nil, nil
	}
	de := &DomainElement{
		Kind:   ElemReg,
		Name:   name,
		Offset: delemOffset(db, path, el),
		Width:  width,
		Length: 1,
		Access: delemAccess(db, path, el),
		VI:     readVI(el),
	}
	if l, present, err := attrNumber(el, "length"); err != nil {
		db.fail(KindSyntax, path, el.Line, "reg %q: %v", name, err)
	} else if present {
		de.Length = l
	}
	if s, present, err := attrNumber(el, "stride"); err != nil {
		db.fail(KindSyntax, path, el.Line, "reg %q: %v", name, err)
	} else if present {
		de.Stride = s
	}
	if typeAttr, present := attrString(el, "type"); present {
		de.Type.TypeNames = splitTypeNames(typeAttr)
	}
	for _, child := range el.Children {
		switch child.Name {
		case "value":
			v, err := db.parseValue(path, child)
			if err != nil {
				return nil, err
			}
			if v != nil {
				de.Type.Vals = append(de.Type.Vals, v)
			}
		case "bitfield":
			bf, err := db.parseBitfield(path, child)
			if err != nil {
				return nil, err
			}
			if bf != nil {
				de.Type.Bitfields = append(de.Type.Bitfields, bf)
			}
		default:
			if isDocTag(child.Name) {
				continue
			}
			db.fail(KindSyntax, path, child.Line, "unexpected tag <%s> inside %s", child.Name, el.Name)
		}
	}
	return de, nil
}

func (db *DB) parseArrayOrStripe(path string, el *Element, kind ElemKind) (*DomainElement, error) {
	name, ok := delemName(db, path, el)
	if !ok {
		return nil, nil
	}
	de := &DomainElement{
		Kind:   kind,
		Name:   name,
		Offset: delemOffset(db, path, el),
		Length: 1,
		VI:     readVI(el),
	}
	if l, present, err := attrNumber(el, "length"); err != nil {
		db.fail(KindSyntax, path, el.Line, "%s %q: %v", el.Name, name, err)
	} else if present {
		de.Length = l
	}
	if s, present, err := attrNumber(el, "stride"); err != nil {
		db.fail(KindSyntax, path, el.Line, "%s %q: %v", el.Name, name, err)
	} else if present {
		de.Stride = s
	}
	subelems, err := db.parseDelems(path, el)
	if err != nil {
		return nil, err
	}
	de.Subelems = subelems
	return de, nil
}

// parseUseGroup records a <use-group> reference by target group name;
// the group's subelements are inlined into this slot during
// preparation, which is also where the element is reclassified and
// its own Name is cleared so its fullname becomes transparent.
func (db *DB) parseUseGroup(path string, el *Element) (*DomainElement, error) {
	group, ok := attrString(el, "name")
	if !ok || group == "" {
		db.fail(KindSchema, path, el.Line, "<use-group> without a name attribute")
		return nil, nil
	}
	de := &DomainElement{
		Kind:   ElemUseGroup,
		Name:   group,
		Offset: delemOffset(db, path, el),
		Length: 1,
		VI:     readVI(el),
	}
	return de, nil
}
