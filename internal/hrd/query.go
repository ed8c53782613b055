package hrd

// concat joins a prefix and a name with an underscore, skipping the
// separator when either side is empty. Every fullname in this package
// is produced through this single helper so the joining rule never
// diverges between enums, bitsets, values, bitfields and delems.
func concat(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "_" + b
	}
}

// FindEnum returns the non-inline enum with the given name. Inline
// enums are registered in the database (so merge-by-name and
// cross-reference during preparation still work) but are never
// resolvable here: an inline enum is anonymous at its use site by
// definition, so a consumer asking for it by name gets "not found"
// rather than a resolved reference.
func (db *DB) FindEnum(name string) (*Enum, bool) {
	for _, e := range db.Enums {
		if e.Name == name && !e.IsInline {
			return e, true
		}
	}
	return nil, false
}

// FindBitset is the Bitset analogue of FindEnum.
func (db *DB) FindBitset(name string) (*Bitset, bool) {
	for _, b := range db.Bitsets {
		if b.Name == name && !b.IsInline {
			return b, true
		}
	}
	return nil, false
}

// FindDomain returns the domain with the given name.
func (db *DB) FindDomain(name string) (*Domain, bool) {
	for _, d := range db.Domains {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// findEnumRaw scans for an enum by name including inline ones. It
// backs merge-by-name at parse time and type-name resolution during
// preparation, both of which must see inline enums that FindEnum
// deliberately hides.
func (db *DB) findEnumRaw(name string) *Enum {
	for _, e := range db.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (db *DB) findBitsetRaw(name string) *Bitset {
	for _, b := range db.Bitsets {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func (db *DB) findGroup(name string) *Group {
	for _, g := range db.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}
