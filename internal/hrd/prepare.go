package hrd

import (
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
)

// varCtx carries the variant-resolution state inherited down the tree:
// the live varsets seen so far keyed by varset name, the currently
// selected prefix enum, and whether an ancestor's restriction already
// killed this branch. A fresh varCtx must never share VarSet.Variants
// backing arrays with its parent, so every descent clones them.
type varCtx struct {
	varsets    map[string]*VarSet
	prefixEnum *Enum
	dead       bool
}

func rootVarCtx() varCtx {
	return varCtx{varsets: map[string]*VarSet{}}
}

func cloneVarsets(in map[string]*VarSet) map[string]*VarSet {
	out := make(map[string]*VarSet, len(in))
	for k, v := range in {
		out[k] = &VarSet{EnumRef: v.EnumRef, Variants: append([]uint8(nil), v.Variants...)}
	}
	return out
}

// prepareVarInfo resolves one node's VariantInfo against its
// inherited context and returns the context its children inherit.
// A varset is tracked as a byte per value index in its enum, keyed by
// the enum's own name: bit slotInheritable survives only while no
// ancestor has excluded that index, bit slotSelected is set the first
// time some node actually names it in a variants= expression. A slot
// is live only once both bits are set (slotLive), which is what
// restricts the variant space without needing to rescan ancestors on
// every node.
//
// The varset list is cloned rather than literally shallow-copied: two
// sibling branches restricting the same varset in different, mutually
// exclusive ways must not see each other's restriction, which a
// shared backing array would cause.
func (db *DB) prepareVarInfo(parent varCtx, vi *VariantInfo, who string) varCtx {
	ctx := varCtx{varsets: cloneVarsets(parent.varsets), prefixEnum: parent.prefixEnum, dead: parent.dead}

	if vi.PrefixName == "none" {
		ctx.prefixEnum = nil
	} else if vi.PrefixName != "" {
		// Resolution failure is tolerated: the prefix simply stays
		// whatever the parent already had.
		if e := db.findEnumRaw(vi.PrefixName); e != nil {
			ctx.prefixEnum = e
		}
	}

	// The active varset is the one named explicitly, or failing that
	// the already-resolved prefix enum.
	var active *Enum
	if vi.VarsetName != "" {
		active = db.findEnumRaw(vi.VarsetName)
		if active == nil {
			db.fail(KindReference, "", 0, "%s: unknown varset enum %q", who, vi.VarsetName)
		}
	} else {
		active = ctx.prefixEnum
	}

	if vi.VariantsExpr != "" {
		if active == nil {
			db.fail(KindReference, "", 0, "%s: variants expression without a varset", who)
		} else {
			vs, ok := ctx.varsets[active.Name]
			if !ok {
				vs = &VarSet{EnumRef: active, Variants: make([]uint8, len(active.Values))}
				for i := range vs.Variants {
					vs.Variants[i] = slotInheritable
				}
				ctx.varsets[active.Name] = vs
			}
			selected, err := parseVariantsExpr(vi.VariantsExpr, active)
			if err != nil {
				db.fail(KindSyntax, "", 0, "%s: %v", who, err)
			} else {
				sel := make(map[int]bool, len(selected))
				for _, i := range selected {
					sel[i] = true
				}
				anyLive := false
				for i := range vs.Variants {
					if sel[i] {
						if vs.Variants[i]&slotInheritable != 0 {
							vs.Variants[i] |= slotSelected
							anyLive = true
						}
					} else {
						vs.Variants[i] &^= slotInheritable | slotSelected
					}
				}
				if !anyLive {
					ctx.dead = true
				}
			}
		}
	}

	vi.ResolvedVarsets = vi.ResolvedVarsets[:0]
	for _, vs := range ctx.varsets {
		vi.ResolvedVarsets = append(vi.ResolvedVarsets, vs)
	}
	vi.ResolvedPrefixEnum = ctx.prefixEnum
	vi.Dead = ctx.dead
	vi.EffectivePrefix = effectivePrefix(ctx)
	return ctx
}

// effectivePrefix picks the name backing a bare/prefixed fullname: the
// live slot of whichever tracked varset restricts the prefix enum, or
// the prefix enum's first value when nothing restricts it at all.
func effectivePrefix(ctx varCtx) string {
	if ctx.prefixEnum == nil {
		return ""
	}
	for _, vs := range ctx.varsets {
		if vs.EnumRef != ctx.prefixEnum {
			continue
		}
		for i, bits := range vs.Variants {
			if bits&slotLive == slotLive && i < len(ctx.prefixEnum.Values) {
				return ctx.prefixEnum.Values[i].Name
			}
		}
	}
	if len(ctx.prefixEnum.Values) > 0 {
		return ctx.prefixEnum.Values[0].Name
	}
	return ""
}

// parseVariantsExpr parses a space-separated list of terms against an
// enum's value names: a bare NAME selects one index; NAME1:NAME2 is an
// exclusive-hi range defaulting lo=0/hi=len(values); NAME1-NAME2 is the
// inclusive-hi counterpart defaulting lo=0/hi=len(values)-1. Either
// side of a range may be omitted to take its default.
func parseVariantsExpr(expr string, enum *Enum) ([]int, error) {
	var indices []int
	if expr == "" {
		return indices, nil
	}
	for _, term := range strings.Fields(expr) {
		if term == "" {
			continue
		}
		sep := byte(0)
		sepAt := -1
		for i := 0; i < len(term); i++ {
			if term[i] == ':' || term[i] == '-' {
				sep, sepAt = term[i], i
				break
			}
		}
		if sepAt < 0 {
			idx, err := indexOfValue(enum, term)
			if err != nil {
				return nil, err
			}
			indices = append(indices, idx)
			continue
		}

		loName := strings.TrimSpace(term[:sepAt])
		hiName := strings.TrimSpace(term[sepAt+1:])
		lo, hi := 0, len(enum.Values)
		var err error
		if loName != "" {
			if lo, err = indexOfValue(enum, loName); err != nil {
				return nil, err
			}
		}
		if sep == ':' {
			if hiName != "" {
				if hi, err = indexOfValue(enum, hiName); err != nil {
					return nil, err
				}
			}
			for i := lo; i < hi; i++ {
				indices = append(indices, i)
			}
		} else {
			hi = len(enum.Values) - 1
			if hiName != "" {
				if hi, err = indexOfValue(enum, hiName); err != nil {
					return nil, err
				}
			}
			for i := lo; i <= hi; i++ {
				indices = append(indices, i)
			}
		}
	}
	return indices, nil
}

func indexOfValue(enum *Enum, name string) (int, error) {
	for i, v := range enum.Values {
		if v.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown variant name %q in enum %q", name, enum.Name)
}

// PrepareDB runs the preparation pass over every enum, bitset and
// domain in dependency order: enums before bitsets (bitfield type
// names may resolve to either), both before domains (register types
// resolve the same way, and use-group inlining needs finished groups).
func PrepareDB(db *DB) {
	for _, e := range db.Enums {
		db.prepareEnum(e)
	}
	for _, b := range db.Bitsets {
		db.prepareBitset(b)
	}
	for _, d := range db.Domains {
		db.prepareDomain(d)
	}
}

func (db *DB) prepareEnum(enum *Enum) {
	if enum.Prepared {
		return
	}
	enum.Prepared = true
	ctx := db.prepareVarInfo(rootVarCtx(), &enum.VI, enum.Name)
	if enum.VI.Dead {
		return
	}
	if enum.Bare {
		enum.Fullname = enum.VI.EffectivePrefix
	} else {
		enum.Fullname = concat(enum.VI.EffectivePrefix, enum.Name)
	}
	for _, v := range enum.Values {
		db.prepareVarInfo(ctx, &v.VI, enum.Name)
		v.Fullname = concat(enum.Fullname, v.Name)
	}
}

func (db *DB) prepareBitset(bitset *Bitset) {
	if bitset.Prepared {
		return
	}
	bitset.Prepared = true
	ctx := db.prepareVarInfo(rootVarCtx(), &bitset.VI, bitset.Name)
	if bitset.VI.Dead {
		return
	}
	if bitset.Bare {
		bitset.Fullname = bitset.VI.EffectivePrefix
	} else {
		bitset.Fullname = concat(bitset.VI.EffectivePrefix, bitset.Name)
	}
	for _, bf := range bitset.Bitfields {
		db.prepareVarInfo(ctx, &bf.VI, bitset.Name)
		db.prepareBitfield(bitset.Fullname, bf)
	}
}

// prepareBitfield sets a bitfield's fullname (unless already assigned,
// which happens when it was deep-copied out of an inline type),
// computes its mask, and resolves its type information.
func (db *DB) prepareBitfield(parentFullname string, bf *Bitfield) {
	if bf.Fullname == "" {
		bf.Fullname = concat(parentFullname, bf.Name)
	}
	// high and low are both at most 63; promoting to uint before the
	// +1 avoids wrapping a uint8 at high==63, and the runtime-defined
	// zero result of shifting by >=64 lets high==63 fall out of the
	// same formula as every other width without a branch.
	shift := uint(bf.High) + 1
	bf.Mask = (uint64(1) << shift) - (uint64(1) << uint(bf.Low))
	db.prepareTypeInfo(bf.Fullname, &bf.Type)
}

// prepareTypeInfo resolves declared type names against the database
// and recursively prepares any nested values/bitfields, whether they
// arrived as literal children or as a deep copy of an inline type.
func (db *DB) prepareTypeInfo(parentFullname string, ti *TypeInfo) {
	for _, tn := range ti.TypeNames {
		if enum := db.findEnumRaw(tn); enum != nil {
			db.prepareEnum(enum)
			rt := ResolvedType{Name: tn, Kind: TypeEnum, Enum: enum}
			if enum.IsInline {
				rt.Kind = TypeInlineEnum
				var vals []*Value
				if err := copier.CopyWithOption(&vals, &enum.Values, copier.Option{DeepCopy: true}); err != nil {
					db.fail(KindSchema, "", 0, "copy inline enum %q: %v", tn, err)
				} else {
					ti.Vals = append(ti.Vals, vals...)
				}
			}
			ti.Types = append(ti.Types, rt)
			continue
		}
		if bitset := db.findBitsetRaw(tn); bitset != nil {
			db.prepareBitset(bitset)
			rt := ResolvedType{Name: tn, Kind: TypeBitset, Bitset: bitset}
			if bitset.IsInline {
				rt.Kind = TypeInlineBitset
				var bfs []*Bitfield
				if err := copier.CopyWithOption(&bfs, &bitset.Bitfields, copier.Option{DeepCopy: true}); err != nil {
					db.fail(KindSchema, "", 0, "copy inline bitset %q: %v", tn, err)
				} else {
					ti.Bitfields = append(ti.Bitfields, bfs...)
				}
			}
			ti.Types = append(ti.Types, rt)
			continue
		}
		// Not an error: the name may refer to a primitive type.
		ti.Types = append(ti.Types, ResolvedType{Name: tn, Kind: TypeOther})
	}
	for _, bf := range ti.Bitfields {
		db.prepareBitfield(parentFullname, bf)
	}
	for _, v := range ti.Vals {
		if v.Fullname == "" {
			v.Fullname = concat(parentFullname, v.Name)
		}
	}
}

func (db *DB) prepareDomain(domain *Domain) {
	ctx := db.prepareVarInfo(rootVarCtx(), &domain.VI, domain.Name)
	if domain.VI.Dead {
		return
	}
	domain.Fullname = domain.Name
	prefix := domain.Name
	if domain.Bare {
		prefix = ""
	}
	for _, de := range domain.Subelems {
		db.prepareDelem(ctx, prefix, domain.Width, de)
	}
}

// prepareDelem resolves one domain element. A use-group reference is
// rewritten in place before its fullname is computed: the group is
// looked up, deep-copied, the element is reclassified as a stripe with
// its Name cleared and Length fixed at 1, and only then does the usual
// concat(prefix, Name) run — against the now-empty Name, which is what
// makes use-group inlining transparent to the naming scheme.
func (db *DB) prepareDelem(ctx varCtx, prefix string, domainWidth uint8, de *DomainElement) {
	childCtx := db.prepareVarInfo(ctx, &de.VI, de.Name)
	if de.VI.Dead {
		return
	}

	if de.Kind == ElemUseGroup {
		group := db.findGroup(de.Name)
		if group == nil {
			db.fail(KindReference, "", 0, "unknown group %q", de.Name)
			de.Fullname = prefix
			return
		}
		var cloned []*DomainElement
		if err := copier.CopyWithOption(&cloned, &group.Subelems, copier.Option{DeepCopy: true}); err != nil {
			db.fail(KindSchema, "", 0, "copy group %q: %v", de.Name, err)
			return
		}
		de.Kind = ElemStripe
		de.Name = ""
		de.Length = 1
		de.Subelems = cloned
		de.Fullname = concat(prefix, de.Name)
		for _, sub := range de.Subelems {
			db.prepareDelem(childCtx, de.Fullname, domainWidth, sub)
		}
		return
	}

	de.Fullname = concat(prefix, de.Name)

	switch de.Kind {
	case ElemReg:
		if de.Length != 1 && de.Stride == 0 {
			if domainWidth == 0 || de.Width == 0 {
				db.fail(KindSchema, "", 0, "reg %q: cannot infer stride without width", de.Fullname)
			} else {
				de.Stride = uint64(de.Width) / uint64(domainWidth)
				if de.Stride == 0 {
					de.Stride = 1
				}
			}
		}
		db.prepareTypeInfo(de.Fullname, &de.Type)
	case ElemArray, ElemStripe:
		if de.Length != 1 && de.Stride == 0 {
			db.fail(KindSchema, "", 0, "%s %q: stride required when length != 1", elemKindName(de.Kind), de.Fullname)
		}
		for _, sub := range de.Subelems {
			db.prepareDelem(childCtx, de.Fullname, domainWidth, sub)
		}
	}
}

func elemKindName(k ElemKind) string {
	switch k {
	case ElemReg:
		return "reg"
	case ElemArray:
		return "array"
	case ElemStripe:
		return "stripe"
	case ElemUseGroup:
		return "use-group"
	default:
		return "delem"
	}
}
