// Package hrd implements the hardware-register-database loader and
// preparer: it ingests the declarative enum/bitset/group/domain
// documents, merges duplicate top-level definitions across files, and
// runs the preparation pass that resolves type references, expands
// use-group references, computes fully-qualified names and bit-masks,
// and prunes definitions that do not apply to any active variant.
package hrd

import "github.com/rs/zerolog"

// DB owns every enum, bitset, group and domain parsed from one or more
// HRD files, plus the set of already-loaded file paths used to break
// import cycles.
type DB struct {
	Enums   []*Enum
	Bitsets []*Bitset
	Groups  []*Group
	Domains []*Domain

	files   map[string]bool
	estatus bool
	logger  *zerolog.Logger
}

// NewDB creates an empty database. A nil logger falls back to
// zerolog.Nop().
func NewDB(logger *zerolog.Logger) *DB {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &DB{
		files:  make(map[string]bool),
		logger: logger,
	}
}

// Estatus reports whether any parse or preparation error has latched.
// It is monotonic: once set it stays set until the DB is discarded.
func (db *DB) Estatus() bool {
	return db.estatus
}

// VariantInfo is attached to every definition that can be pruned by
// variants. It is resolved in place by prepareVarInfo.
type VariantInfo struct {
	PrefixName   string
	VarsetName   string
	VariantsExpr string

	ResolvedPrefixEnum *Enum
	ResolvedVarsets    []*VarSet
	Dead               bool
	EffectivePrefix    string
}

// VarSet records, for one enum used as a variant selector, which of its
// values are active in a particular definition's context. Each slot is
// a two-bit mask: bit 0 (slotInheritable) marks a value as available to
// be selected at all; bit 1 (slotSelected) marks a value as chosen by a
// variants= expression. A slot is live only when both bits are set.
type VarSet struct {
	EnumRef  *Enum
	Variants []uint8
}

const (
	slotInheritable uint8 = 1 << 0
	slotSelected    uint8 = 1 << 1
	slotLive        uint8 = slotInheritable | slotSelected
)

// Enum is a named set of symbolic integer values. An inline enum is
// defined anonymously at a use site and is never returned by FindEnum.
// Bare suppresses the enum's own name from the fullname computed for
// its members.
type Enum struct {
	Name     string
	IsInline bool
	Bare     bool
	VI       VariantInfo
	Values   []*Value
	Prepared bool
	Fullname string
}

// Value is one member of an Enum. A value without an explicit integer
// is legal and represents a symbolic alias (ValValid is false).
type Value struct {
	Name     string
	Value    uint64
	ValValid bool
	VI       VariantInfo
	Fullname string
}

// Bitset is the bitfield analogue of Enum.
type Bitset struct {
	Name      string
	IsInline  bool
	Bare      bool
	VI        VariantInfo
	Bitfields []*Bitfield
	Prepared  bool
	Fullname  string
}

// Bitfield is a contiguous, inclusive bit range [Low, High] within a
// machine word, 0 <= Low <= High <= 63.
type Bitfield struct {
	Name     string
	Low      uint8
	High     uint8
	VI       VariantInfo
	Type     TypeInfo
	Mask     uint64
	Fullname string
}

// TypeKind classifies one resolved type name on a TypeInfo.
type TypeKind int

const (
	// TypeOther covers names that resolve to neither an enum nor a
	// bitset (e.g. primitive types like "uint").
	TypeOther TypeKind = iota
	TypeEnum
	TypeInlineEnum
	TypeBitset
	TypeInlineBitset
)

// ResolvedType is one declared type name after resolution against the
// database's enums and bitsets.
type ResolvedType struct {
	Name   string
	Kind   TypeKind
	Enum   *Enum
	Bitset *Bitset
}

// TypeInfo describes the type of a bitfield: a shift, optional bounds,
// the declared type names, their resolutions, and the inline expansion
// of any inline enum/bitset content — both content reached by resolving
// a declared type name to an inline definition, and content nested
// directly as <value>/<bitfield> children at parse time.
type TypeInfo struct {
	Shr       uint8
	Min       int64
	Max       int64
	HasMin    bool
	HasMax    bool
	Align     uint8
	TypeNames []string
	Types     []ResolvedType
	Vals      []*Value
	Bitfields []*Bitfield
}

// Group is a named, reusable fragment of domain subelements, inlined by
// use-group during preparation. The source group is left intact and
// may be reused by multiple use-group references.
type Group struct {
	Name     string
	Subelems []*DomainElement
}

// Domain is a named address space carrying subelements with offsets.
type Domain struct {
	Name     string
	Size     uint64
	HasSize  bool
	Width    uint8 // default 8
	Bare     bool
	VI       VariantInfo
	Subelems []*DomainElement
	Fullname string
}

// ElemKind discriminates a DomainElement.
type ElemKind int

const (
	ElemReg ElemKind = iota
	ElemArray
	ElemStripe
	ElemUseGroup
)

// Access is the REG access mode.
type Access int

const (
	AccessRW Access = iota
	AccessR
	AccessW
)

// DomainElement ("delem") is a REG, ARRAY, STRIPE or USE_GROUP placement
// within a domain or group. USE_GROUP carries only a target group name
// (stored in Name) and is rewritten to STRIPE during preparation.
type DomainElement struct {
	Kind     ElemKind
	Name     string
	Offset   uint64
	Length   uint64 // default 1
	Stride   uint64
	VI       VariantInfo
	Type     TypeInfo
	Subelems []*DomainElement
	Fullname string

	// REG-only.
	Width  uint8 // 8, 16, 32 or 64
	Access Access
}
