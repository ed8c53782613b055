package dp

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jimyag/hrdb/internal/biosimg"
)

// Result is the outcome of parsing one "d" sub-table: the decoded
// root plus every non-fatal condition observed along the way. A
// bounds violation or an unrecognised version never aborts the parse;
// it only marks the affected record invalid and appends a Warning.
type Result struct {
	Root     *Root
	warnings []Warning
}

// Warnings renders every recorded condition as a human-readable
// string, in the order they were observed.
func (r *Result) Warnings() []string {
	out := make([]string, len(r.warnings))
	for i, w := range r.warnings {
		out[i] = w.String()
	}
	return out
}

func (r *Result) warn(logger *zerolog.Logger, kind Kind, offset int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.warnings = append(r.warnings, Warning{Kind: kind, Offset: offset, Msg: msg})
	if logger != nil {
		logger.Warn().Str("kind", kind.String()).Int("offset", offset).Msg(msg)
	}
}

// Parse walks the "d" index located by bit, decodes its DP INFO
// sub-table and fills every entry/level-entry record. It never
// returns an error for malformed BIOS content: bounds violations and
// unrecognised versions are recorded as warnings on the returned
// Result instead, per the BIOS path's failure semantics.
func Parse(img biosimg.Reader, logger *zerolog.Logger, bit BitEntry) (*Result, error) {
	res := &Result{}
	var info *Info

	for slot := 0; ; slot++ {
		rel := bit.TOffset + slot*2
		if rel+2 > bit.TLen {
			break
		}
		ptr, err := img.ReadU16(bit.Offset + rel)
		if err != nil {
			res.warn(logger, KindBinaryBounds, bit.Offset+rel, "read d-index slot %d: %v", slot, err)
			break
		}
		if slot != 0 || ptr == 0 {
			// Only slot 0 (DP INFO) is recognised; other present
			// slots are silently ignored by this parser.
			continue
		}
		info = decodeDPInfo(img, logger, res, bit.Offset+int(ptr))
	}

	if info == nil {
		info = &Info{Valid: false}
	}
	res.Root = &Root{BitEntry: bit, DPInfo: info}
	return res, nil
}

func decodeDPInfo(img biosimg.Reader, logger *zerolog.Logger, res *Result, offset int) *Info {
	info := &Info{Offset: offset}

	version, err := img.ReadU8(offset)
	if err != nil {
		res.warn(logger, KindBinaryBounds, offset, "read version: %v", err)
		return info
	}
	info.Version = version

	switch version {
	case 0x40, 0x41, 0x42:
	default:
		res.warn(logger, KindUnknownVersion, offset, "unrecognised DP INFO version %#x", version)
		return info
	}

	fields := make([]uint8, 8)
	for i := range fields {
		b, err := img.ReadU8(offset + 1 + i)
		if err != nil {
			res.warn(logger, KindBinaryBounds, offset+1+i, "read DP INFO header byte %d: %v", i, err)
			return info
		}
		fields[i] = b
	}
	info.Hlen = fields[0]
	info.Rlen = fields[1]
	info.EntriesNum = fields[2]
	info.TargetSize = fields[3]
	info.LevelEntryTablesCount = fields[4]
	info.LevelEntrySize = fields[5]
	info.LevelEntryCount = fields[6]
	info.Flags = fields[7]

	if version == 0x42 {
		rv, err := img.ReadU16(offset + 9)
		if err != nil {
			res.warn(logger, KindBinaryBounds, offset+9, "read regular_vswing: %v", err)
			return info
		}
		lv, err := img.ReadU16(offset + 11)
		if err != nil {
			res.warn(logger, KindBinaryBounds, offset+11, "read low_vswing: %v", err)
			return info
		}
		info.RegularVswing = rv
		info.LowVswing = lv
	}

	info.Valid = true
	fillRecords(img, logger, res, info)
	return info
}

// fillRecords allocates and fills entries and level-entry tables per
// invariant I4. A short read on any one record sets that record's
// Valid to false and records a warning; every other record is still
// attempted.
func fillRecords(img biosimg.Reader, logger *zerolog.Logger, res *Result, info *Info) {
	if want := expectedLevelEntrySize(info.Version); info.LevelEntrySize != want {
		res.warn(logger, KindSizeMismatch, info.Offset, "header declares levelentry_size=%d, reader fills %d fields for version %#x", info.LevelEntrySize, want, info.Version)
	}

	base := info.Offset + int(info.Hlen)

	info.Entries = make([]Entry, info.EntriesNum)
	for i := range info.Entries {
		info.Entries[i] = Entry{Offset: base + i*int(info.Rlen)}
	}

	tablesBase := base + int(info.EntriesNum)*int(info.Rlen)
	info.LevelEntryTables = make([]LevelEntryTable, info.LevelEntryTablesCount)
	for k := range info.LevelEntryTables {
		tableOffset := tablesBase + k*int(info.LevelEntryCount)*int(info.LevelEntrySize)
		table := LevelEntryTable{
			Offset:       tableOffset,
			LevelEntries: make([]LevelEntry, info.LevelEntryCount),
		}
		for j := range table.LevelEntries {
			entryOffset := tableOffset + j*int(info.LevelEntrySize)
			table.LevelEntries[j] = decodeLevelEntry(img, logger, res, info.Version, entryOffset)
		}
		info.LevelEntryTables[k] = table
	}
}

func decodeLevelEntry(img biosimg.Reader, logger *zerolog.Logger, res *Result, version uint8, offset int) LevelEntry {
	le := LevelEntry{Offset: offset}

	if version == 0x42 {
		vals, err := readBytes(img, offset, 3)
		if err != nil {
			res.warn(logger, KindBinaryBounds, offset, "read level entry: %v", err)
			return le
		}
		le.DriveCurrent, le.PreEmphasis, le.TxPu = vals[0], vals[1], vals[2]
		le.Valid = true
		return le
	}

	vals, err := readBytes(img, offset, 4)
	if err != nil {
		res.warn(logger, KindBinaryBounds, offset, "read level entry: %v", err)
		return le
	}
	le.PostCursor2, le.DriveCurrent, le.PreEmphasis, le.TxPu = vals[0], vals[1], vals[2], vals[3]
	le.Valid = true
	return le
}

func expectedLevelEntrySize(version uint8) uint8 {
	if version == 0x42 {
		return 3
	}
	return 4
}

func readBytes(img biosimg.Reader, offset, n int) ([]uint8, error) {
	out := make([]uint8, n)
	for i := 0; i < n; i++ {
		b, err := img.ReadU8(offset + i)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
