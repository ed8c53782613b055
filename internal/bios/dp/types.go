// Package dp decodes the BIOS "d" (DisplayPort INFO) sub-table: a
// versioned binary layout describing voltage-swing and pre-emphasis
// calibration entries, reached through the BIT "d" index.
package dp

// BitEntry is the outer-frame descriptor locating the "d" index table
// within the BIOS image; it is supplied by the image framing layer,
// which this package treats as an external collaborator.
type BitEntry struct {
	Offset  int
	Version uint8
	TOffset int
	TLen    int
}

// Entry is one DP INFO entry record. Its body is read directly out of
// the BIOS image by the consumer; this package only owns the offset.
type Entry struct {
	Offset int
}

// LevelEntry is one calibration record within a level-entry table. For
// header version 0x42, PostCursor2 is always zero (the field does not
// exist on the wire).
type LevelEntry struct {
	Offset       int
	PostCursor2  uint8
	DriveCurrent uint8
	PreEmphasis  uint8
	TxPu         uint8
	Valid        bool
}

// LevelEntryTable is one table of level entries.
type LevelEntryTable struct {
	Offset       int
	LevelEntries []LevelEntry
}

// Info is the decoded DP INFO header plus its allocated records.
type Info struct {
	Offset    int
	Version   uint8
	Hlen      uint8
	Rlen      uint8
	EntriesNum uint8

	TargetSize             uint8
	LevelEntryTablesCount  uint8
	LevelEntrySize         uint8
	LevelEntryCount        uint8
	Flags                  uint8
	RegularVswing          uint16
	LowVswing              uint16

	Valid             bool
	Entries           []Entry
	LevelEntryTables  []LevelEntryTable
}

// Root is the result of walking the "d" index: the BIT entry that
// located it, and the decoded DP INFO sub-table.
type Root struct {
	BitEntry BitEntry
	DPInfo   *Info
}
