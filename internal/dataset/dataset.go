// Package dataset holds the AudioCaps metadata model: splits, rows, tables,
// remote metadata loading and CSV persistence.
package dataset

import "path/filepath"

// Split identifies one of the dataset partitions.
type Split string

// Dataset partitions, in pipeline order.
const (
	Train Split = "train"
	Val   Split = "val"
	Test  Split = "test"
)

// Splits lists all partitions in the order the pipeline processes them.
var Splits = []Split{Train, Val, Test}

// Dir returns the directory holding this split's audio clips under root.
func (s Split) Dir(root string) string {
	return filepath.Join(root, string(s))
}

// CSVPath returns the path of this split's reconciled metadata CSV under root.
func (s Split) CSVPath(root string) string {
	return filepath.Join(root, string(s)+".csv")
}

func (s Split) String() string { return string(s) }

// Row is one metadata entry: a captioned 10-second window of a YouTube video.
// ID is the audiocap id, unique within a split; it is the join key between a
// row and its on-disk clip (the filename stem).
type Row struct {
	ID        string
	YouTubeID string
	StartTime float64 // seconds from the start of the source video
	Caption   string
}

// Table is the ordered metadata for one split. Tables are never mutated in
// place: reconciliation produces a new Table via Filter.
type Table struct {
	Split Split
	Rows  []Row
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Filter returns a new Table containing, in original order, the rows at
// indices where keep is true. keep must have one entry per row; extra entries
// are ignored and missing entries drop the row.
func (t Table) Filter(keep []bool) Table {
	out := Table{Split: t.Split, Rows: make([]Row, 0, len(t.Rows))}
	for i, row := range t.Rows {
		if i < len(keep) && keep[i] {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Tables bundles the three per-split metadata tables of one run.
type Tables struct {
	Train Table
	Val   Table
	Test  Table
}

// BySplit returns the table for the given split.
func (t Tables) BySplit(s Split) Table {
	switch s {
	case Train:
		return t.Train
	case Val:
		return t.Val
	default:
		return t.Test
	}
}
