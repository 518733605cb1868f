package model

import "sort"

// Record is one row of the output relation.
type Record struct {
	Identifier     string
	Attribute      string
	Value          string
	TableIndex     int
	HeadingContext string
}

// Key is the identity of a record for deduplication.
type Key struct {
	Identifier string
	Attribute  string
	Value      string
	TableIndex int
}

// Key returns the deduplication key of r.
func (r Record) Key() Key {
	return Key{
		Identifier: r.Identifier,
		Attribute:  r.Attribute,
		Value:      r.Value,
		TableIndex: r.TableIndex,
	}
}

// Dataset is the assembled output of one run. Records are in emission order:
// table order, then row order, then column order.
type Dataset struct {
	Records []Record
}

// NewDataset creates a dataset holding records.
func NewDataset(records []Record) *Dataset {
	if records == nil {
		records = make([]Record, 0)
	}
	return &Dataset{Records: records}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Empty reports whether the dataset holds no records.
func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

// CountByIdentifier returns the number of records per identifier.
func (d *Dataset) CountByIdentifier() map[string]int {
	counts := make(map[string]int)
	if d == nil {
		return counts
	}
	for _, r := range d.Records {
		counts[r.Identifier]++
	}
	return counts
}

// TableIndexes returns the distinct table indexes represented, ascending.
func (d *Dataset) TableIndexes() []int {
	if d == nil {
		return nil
	}
	seen := make(map[int]struct{})
	var out []int
	for _, r := range d.Records {
		if _, ok := seen[r.TableIndex]; ok {
			continue
		}
		seen[r.TableIndex] = struct{}{}
		out = append(out, r.TableIndex)
	}
	sort.Ints(out)
	return out
}

// Headings returns the distinct heading contexts in first-seen order.
func (d *Dataset) Headings() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.Records {
		if _, ok := seen[r.HeadingContext]; ok {
			continue
		}
		seen[r.HeadingContext] = struct{}{}
		out = append(out, r.HeadingContext)
	}
	return out
}

// HasDuplicates reports whether two records share the same Key.
func (d *Dataset) HasDuplicates() bool {
	if d == nil {
		return false
	}
	seen := make(map[Key]struct{}, len(d.Records))
	for _, r := range d.Records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}
