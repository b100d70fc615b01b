// SPDX-License-Identifier: MIT

package population

// Target is one column of the interaction matrix together with the people an
// initiator may contact for it.
type Target struct {
	Column int
	People []*Person
}

// Partition is how an initiator in a given subgroup samples: which matrix row
// applies and which pools serve each column.
type Partition struct {
	Row     int
	Targets []Target
}

// Partitioner is implemented by groups whose sampling layout differs from
// "row = own subgroup, one target per subgroup".
type Partitioner interface {
	Partition(subgroup int) Partition
}

// Tagger is implemented by groups that split their contacts into derived
// location keys. Tag returns the key suffix for a contact between a and b,
// or "" when the contact is not tagged.
type Tagger interface {
	Tag(a, b *Person) string
	Suffixes() []string
}

// Suffixes of the derived keys written by family-tagged venues.
const (
	IntraSuffix = "_intra"
	InterSuffix = "_inter"
)

// PartitionOf returns the sampling layout of g for an initiator in subgroup.
//
// Complexity: O(S) for S subgroups.
func PartitionOf(g Group, subgroup int) Partition {
	if p, ok := g.(Partitioner); ok {
		return p.Partition(subgroup)
	}
	return genericPartition(g.Subgroups(), subgroup)
}

func genericPartition(subs [][]*Person, subgroup int) Partition {
	targets := make([]Target, len(subs))
	for j, s := range subs {
		targets[j] = Target{Column: j, People: s}
	}
	return Partition{Row: subgroup, Targets: targets}
}

// Partition maps teachers to row 0 with pools [teachers, every student] and a
// student to row 1 with pools [teachers, own year group].
func (s *School) Partition(subgroup int) Partition {
	if subgroup == 0 {
		return Partition{Row: 0, Targets: []Target{
			{Column: 0, People: s.Teachers()},
			{Column: 1, People: s.Students()},
		}}
	}
	var year []*Person
	if subgroup < len(s.Subs) {
		year = s.Subs[subgroup]
	}
	return Partition{Row: 1, Targets: []Target{
		{Column: 0, People: s.Teachers()},
		{Column: 1, People: year},
	}}
}

// Tag reports whether a and b share a family.
func (s *Shelter) Tag(a, b *Person) string {
	fa, fb := SubgroupOf(s.Fams, a), SubgroupOf(s.Fams, b)
	if fa >= 0 && fa == fb {
		return IntraSuffix
	}
	return InterSuffix
}

// Suffixes lists the derived keys a shelter writes.
func (s *Shelter) Suffixes() []string { return []string{IntraSuffix, InterSuffix} }

// SubgroupOf returns the index of the subgroup holding p, or -1.
func SubgroupOf(subs [][]*Person, p *Person) int {
	for i, s := range subs {
		for _, q := range s {
			if q == p {
				return i
			}
		}
	}
	return -1
}

// InteractionRows returns the occupancy of every interaction-matrix row of g.
// School year groups collapse onto row 1.
func InteractionRows(g Group) []int {
	subs := g.Subgroups()
	if _, ok := g.(*School); ok {
		rows := make([]int, 2)
		for i, s := range subs {
			if i == 0 {
				rows[0] += len(s)
			} else {
				rows[1] += len(s)
			}
		}
		return rows
	}
	rows := make([]int, len(subs))
	for i, s := range subs {
		rows[i] = len(s)
	}
	return rows
}
