// SPDX-License-Identifier: MIT

package interaction

// BinType selects how an entry's rows and columns are indexed.
type BinType string

const (
	// Age bins are integer age edges; subgroups = len(edges)-1.
	Age BinType = "Age"

	// Discrete bins are labels (teachers, students, ...); subgroups = len(labels).
	Discrete BinType = "Discrete"
)

// Pseudo-locations and derived keys.
const (
	// Global aggregates every tracked location.
	Global = "global"

	// IntraSuffix and InterSuffix name the derived keys of family-tagged
	// locations such as shelters.
	IntraSuffix = "_intra"
	InterSuffix = "_inter"

	// GlobalCharacteristicDays is the reference period of the global view.
	GlobalCharacteristicDays = 1.0

	// GlobalProportionPhysical is the physical share reported for global.
	GlobalProportionPhysical = 0.12
)

type defaultBins struct {
	binType BinType
	edges   []int
	labels  []string
}

// defaultTable fills type/bins for entries that omit them.
var defaultTable = map[string]defaultBins{
	"household":  {binType: Discrete, labels: []string{"kids", "young_adults", "adults", "old"}},
	"school":     {binType: Discrete, labels: []string{"teachers", "students"}},
	"company":    {binType: Discrete, labels: []string{"workers"}},
	"care_home":  {binType: Discrete, labels: []string{"workers", "residents", "visitors"}},
	"hospital":   {binType: Discrete, labels: []string{"workers", "patients", "icu_patients"}},
	"university": {binType: Discrete, labels: []string{"1", "2", "3", "4", "5"}},
	"shelter":    {binType: Discrete, labels: []string{"all"}},
	"pub":        {binType: Age, edges: []int{0, 100}},
	"grocery":    {binType: Age, edges: []int{0, 100}},
	"cinema":     {binType: Age, edges: []int{0, 100}},
	"gym":        {binType: Age, edges: []int{0, 100}},
}

// fallbackBins applies to locations missing from defaultTable.
var fallbackBins = defaultBins{binType: Age, edges: []int{0, 100}}

func defaultsFor(location string) defaultBins {
	if d, ok := defaultTable[location]; ok {
		return d
	}
	return fallbackBins
}
