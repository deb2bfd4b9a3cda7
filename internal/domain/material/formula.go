package material

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Composition is the element-to-amount map of a structure.  Amounts are
// occupancy-weighted site counts and may be fractional for disordered
// structures.
type Composition map[string]float64

// CompositionOf accumulates the composition of a structure from its sites.
func CompositionOf(s *Structure) Composition {
	comp := make(Composition, 4)
	for _, site := range s.Sites {
		occ := site.Occupancy
		if occ == 0 {
			occ = 1.0
		}
		comp[site.Element] += occ
	}
	return comp
}

// amountTol is the tolerance used when snapping fractional amounts onto
// integer ratios.
const amountTol = 1e-3

// maxDenominator bounds the search for an integer multiplier when amounts are
// fractional.  12 covers the common crystallographic occupancies (1/2, 1/3,
// 1/4, 1/6, ...).
const maxDenominator = 12

// ReducedFormula returns the composition normalized to smallest integer
// element ratios, rendered with elements in alphabetical order, e.g.
// "Fe2O3", "NaCl".  This string is the identity key the diversity machinery
// compares with exact equality.
func (c Composition) ReducedFormula() string {
	if len(c) == 0 {
		return ""
	}

	elements := make([]string, 0, len(c))
	for el := range c {
		elements = append(elements, el)
	}
	sort.Strings(elements)

	amounts := make([]float64, len(elements))
	for i, el := range elements {
		amounts[i] = c[el]
	}

	counts := integerRatios(amounts)

	var sb strings.Builder
	for i, el := range elements {
		sb.WriteString(el)
		if counts[i] != 1 {
			fmt.Fprintf(&sb, "%d", counts[i])
		}
	}
	return sb.String()
}

// integerRatios converts positive amounts to their smallest integer ratio.
// Fractional amounts are scaled by the smallest multiplier in
// [1, maxDenominator] that makes every entry near-integer; if none exists the
// amounts are rounded as-is.
func integerRatios(amounts []float64) []int {
	scaled := make([]int, len(amounts))
	for mult := 1; mult <= maxDenominator; mult++ {
		ok := true
		for i, a := range amounts {
			v := a * float64(mult)
			if math.Abs(v-math.Round(v)) > amountTol*float64(mult) {
				ok = false
				break
			}
			scaled[i] = int(math.Round(v))
		}
		if ok {
			break
		}
		if mult == maxDenominator {
			for i, a := range amounts {
				n := int(math.Round(a * float64(mult)))
				if n < 1 {
					n = 1
				}
				scaled[i] = n
			}
		}
	}

	g := 0
	for _, n := range scaled {
		g = gcd(g, n)
	}
	if g > 1 {
		for i := range scaled {
			scaled[i] /= g
		}
	}
	for i, n := range scaled {
		if n < 1 {
			scaled[i] = 1
		}
	}
	return scaled
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// ReducedFormula is a convenience accessor on Structure.
func (s *Structure) ReducedFormula() string {
	return CompositionOf(s).ReducedFormula()
}
