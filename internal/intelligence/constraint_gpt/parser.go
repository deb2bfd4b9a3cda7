package constraint_gpt

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
)

// Default ranges applied when a query does not bound a property.  The
// pipeline always conditions on all three properties, so every extraction
// result is completed with these.
var defaultRanges = map[string]material.Range{
	"band_gap":         {Min: 0.5, Max: 2.5},
	"formation_energy": {Min: -2.0, Max: -0.1},
	"bulk_modulus":     {Min: 50, Max: 200},
}

var (
	// Model answers usually assign the dictionary to a variable; fall back
	// to the first balanced brace block if they do not.
	assignedDictRe = regexp.MustCompile(`constraints\s*=\s*(\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\})`)
	bareDictRe     = regexp.MustCompile(`(\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\})`)

	unquotedKeyRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	trailingComma = regexp.MustCompile(`,\s*\}`)
)

// rawRange tolerates both numbers and nulls in model output.
type rawRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// ExtractConstraints pulls a constraints dictionary out of free-form model
// output.  The captured block is repaired from Python-dict syntax into JSON
// before decoding.  The second return value reports whether anything usable
// was found.
func ExtractConstraints(response string) (material.Constraints, bool) {
	m := assignedDictRe.FindStringSubmatch(response)
	if m == nil {
		m = bareDictRe.FindStringSubmatch(response)
	}
	if m == nil {
		return nil, false
	}

	repaired := repairDict(m[1])

	var raw map[string]rawRange
	if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
		return nil, false
	}

	out := make(material.Constraints, len(raw))
	for name, r := range raw {
		if _, supported := defaultRanges[name]; !supported {
			continue
		}
		if r.Min == nil || r.Max == nil {
			continue
		}
		out[name] = material.Range{Min: *r.Min, Max: *r.Max}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// repairDict converts the Python-flavored dictionary syntax language models
// tend to emit into strict JSON: single quotes, unquoted keys, Python
// literals, and trailing commas.
func repairDict(s string) string {
	s = strings.ReplaceAll(s, "'", `"`)
	s = unquotedKeyRe.ReplaceAllString(s, `"$1":`)
	s = strings.ReplaceAll(s, "None", "null")
	s = strings.ReplaceAll(s, "True", "true")
	s = strings.ReplaceAll(s, "False", "false")
	s = trailingComma.ReplaceAllString(s, "}")
	return s
}

// Rule-based extraction patterns, matched against the lowercased query.
var (
	rangeValRe = regexp.MustCompile(`(\d+\.?\d*)\s*(?:to|and|-)\s*(\d+\.?\d*)\s*ev`)
	minValRe   = regexp.MustCompile(`(?:at least|greater than|more than|above|>)\s*(\d+\.?\d*)\s*ev`)
	maxValRe   = regexp.MustCompile(`(?:at most|less than|below|<)\s*(\d+\.?\d*)\s*ev`)
	exactValRe = regexp.MustCompile(`(?:exactly|precisely|=)\s*(\d+\.?\d*)\s*ev`)
)

// RuleBasedConstraints extracts constraints with keyword and pattern rules
// when the model's answer cannot be parsed.  Only properties the query
// mentions are returned.
func RuleBasedConstraints(query string) material.Constraints {
	q := strings.ToLower(query)
	out := make(material.Constraints, 3)

	if strings.Contains(q, "band gap") || strings.Contains(q, "bandgap") {
		r := defaultRanges["band_gap"]
		if m := rangeValRe.FindStringSubmatch(q); m != nil {
			r.Min = parseFloat(m[1])
			r.Max = parseFloat(m[2])
		}
		if m := minValRe.FindStringSubmatch(q); m != nil {
			r.Min = parseFloat(m[1])
		}
		if m := maxValRe.FindStringSubmatch(q); m != nil {
			r.Max = parseFloat(m[1])
		}
		if m := exactValRe.FindStringSubmatch(q); m != nil {
			v := parseFloat(m[1])
			r.Min, r.Max = v, v
		}
		out["band_gap"] = r
	}

	if strings.Contains(q, "formation energy") || strings.Contains(q, "formation") {
		out["formation_energy"] = defaultRanges["formation_energy"]
	}

	if strings.Contains(q, "bulk modulus") || strings.Contains(q, "modulus") || strings.Contains(q, "stiffness") {
		out["bulk_modulus"] = defaultRanges["bulk_modulus"]
	}

	return out
}

// PrepareConstraints completes a partial extraction with the default range
// for every property the query did not bound.  The result always covers all
// three supported properties.
func PrepareConstraints(partial material.Constraints) material.Constraints {
	out := make(material.Constraints, len(defaultRanges))
	for name, def := range defaultRanges {
		if r, ok := partial[name]; ok {
			out[name] = r
		} else {
			out[name] = def
		}
	}
	return out
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
