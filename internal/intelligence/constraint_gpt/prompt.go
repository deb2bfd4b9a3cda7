package constraint_gpt

import (
	"fmt"
	"strings"
)

// systemPrompt frames the model as a constraint extractor with a fixed
// output contract.
const systemPrompt = `You are a materials science expert. Convert material science queries into a structured constraints dictionary.`

// promptTemplate asks for a bare dictionary so the parser has as little
// prose as possible to strip away.
const promptTemplate = `Convert the following material science query into a structured constraints dictionary.

Query: %s

Output the result as a dictionary with the format:
constraints = {
    'property_name': {'min': value, 'max': value},
    ...
}

Guidelines:
1. Only include properties that are explicitly mentioned or strongly implied in the query.
2. Use realistic value ranges for common material properties:
   - band_gap: 0-10 eV
   - formation_energy: -20 to 5 eV/atom
   - bulk_modulus: 1-400 GPa
3. Focus on these three key properties that the generation model supports:
   - band_gap
   - formation_energy
   - bulk_modulus

The output should ONLY contain the dictionary, nothing else.`

// BuildPrompt renders the extraction prompt for one user query.
func BuildPrompt(query string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(query))
}
