package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/domicil/core"
)

const constraintResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "location_keyword": {"type": ["string", "null"]},
    "price_min": {"type": ["integer", "null"]},
    "price_max": {"type": ["integer", "null"]},
    "bedrooms_min": {"type": ["integer", "null"]},
    "bedrooms_max": {"type": ["integer", "null"]},
    "floors_min": {"type": ["integer", "null"]},
    "floors_max": {"type": ["integer", "null"]},
    "property_type": {"type": ["string", "null"]},
    "listing_type": {"type": ["string", "null"]},
    "free_text": {"type": ["string", "null"]}
  },
  "additionalProperties": false
}`

const constraintPromptTemplate = `Extract real-estate search constraints from the user's query and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- property_type must be one of: %s. Use null when the query does not name one.
- listing_type must be one of: %s. Use null when the query does not say buy/sell or rent.
- Prices are plain integers in the query's currency unit, no separators or suffixes.
- location_keyword is the place or area name mentioned, lowercase, without prepositions.
- free_text carries everything else that matters (amenities, features, proximity phrases),
  or null if nothing remains.
- Never invent constraints the query does not state. Omitted means null.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example query: "cari rumah 3 kamar di cemara asri budget max 1 milyar dekat sekolah"
Example output:
{"location_keyword": "cemara asri", "price_min": null, "price_max": 1000000000,
 "bedrooms_min": 3, "bedrooms_max": null, "floors_min": null, "floors_max": null,
 "property_type": "house", "listing_type": "sale", "free_text": "dekat sekolah"}`

func buildConstraintPrompt() string {
	return fmt.Sprintf(constraintPromptTemplate,
		constraintResponseSchema,
		strings.Join(core.PropertyTypes, ", "),
		strings.Join(core.ListingTypes, ", "))
}
