package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"intake/model"
)

const recognitionRules = `
- If phone number, write it in normalized form with the correct regional code, without brackets, spaces or other symbols.
- If email, write it in normalized form and trim spaces.
- If URL, write it in normalized form with unicode escapes decoded and spaces trimmed.
- If date or time, write it in normalized form.
- If math (expression, equation, formula), format as $KaTeX$.
- If table or something table-like, format as a markdown | table |.
- If image, format as [$image$]($image$).
- If code, format as a fenced block (multi-line) or inline code (single line).
- If JSON, write it as a correct, trimmed JSON string.
- If list-like, format as a markdown list.
- Otherwise write it as plain text.`

const recognitionOutput = `
Return ONLY valid JSON. No code fences, no explanations, no prose.
The response starts with { or [ and ends with } or ].

Expected output structure:
{
    "keywords_and_tags": ["string array"],
    "recognized_data": ["any array"],
    "verbose_data": "markdown string",
    "using_ready": true,
    "confidence": 0.95,
    "suggested_type": "entity_type"
}
`

const imageRecognitionPrompt = `Recognize the data in the image, orienting by the fonts it uses.
After recognition, do not include or remember the image itself.

---

Put recognized values (phone numbers, emails, URLs, dates, times, codes and so on) in the "recognized_data" key. Formatting rules:
- If textual content, format as a multi-line markdown string.` + recognitionRules + `

---

Also:
- Collect special tags and keywords, if any.
- Provide free-form markdown analysis of what was recognized in the "verbose_data" key.

---
` + recognitionOutput

const textRecognitionPrompt = `Analyze the text, extract specific or special data from it and normalize it by these rules.

---

Put extracted values (phone numbers, emails, URLs, dates, times, codes and so on) in the "recognized_data" key. Formatting rules:` + recognitionRules + `

---

Also:
- Collect special tags and keywords, if any.
- Provide free-form markdown analysis of the data in the "verbose_data" key.
- Detect the entity type if applicable (task, event, person, place, service, item and so on).

---
` + recognitionOutput

// DataModificationPrompt frames a ModifyExistingData request.
const DataModificationPrompt = `
You are a data modification assistant. Modify the existing data according to the instructions.

Rules:
1. Preserve the original structure unless explicitly asked to change it.
2. Apply modifications in order, one by one.
3. Keep value types consistent with the existing data.
4. Return the complete modified entity, not only the changes.
5. List any modification that cannot be applied in "errors" with a reason.

Output ONLY valid JSON starting with { and ending with }.

Expected output structure:
{
    "modified_entity": {},
    "changes_made": [],
    "errors": [],
    "warnings": []
}
`

// DataSelectionPrompt frames a SelectAndFilter request.
const DataSelectionPrompt = `
You are a data selection assistant. Find and select the items matching the criteria.

Rules:
1. Apply all filters (AND by default).
2. Rank results by relevance to the search terms.
3. Include confidence scores for fuzzy matches.
4. Group similar results to avoid duplicates.

Output ONLY valid JSON starting with { and ending with }.

Expected output structure:
{
    "selected_items": [],
    "total_matches": 0,
    "filter_stats": {},
    "suggestions": []
}
`

// EntityMergePrompt frames a MergeEntities request.
const EntityMergePrompt = `
You are an entity merging assistant. Merge the given entities into one.

Rules:
1. Prefer newer or more complete data on conflict unless a strategy says otherwise.
2. Combine arrays without duplicates.
3. Merge nested objects recursively.
4. Preserve IDs and relationships.
5. Track which source contributed each merged field.

Output ONLY valid JSON starting with { and ending with }.

Expected output structure:
{
    "merged_entity": {},
    "conflicts_resolved": [],
    "sources_used": [],
    "merge_confidence": 0
}
`

var operationDescriptions = map[model.Operation]string{
	model.OpCreate:  "Create new data entries based on provided information.",
	model.OpModify:  "Modify existing data with provided changes while preserving structure.",
	model.OpMerge:   "Intelligently merge new data with existing data, avoiding duplicates.",
	model.OpAnalyze: "Analyze and extract structured information from the data.",
	model.OpExtract: "Extract specific data points matching the criteria.",
}

// contextPrompt renders the request context as a "Context:" preamble, or
// "" when there is nothing to say.
func contextPrompt(dc *model.DataContext) string {
	if dc == nil {
		return ""
	}

	var parts []string
	if dc.Operation != "" {
		desc, ok := operationDescriptions[dc.Operation]
		if !ok {
			desc = string(dc.Operation)
		}
		parts = append(parts, "Operation: "+desc)
	}
	if dc.EntityType != "" {
		parts = append(parts, "Target entity type: "+dc.EntityType)
	}
	if dc.ExistingData != nil {
		parts = append(parts, "Existing data context provided - consider for merge/update operations.")
	}
	if len(dc.Filters) > 0 {
		parts = append(parts, "Apply filters: "+describeFilters(dc.Filters, ", "))
	}
	if len(dc.SearchTerms) > 0 {
		parts = append(parts, "Search terms: "+strings.Join(dc.SearchTerms, ", "))
	}
	if dc.Priority != "" {
		parts = append(parts, "Priority level: "+string(dc.Priority))
	}

	if len(parts) == 0 {
		return ""
	}
	return "Context:\n" + strings.Join(parts, "\n") + "\n\n---\n"
}

// actionPrompt is the "What to do" text for content of the given kind.
func actionPrompt(kind model.DataKind, dc *model.DataContext) string {
	if kind == "" {
		kind = model.KindInputText
	}
	ctx := contextPrompt(dc)
	switch model.TransportType(kind) {
	case model.PartInputImage:
		return ctx + "\n" + imageRecognitionPrompt
	case model.PartInputText:
		return ctx + "\n" + textRecognitionPrompt
	}
	return ctx
}

// modificationPrompt renders numbered modification instructions.
func modificationPrompt(instructions []model.ModificationInstruction) string {
	var lines []string
	for _, inst := range instructions {
		n := len(lines) + 1
		cond := ""
		if len(inst.Conditions) > 0 {
			cond = " when " + describeFilters(inst.Conditions, " AND ")
		}

		var line string
		switch inst.Action {
		case model.ActionUpdate:
			line = fmt.Sprintf("%d. UPDATE field %q to %s%s", n, inst.Target, jsonValue(inst.Value), cond)
		case model.ActionDelete:
			line = fmt.Sprintf("%d. DELETE field %q%s", n, inst.Target, cond)
		case model.ActionMerge:
			line = fmt.Sprintf("%d. MERGE into %q with %s%s", n, inst.Target, jsonValue(inst.Value), cond)
		case model.ActionAppend:
			line = fmt.Sprintf("%d. APPEND %s to %q%s", n, jsonValue(inst.Value), inst.Target, cond)
		case model.ActionReplace:
			line = fmt.Sprintf("%d. REPLACE %q with %s%s", n, inst.Target, jsonValue(inst.Value), cond)
		case model.ActionTransform:
			line = fmt.Sprintf("%d. TRANSFORM %q using: %s%s", n, inst.Target, inst.TransformFn, cond)
		default:
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return ""
	}
	return "\nModification instructions:\n" + strings.Join(lines, "\n") + "\n"
}

func describeFilters(filters []model.DataFilter, sep string) string {
	descs := make([]string, len(filters))
	for i, f := range filters {
		descs[i] = fmt.Sprintf("%s %s %s", f.Field, f.Operator, jsonValue(f.Value))
	}
	return strings.Join(descs, sep)
}

func jsonValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
