package extractor

import "bidrecon/internal/domain"

var kindGuidance = map[domain.DocumentKind]string{
	domain.DocumentKindRFP: `The document is a Request for Proposals or bid solicitation for a civil
construction project. Extract the bid schedule: every pay item the owner asks
bidders to price. Mark an item "mandatory": true when the schedule identifies
it as a required or base-bid item (additive alternates are not mandatory).
Also extract the project header into "project_info".`,
	domain.DocumentKindBid: `The document is a contractor's bid proposal or schedule of values. Extract
every priced line item, including unit prices where stated.`,
	domain.DocumentKindPlan: `The document contains civil plan sheets or an engineer's quantity takeoff.
Extract every quantity shown in summary tables, quantity callouts and takeoff
schedules. A single quantity may be split across sheets; report each
occurrence as its own line item rather than summing.`,
}

// BuildLineItemPrompt returns the extraction prompt for one document kind.
func BuildLineItemPrompt(kind domain.DocumentKind) string {
	return `You are a construction document data extraction assistant. ` + kindGuidance[kind] + `

IMPORTANT INSTRUCTIONS:
- The document may span multiple pages. Extract ALL line items from every page into a single flat "line_items" array.
- It is critical that you extract EVERY line item. Do not skip, summarize, or omit any items.
- If a quantity is not stated for an item, use null. Never invent a quantity and never substitute 0 for an unstated one.
- Report units exactly as printed (CY, SY, SF, LF, EA, TON, LS, AC, ...). If no unit is shown, use an empty string.
- Categorize each item as one of: earthwork, paving, utilities, structures, traffic, erosion, landscape, general.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation. The object must follow this schema:
{
  "project_info": {
    "project_name": "",
    "owner": "",
    "location": "",
    "bid_date": "",
    "engineer_estimate": ""
  },
  "line_items": [
    {
      "item_number": "",
      "description": "",
      "quantity": null,
      "unit": "",
      "category": "",
      "mandatory": false,
      "unit_price": null,
      "notes": ""
    }
  ]
}

If a field is not present in the document, use empty string for text, null for numbers, and false for booleans.`
}
