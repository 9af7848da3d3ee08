package ai

import "fmt"

// Fixed domain rule set shared by both providers. Kept verbatim in one
// place so the primary and fallback see identical guidance.
const lifeSavingRules = `Life-saving rules:
1. Work with a valid permit when required.
2. Verify isolation and zero energy before work begins.
3. Obtain authorization before entering a confined space.
4. Protect yourself against a fall when working at height.
5. Do not walk under a suspended load.
6. Do not smoke or use naked flames outside designated areas.
7. Wear the personal protective equipment required for the task.
8. Follow safe lifting-operation procedures.
9. Do not use phones or distracting devices in operational zones.
10. Keep a safe distance from moving or rotating machinery.`

const responseSchema = `Respond with JSON only, no prose, exactly these fields:
{
  "life_saving_rule_violated": boolean,
  "rule_name": string or null,
  "risk_level": "Low" | "Medium" | "High",
  "observation_summary": string,
  "why_this_is_dangerous": string,
  "mentor_precautions": [string],
  "confidence": number between 0 and 1,
  "text_image_aligned": boolean,
  "alignment_reason": string,
  "content_type": "text-only" | "image-only" | "image+text"
}`

// BuildPrompt renders the shared prompt template with content-type
// aware prioritization guidance.
func BuildPrompt(input Input) string {
	var guidance string
	switch input.ContentType {
	case "image-only":
		guidance = "No reporter text is available; base the assessment entirely on the image."
	case "image+text":
		guidance = "Prioritize visual evidence from the image; use the reporter text for context and check whether text and image describe the same situation."
	default:
		guidance = "Only reporter text is available; assess the described situation conservatively."
	}

	return fmt.Sprintf(`You are an industrial safety mentor reviewing an incident report from a %s site.

%s

%s

Reported issue: %q

%s`, orDefault(input.SiteType, "industrial"), lifeSavingRules, guidance, input.Text, responseSchema)
}

func orDefault(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}
