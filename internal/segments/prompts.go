package segments

import "fmt"

const introSystemPrompt = `You are an API voice assistant that generates SSML podcast intros.
Strict rules: Never return markdown, JSON, or commentary.
Only return a raw <speak>...</speak> SSML string with no line breaks or formatting.
Output must be under 1800 characters, valid SSML, and ready for TTS.`

const defaultIntroPrompt = `Write a short, confident podcast intro for "Turing's Torch: AI Weekly". ` +
	`Include a witty nod to UK weather: "{{weather_summary}}". ` +
	`Weave in this Alan Turing quote: "{{quote}}". Keep pacing brisk and charismatic.`

const introRules = ` Use SSML. Wrap output with <speak>...</speak>. ` +
	`Say "AI" as <say-as interpret-as="characters">A I</say-as>. ` +
	`Include natural <emphasis> and <break> tags. ` +
	`Output must be JSON-safe, a single line (no raw newlines), and under 700 characters.`

const weatherUnavailable = "the weather report is unavailable today"

const defaultMainPrompt = `Rewrite each item into a podcast segment. Tone: British Gen X, confident, dry wit. ` +
	`Each segment should sound natural and flow.`

const mainRules = ` For each item, produce one SSML chunk. Wrap with <speak>...</speak>. ` +
	`Say "AI" as <say-as interpret-as="characters">A I</say-as>. ` +
	`Use <emphasis> and <break time="600ms"/> naturally. ` +
	`Each chunk must be JSON-safe, single-line (no raw newlines), and under 4800 characters. ` +
	`Output ONLY the chunks, one per line.`

const defaultOutroPrompt = `Write a confident, witty podcast outro for "Turing's Torch: AI Weekly" in a British Gen X tone. ` +
	`Mention that new episodes drop every Friday and nudge listeners to jonathan-harris.online for the newsletter and more ebooks.`

func outroRules(sponsorLine string) string {
	return fmt.Sprintf(` Use SSML. Wrap the entire response with <speak>...</speak>. `+
		`Say "AI" as <say-as interpret-as="characters">A I</say-as>. `+
		`Include this exact sponsor line verbatim somewhere natural in the outro: %q `+
		`(do not alter the text, do not wrap the URL in <say-as>). `+
		`Use <emphasis> and natural <break> tags. `+
		`Output must be JSON-safe, a single line (no raw newlines), and under 600 characters. `+
		`Return ONLY the SSML, no JSON.`, sponsorLine)
}
