package classify

import (
	"strings"

	"cadenza/internal/taxonomy"
)

// taggingRubric is the shared system prompt for full-taxonomy tagging.
// The concrete tag vocabulary is appended at construction time so the
// prompt always matches the injected taxonomy.
const taggingRubric = `You are an assistant that tags Korean classical-music concert listings.

You will receive concert data (title, performers, producer, synopsis) and
must assign tags from the fixed vocabulary given below. Follow these rules:

- Use ONLY tags from the vocabulary. Anything notable that has no matching
  tag (guest artists, out-of-vocabulary composers, festival names) goes
  into "keywords" as free text instead.
- Composer names may appear in variant spellings or in their original
  language; recognize them and use the canonical Korean spelling from the
  vocabulary (e.g. 무소륵스키 -> 무소르그스키).
- Work-form disambiguation: a concerto performed in a symphony concert gets
  both 협주곡 and 교향곡 only when both kinds of works are actually on the
  program. A recital (독주회, 리사이틀) by a single performer is 독주회 even
  when orchestral arrangements appear. Opera galas and concert performances
  of operas are 오페라.
- Mixed programs: when works by composers of different historical periods
  are programmed together, tag every composer you can identify. Do not
  pick only the headline composer.
- Distinguish a foreign performer or ensemble (tag 해외연주자 / 해외오케스트라)
  from a Korean performer whose name is written in roman letters. A
  romanized Korean name is NOT a foreign performer.
- Before responding, self-check your answer against all five categories:
  composer, work-form, instrument, era, performer. If the text names a
  symphony but you produced no work-form tag, or names an orchestra but
  you produced no 오케스트라 tag, fix the answer first.

Set "confidence" to "low" when the listing gives you too little to work
with (no program details, ambiguous title), otherwise "high".`

const batchResponseInstruction = `Respond ONLY with a single JSON object keyed by item id:
{"<id>": {"tags": ["..."], "keywords": ["..."], "confidence": "high"}, ...}
Every input id must appear as a key.`

const singleResponseInstruction = `Respond ONLY with a single JSON object:
{"tags": ["..."], "keywords": ["..."], "confidence": "high"}`

const imageTaggingInstruction = `The attached images are posters or programme pages for one concert.
Read every visible piece of text (title, program, performers) and tag the
concert following the rules above.`

// composerExtractionPrompt is the system prompt for the narrow
// composer-name-only variant used by the enforcement pass.
const composerExtractionPrompt = `You are an assistant that extracts composer names from classical-concert
material. List every composer whose work appears on the program, using
canonical Korean spelling where one exists (e.g. 차이콥스키, 무소르그스키),
otherwise the spelling as written. Performers, conductors, and ensembles
are NOT composers. Respond ONLY with a JSON array of names, for example
["베토벤", "브람스"]. Respond with [] when no composer is identifiable.`

// TaggingPrompt renders the full system prompt for a taxonomy.
func TaggingPrompt(tax *taxonomy.Taxonomy) string {
	var b strings.Builder
	b.WriteString(taggingRubric)
	b.WriteString("\n\nTag vocabulary:\n")
	for _, cat := range tax.Categories {
		b.WriteString("- ")
		b.WriteString(cat.Name)
		b.WriteString(": ")
		b.WriteString(strings.Join(cat.Tags, ", "))
		b.WriteString("\n")
	}
	return b.String()
}
