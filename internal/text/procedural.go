package text

import (
	"context"
	"math/rand"
	"strings"
)

// Line length band for generated prose. Lines shorter than minLineChars get
// padded with stock clauses; longer ones are cut at a word boundary. The
// highlight line is never cut below the phrase itself.
const (
	minLineChars = 50
	maxLineChars = 80
)

var wordBanks = map[string][]string{
	"noun": {"time", "person", "year", "way", "day", "thing", "world", "life",
		"hand", "part", "child", "eye", "place", "work", "week", "case",
		"company", "system", "program", "question", "government", "number",
		"night", "point", "home", "water", "room", "mother", "area", "money",
		"story", "fact", "month", "lot", "right", "study", "book", "word", "business"},
	"verb": {"is", "are", "was", "were", "be", "been", "being", "have", "has",
		"had", "do", "does", "did", "done", "make", "makes", "made",
		"know", "thinks", "takes", "goes", "comes", "uses", "finds", "gives",
		"tells", "works", "likes", "needs", "feels", "becomes", "leaves",
		"puts", "means", "keeps", "lets", "begins", "seems", "helps", "shows", "plays"},
	"adj": {"good", "new", "first", "last", "long", "great", "little", "own",
		"other", "old", "right", "big", "high", "different", "small", "large",
		"early", "young", "important", "few", "public", "same", "able",
		"best", "better", "low", "certain", "special", "hard", "major", "personal",
		"current", "national", "natural", "physical", "strong", "possible", "clear"},
	"adv": {"quickly", "slowly", "carefully", "happily", "sadly", "really",
		"very", "extremely", "quite", "rather", "almost", "nearly", "too",
		"also", "then", "however", "again", "still", "sometimes", "often",
		"usually", "always", "never", "ever", "perhaps", "especially",
		"actually", "clearly", "certainly", "absolutely", "completely"},
	"prep": {"in", "on", "with", "at", "by", "for", "from", "to", "of", "about",
		"between", "among", "through", "without", "before", "after",
		"during", "around", "beyond", "under", "over", "into", "against",
		"despite", "throughout", "within", "along", "upon", "beside"},
	"pronoun": {"I", "you", "he", "she", "it", "we", "they", "me", "him", "her",
		"us", "them", "my", "your", "his", "its", "our", "their",
		"mine", "yours", "hers", "ours", "theirs", "myself", "yourself",
		"himself", "herself", "itself", "ourselves", "themselves"},
	"det": {"the", "a", "an", "this", "that", "these", "those", "my", "your", "his",
		"her", "its", "our", "their", "some", "any", "each", "every", "many", "much",
		"few", "several", "all", "both", "either", "neither", "no", "another"},
}

var sentenceStructures = []string{
	"The {adj} {noun} {verb} {adv} {prep} the {adj} {noun}.",
	"{det} {adj} {noun} {verb} {det} {adj} {noun} {prep} {det} {adj} {noun}.",
	"{pronoun} {adv} {verb} that {det} {noun} {verb} {adv} {prep} {det} {noun}.",
	"When {det} {adj} {noun} {verb} {adv}, {det} {adj} {noun} {verb} {prep} {det} {noun}.",
	"If {pronoun} {verb} {det} {adj} {noun}, {pronoun} will {verb} {det} {adj} {noun} {adv}.",
	"{det} {adj} {noun} {verb} to {verb} {prep} {det} {adj} {noun} {prep} {det} {noun}.",
	"{det} {noun} {verb} {adv}, but {det} {adj} {noun} {verb} {prep} {det} {adj} {noun}.",
	"Although {det} {noun} {verb} {adv}, {det} {adj} {noun} {verb} {prep} {det} {adj} {noun}.",
	"Not only {verb} {det} {adj} {noun} {adv}, but it also {verb} {prep} {det} {adj} {noun}.",
	"During {det} {adj} {noun}, {det} {adj} {noun} {verb} {adv} {prep} {det} {noun}.",
	"{det} {adj} {noun} {verb} {adv} because {det} {adj} {noun} {verb} {prep} {det} {noun}.",
	"{det} {noun} that {verb} {prep} {det} {adj} {noun} {adv} {verb} {det} {adj} {noun}.",
	"Why {verb} {det} {adj} {noun} {adv} {prep} {det} {adj} {noun}?",
	"How {adv} {verb} {det} {adj} {noun} {prep} {det} {adj} {noun}?",
}

var extraClauses = []string{
	" in the most unexpected way",
	" as we had anticipated earlier",
	" according to recent observations",
	" with remarkable precision and detail",
	" throughout the entire process",
	" despite previous contradicting evidence",
	" in this particular context",
}

var trailingFillers = []string{"indeed", "for sure", "without doubt", "as expected", "interestingly"}

// Procedural builds snippets from a template grammar, no network involved.
// It is the provider of last resort and never fails for a non-empty phrase.
type Procedural struct {
	rng *rand.Rand
}

// NewProcedural builds a procedural provider on the given random source.
func NewProcedural(rng *rand.Rand) *Procedural {
	return &Procedural{rng: rng}
}

func (p *Procedural) Generate(_ context.Context, highlight string, minLines, maxLines int) (Snippet, error) {
	if minLines < 1 {
		minLines = 1
	}
	if maxLines < minLines {
		maxLines = minLines
	}
	numLines := minLines + p.rng.Intn(maxLines-minLines+1)
	highlightIdx := p.rng.Intn(numLines)

	lines := make([]string, 0, numLines)
	for i := 0; i < numLines; i++ {
		if i == highlightIdx {
			lines = append(lines, p.highlightLine(highlight))
			continue
		}
		lines = append(lines, p.plainLine(highlight))
	}

	sn := Snippet{Lines: lines, HighlightIndex: highlightIdx}
	if err := sn.Validate(highlight, minLines, maxLines, 0, 0); err != nil {
		return Snippet{}, &GenerationError{Provider: "procedural", Err: err}
	}
	return sn, nil
}

// plainLine produces a filler sentence guaranteed not to contain the phrase.
func (p *Procedural) plainLine(highlight string) string {
	var line string
	for attempt := 0; attempt < 4; attempt++ {
		line = p.normalize(p.fill(p.structure(), "", ""))
		if !strings.Contains(line, highlight) {
			return line
		}
	}
	return strings.ReplaceAll(line, highlight, "something else")
}

// highlightLine weaves the phrase into a sentence. Multi-word phrases get
// spliced into templates verbatim; single words are substituted for a slot.
func (p *Procedural) highlightLine(highlight string) string {
	var line string
	if strings.Contains(highlight, " ") {
		templates := []string{
			"The {adj} {noun} " + highlight + " {prep} {det} {adj} {noun}.",
			"{det} {adj} {noun} {adv} " + highlight + " {prep} {det} {noun}.",
			"When " + highlight + ", {det} {adj} {noun} {verb} {adv} {prep} {det} {noun}.",
			"{pronoun} {verb} that " + highlight + " {verb} {adv} {prep} {det} {adj} {noun}.",
			"Because of " + highlight + ", {det} {adj} {noun} {verb} {adv} {prep} {det} {noun}.",
		}
		line = p.fill(templates[p.rng.Intn(len(templates))], "", "")
		for attempt := 0; attempt < 5 && len(line) < minLineChars; attempt++ {
			line = p.fill("Although {det} {adj} {noun} {verb} {adv}, "+highlight+" {verb} {prep} {det} {adj} {noun}.", "", "")
		}
	} else {
		slots := []string{"noun", "verb", "adj"}
		slot := slots[p.rng.Intn(len(slots))]
		line = p.fill(p.structure(), highlight, slot)
		for attempt := 0; attempt < 5 && (len(line) < minLineChars || !strings.Contains(line, highlight)); attempt++ {
			line = p.fill(p.structure(), highlight, slot)
		}
		if !strings.Contains(line, highlight) {
			line = strings.TrimSuffix(line, ".") + " " + highlight + "."
		}
	}
	return p.normalizeKeeping(line, highlight)
}

func (p *Procedural) structure() string {
	return sentenceStructures[p.rng.Intn(len(sentenceStructures))]
}

// fill replaces grammar placeholders with random words. When special is set,
// the first occurrence of its slot gets the special word instead.
func (p *Procedural) fill(structure, special, specialSlot string) string {
	result := structure
	for slot, words := range wordBanks {
		token := "{" + slot + "}"
		for strings.Contains(result, token) {
			word := words[p.rng.Intn(len(words))]
			if special != "" && slot == specialSlot {
				word = special
				special = ""
			}
			result = strings.Replace(result, token, word, 1)
		}
	}
	return p.lengthen(result)
}

// lengthen pads a sentence toward minLineChars by inserting adjectives after
// articles, then by a trailing filler when no article is left to expand.
func (p *Procedural) lengthen(line string) string {
	adjs := wordBanks["adj"]
	for len(line) < minLineChars {
		switch {
		case strings.Contains(line, " the "):
			line = strings.Replace(line, " the ", " the "+adjs[p.rng.Intn(len(adjs))]+" ", 1)
		case strings.Contains(line, " a "):
			line = strings.Replace(line, " a ", " a "+adjs[p.rng.Intn(len(adjs))]+" ", 1)
		default:
			if strings.HasSuffix(line, ".") {
				line = strings.TrimSuffix(line, ".") + " " + trailingFillers[p.rng.Intn(len(trailingFillers))] + "."
			}
			return line
		}
	}
	return line
}

// normalize enforces the [minLineChars, maxLineChars] band: long lines are
// cut at the last word boundary before the limit, short ones get a clause.
func (p *Procedural) normalize(line string) string {
	return p.normalizeKeeping(line, "")
}

func (p *Procedural) normalizeKeeping(line, keep string) string {
	if len(line) < minLineChars {
		clause := extraClauses[p.rng.Intn(len(extraClauses))]
		for _, end := range []string{".", "?", "!"} {
			if strings.HasSuffix(line, end) {
				line = strings.TrimSuffix(line, end) + clause + end
				break
			}
		}
	}
	if len(line) > maxLineChars {
		cut := maxLineChars - 1
		for cut > 0 && line[cut] != ' ' {
			cut--
		}
		// Never cut away the phrase the caller must keep.
		if cut > minLineChars && (keep == "" || strings.Contains(line[:cut], keep)) {
			line = line[:cut] + "."
		}
	}
	return line
}
