package engine

import "github.com/auroraclub/memberqa/internal/models"

// The heuristic tables below are data, not code: extending a trigger
// phrase, a stop word or a unit noun must not require touching the
// pipeline control flow.

// typeTrigger maps a set of trigger phrases to a question type.
// Order matters: more specific phrases come first, so "how many" wins
// over a bare "how" and "what time" wins over a bare "what".
type typeTrigger struct {
	Type     models.QuestionType
	Triggers []string
}

var typeTriggers = []typeTrigger{
	{models.QuestionHowMany, []string{"how many", "how much", "number of", "count of", "quantity"}},
	{models.QuestionWhen, []string{"when", "what time", "schedule", "what date"}},
	{models.QuestionWhere, []string{"where", "location", "destination"}},
	{models.QuestionWho, []string{"who", "whose", "which person"}},
	{models.QuestionWhy, []string{"why", "reason", "because"}},
	{models.QuestionWhat, []string{"what", "which"}},
	{models.QuestionHow, []string{"how"}},
}

// stopWords are excluded from both keyword extraction and entity
// detection. The list folds in question words, auxiliaries and the
// generic activity words that show up in nearly every question about
// this corpus.
var stopWords = map[string]struct{}{
	"when": {}, "what": {}, "where": {}, "who": {}, "why": {}, "how": {},
	"which": {}, "whose": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "can": {},
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "about": {}, "from": {}, "up": {}, "out": {},
	"down": {}, "off": {}, "over": {}, "under": {},
	"many": {}, "much": {}, "some": {}, "any": {}, "all": {}, "most": {},
	"few": {}, "several": {}, "planning": {}, "going": {}, "visiting": {},
	"traveling": {}, "trip": {}, "time": {},
	"favorite": {}, "preferred": {}, "best": {}, "good": {}, "great": {},
	"nice": {}, "today": {}, "tomorrow": {}, "yesterday": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "here": {}, "there": {},
}

var dayNames = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

var monthNames = map[string]struct{}{
	"january": {}, "february": {}, "march": {}, "april": {}, "may": {},
	"june": {}, "july": {}, "august": {}, "september": {}, "october": {},
	"november": {}, "december": {},
}

// dayModifiers qualify a day name into a phrase like "this friday".
var dayModifiers = map[string]struct{}{
	"this": {}, "next": {}, "last": {},
}

var relativeTimeWords = map[string]struct{}{
	"today": {}, "tomorrow": {}, "tonight": {}, "yesterday": {},
}

// numberWords maps spelled-out quantities to their normalized numeral.
var numberWords = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10",
	"eleven": "11", "twelve": "12", "thirteen": "13", "fourteen": "14",
	"fifteen": "15", "sixteen": "16", "seventeen": "17", "eighteen": "18",
	"nineteen": "19", "twenty": "20",
}

// unitNouns are the nouns a quantity typically counts in this corpus.
var unitNouns = map[string]struct{}{
	"people": {}, "person": {}, "guest": {}, "guests": {},
	"ticket": {}, "tickets": {}, "table": {}, "tables": {},
	"car": {}, "cars": {}, "room": {}, "rooms": {},
	"item": {}, "items": {}, "seat": {}, "seats": {},
	"night": {}, "nights": {}, "day": {}, "days": {},
}

// locationPrepositions introduce a place name ("to Paris", "in Milan").
var locationPrepositions = map[string]struct{}{
	"to": {}, "in": {}, "at": {}, "from": {}, "near": {},
}

// knownPlaces is a fallback list of destinations that recur in member
// messages, matched case-insensitively anywhere in the text.
var knownPlaces = []string{
	"paris", "london", "milan", "rome", "barcelona", "madrid", "berlin",
	"amsterdam", "dubai", "tokyo", "sydney", "new york", "los angeles",
	"san francisco", "monaco", "geneva", "vienna",
}

// establishmentContext words signal that a nearby proper-noun span is
// the establishment or object a "what" question asks about.
var establishmentContext = []string{
	"reservation", "dinner", "lunch", "table", "book", "booked",
	"restaurant", "hotel", "tickets", "at",
}

// spanStopWords never begin or extend a capitalized proper-noun span.
// "The" is handled separately: it may begin a span when followed by
// another capitalized word ("The French Laundry").
var spanStopWords = map[string]struct{}{
	"a": {}, "an": {}, "for": {}, "at": {}, "in": {}, "on": {},
	"this": {}, "that": {}, "today": {}, "tomorrow": {}, "tonight": {},
	"please": {}, "can": {}, "could": {}, "i": {}, "my": {},
}
