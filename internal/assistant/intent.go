package assistant

import (
	"log"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-assistant/internal/common"
)

// Topic is what the user asks about.
type Topic string

const (
	TopicGeneral     Topic = "general"
	TopicRain        Topic = "rain"
	TopicTemperature Topic = "temperature"
)

// Timeframe is when the user asks about.
type Timeframe string

const (
	TimeframeNow      Timeframe = "now"
	TimeframeTomorrow Timeframe = "tomorrow"
)

// PlaceKind tells how the user referred to a place.
type PlaceKind string

const (
	PlaceUnspecified PlaceKind = "unspecified"
	PlaceExplicit    PlaceKind = "explicit"
	PlaceHere        PlaceKind = "here"
)

// PlaceReference is an explicit place phrase, a "here" reference, or nothing.
// Text is only set for PlaceExplicit.
type PlaceReference struct {
	Kind PlaceKind `json:"kind"`
	Text string    `json:"text,omitempty"`
}

// Intent is the structured reading of one utterance.
type Intent struct {
	Topic     Topic          `json:"topic"`
	Timeframe Timeframe      `json:"timeframe"`
	Place     PlaceReference `json:"place"`
}

// utterance is the normalized form every rule sees.
type utterance struct {
	text   string
	words  []string
	tokens map[string]bool
}

func normalize(raw string) utterance {
	text := cases.Lower(language.Und).String(strings.TrimSpace(raw))
	text = strings.TrimRight(text, "?!. ")

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	tokens := make(map[string]bool, len(words))
	for _, w := range words {
		tokens[w] = true
	}
	return utterance{text: text, words: words, tokens: tokens}
}

func (u utterance) hasWord(words ...string) bool {
	for _, w := range words {
		if u.tokens[w] {
			return true
		}
	}
	return false
}

// fragment is the partial intent a rule contributes. Nil fields are left
// for later rules.
type fragment struct {
	topic     *Topic
	timeframe *Timeframe
	place     *PlaceReference
}

type rule struct {
	name  string
	match func(u utterance) (fragment, bool)
}

func topicFragment(t Topic) fragment {
	return fragment{topic: &t}
}

func timeframeFragment(t Timeframe) fragment {
	return fragment{timeframe: &t}
}

func placeFragment(p PlaceReference) fragment {
	return fragment{place: &p}
}

// placePattern captures the last "in <place>" phrase running to the end of
// the utterance.
var placePattern = regexp.MustCompile(`^.*(?:^|\s)in\s+([\p{L}\p{N} ,.'-]+)$`)

var temporalWords = map[string]bool{
	"today":     true,
	"tomorrow":  true,
	"tonight":   true,
	"now":       true,
	"currently": true,
}

func explicitPlace(u utterance) (fragment, bool) {
	m := placePattern.FindStringSubmatch(u.text)
	if m == nil {
		return fragment{}, false
	}
	words := strings.Fields(m[1])
	var kept []string
	for i := 0; i < len(words); i++ {
		w := strings.Trim(words[i], ",.")
		if temporalWords[w] {
			continue
		}
		// "right now" is a timeframe; "right" alone may be part of a name.
		if w == "right" && i+1 < len(words) && strings.Trim(words[i+1], ",.") == "now" {
			i++
			continue
		}
		kept = append(kept, words[i])
	}
	place := strings.Trim(strings.Join(kept, " "), " ,.'-")
	if place == "" {
		return fragment{}, false
	}
	return placeFragment(PlaceReference{Kind: PlaceExplicit, Text: place}), true
}

// rules are evaluated in order; the first rule to set a field wins it.
// Place: explicit > here > unspecified. Topic: rain > temperature > general.
// Timeframe: tomorrow > now.
var rules = []rule{
	{"explicit-place", explicitPlace},
	{"here-reference", func(u utterance) (fragment, bool) {
		if u.hasWord("here") || common.HasPhrase(u.words, "my location", "my area", "near me") {
			return placeFragment(PlaceReference{Kind: PlaceHere}), true
		}
		return fragment{}, false
	}},
	{"rain-topic", func(u utterance) (fragment, bool) {
		return topicFragment(TopicRain), u.hasWord("rain", "raining", "rainy")
	}},
	{"temperature-topic", func(u utterance) (fragment, bool) {
		return topicFragment(TopicTemperature), u.hasWord("temp", "temperature", "hot", "cold")
	}},
	{"tomorrow-timeframe", func(u utterance) (fragment, bool) {
		return timeframeFragment(TimeframeTomorrow), u.hasWord("tomorrow")
	}},
	{"now-timeframe", func(u utterance) (fragment, bool) {
		return timeframeFragment(TimeframeNow), u.hasWord("now", "currently", "today")
	}},
}

// ParseIntent extracts topic, timeframe and place reference from raw text.
func ParseIntent(raw string) Intent {
	u := normalize(raw)

	var (
		merged  fragment
		matched []string
	)
	for _, r := range rules {
		f, ok := r.match(u)
		if !ok {
			continue
		}
		matched = append(matched, r.name)
		if merged.place == nil {
			merged.place = f.place
		}
		if merged.topic == nil {
			merged.topic = f.topic
		}
		if merged.timeframe == nil {
			merged.timeframe = f.timeframe
		}
	}

	intent := Intent{
		Topic:     TopicGeneral,
		Timeframe: TimeframeNow,
		Place:     PlaceReference{Kind: PlaceUnspecified},
	}
	if merged.topic != nil {
		intent.Topic = *merged.topic
	}
	if merged.timeframe != nil {
		intent.Timeframe = *merged.timeframe
	}
	if merged.place != nil {
		intent.Place = *merged.place
	}

	log.Printf("DEBUG: intent %+v from rules %v", intent, matched)
	return intent
}
