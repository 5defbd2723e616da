package translit

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var consonants = map[rune]string{
	'क': "k", 'ख': "kh", 'ग': "g", 'घ': "gh", 'ङ': "n",
	'च': "ch", 'छ': "chh", 'ज': "j", 'झ': "jh", 'ञ': "n",
	'ट': "t", 'ठ': "th", 'ड': "d", 'ढ': "dh", 'ण': "n",
	'त': "t", 'थ': "th", 'द': "d", 'ध': "dh", 'न': "n",
	'प': "p", 'फ': "ph", 'ब': "b", 'भ': "bh", 'म': "m",
	'य': "y", 'र': "r", 'ल': "l", 'व': "v", 'ळ': "l",
	'श': "sh", 'ष': "sh", 'स': "s", 'ह': "h",
}

var independentVowels = map[rune]string{
	'अ': "a", 'आ': "a", 'इ': "i", 'ई': "ee", 'उ': "u", 'ऊ': "oo",
	'ऋ': "ri", 'ए': "e", 'ऐ': "ai", 'ओ': "o", 'औ': "au",
	'ऑ': "o", 'ॲ': "a",
}

var vowelSigns = map[rune]string{
	'ा': "a", 'ि': "i", 'ी': "ee", 'ु': "u", 'ू': "oo", 'ृ': "ri",
	'े': "e", 'ै': "ai", 'ो': "o", 'ौ': "au", 'ॉ': "o", 'ॅ': "e",
}

const (
	virama       = '्'
	anusvara     = 'ं'
	chandrabindu = 'ँ'
	visarga      = 'ः'
	nukta        = '़'
	avagraha     = 'ऽ'
	danda        = '।'
	doubleDanda  = '॥'
)

var (
	labelSeparators = regexp.MustCompile(`[|:]+`)
	nameLabels      = map[string]bool{"नाव": true, "नांव": true, "नव": true}
)

type segmentKind int

const (
	kindConsonant segmentKind = iota
	kindVowel
	kindNasal
	kindOther
)

type segment struct {
	kind  segmentKind
	text  string
	vowel string
	schwa bool
	// cluster marks a consonant that follows a virama.
	cluster bool
}

func (s segment) voiced() bool {
	return s.vowel != ""
}

// Local is the rule-based Devanagari to Latin scheme. It drops the
// inherent vowel at the end of a word and between two consonants where
// Marathi speech elides it, so राजभर reads Rajbhar and not Rajabhara.
type Local struct{}

// Transliterate implements Transliterator.
func (Local) Transliterate(_ context.Context, names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = TransliterateName(name)
	}
	return out, nil
}

// TransliterateName converts one name with the local scheme.
func TransliterateName(name string) string {
	name = labelSeparators.ReplaceAllString(name, " ")
	var words []string
	for _, w := range strings.Fields(name) {
		if nameLabels[w] {
			continue
		}
		if latin := transliterateWord(w); latin != "" {
			words = append(words, latin)
		}
	}
	if len(words) == 0 {
		return ""
	}
	// Casers carry state, so one per call.
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

func transliterateWord(word string) string {
	segs := segmentWord([]rune(word))
	elideSchwa(segs)

	var b strings.Builder
	for i, s := range segs {
		switch s.kind {
		case kindConsonant:
			b.WriteString(s.text)
			b.WriteString(s.vowel)
		case kindVowel:
			b.WriteString(s.vowel)
		case kindNasal:
			b.WriteString(nasalBefore(segs, i))
		default:
			b.WriteString(s.text)
		}
	}
	return b.String()
}

func segmentWord(runes []rune) []segment {
	var segs []segment
	cluster := false
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if latin, ok := consonants[r]; ok {
			// ज्ञ is pronounced dny in Marathi.
			if r == 'ज' && i+2 < len(runes) && runes[i+1] == virama && runes[i+2] == 'ञ' {
				latin = "dny"
				i += 2
			}
			s := segment{kind: kindConsonant, text: latin, cluster: cluster}
			cluster = false
			if i+1 < len(runes) && runes[i+1] == nukta {
				i++
			}
			switch next := peek(runes, i+1); {
			case next == virama:
				cluster = true
				i++
			case vowelSigns[next] != "":
				s.vowel = vowelSigns[next]
				i++
			default:
				s.vowel = "a"
				s.schwa = true
			}
			segs = append(segs, s)
			continue
		}
		cluster = false
		switch {
		case independentVowels[r] != "":
			segs = append(segs, segment{kind: kindVowel, vowel: independentVowels[r]})
		case r == anusvara || r == chandrabindu:
			segs = append(segs, segment{kind: kindNasal})
		case r == visarga:
			segs = append(segs, segment{kind: kindOther, text: "h"})
		case r == nukta || r == avagraha || r == danda || r == doubleDanda || r == virama:
		case vowelSigns[r] != "":
			// A stray sign without a consonant still carries its sound.
			segs = append(segs, segment{kind: kindVowel, vowel: vowelSigns[r]})
		case r >= '०' && r <= '९':
			segs = append(segs, segment{kind: kindOther, text: string('0' + (r - '०'))})
		default:
			segs = append(segs, segment{kind: kindOther, text: string(r)})
		}
	}
	return segs
}

func peek(runes []rune, i int) rune {
	if i < len(runes) {
		return runes[i]
	}
	return 0
}

// elideSchwa removes inherent vowels the spoken name does not carry.
func elideSchwa(segs []segment) {
	syllables := 0
	for _, s := range segs {
		if s.voiced() {
			syllables++
		}
	}

	// Word-final: राम -> ram. Conjuncts ending in r or y keep it (mitra, satya).
	if n := len(segs); n > 0 && syllables > 1 {
		last := &segs[n-1]
		if last.kind == kindConsonant && last.schwa && !(last.cluster && (last.text == "r" || last.text == "y")) {
			last.vowel = ""
			last.schwa = false
		}
	}

	// Medial, in the context vowel-C_C-vowel: राजभर -> rajbhar.
	for i := 1; i+1 < len(segs); i++ {
		s := &segs[i]
		if s.kind != kindConsonant || !s.schwa || s.cluster {
			continue
		}
		prev, next := segs[i-1], segs[i+1]
		if !prev.voiced() || next.kind != kindConsonant || !next.voiced() {
			continue
		}
		s.vowel = ""
		s.schwa = false
	}
}

// nasalBefore renders an anusvara as m before labials and n elsewhere.
func nasalBefore(segs []segment, i int) string {
	if i+1 < len(segs) && segs[i+1].kind == kindConsonant {
		switch segs[i+1].text[0] {
		case 'p', 'b', 'm':
			return "m"
		}
	}
	return "n"
}
