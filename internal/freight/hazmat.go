package freight

import (
	"regexp"
	"strings"
)

// MiscDangerousGoodsNMFC is the NMFC item applied when a hazard class has no rule.
const MiscDangerousGoodsNMFC = "48700"

// HazmatRule pairs a DOT hazard class or division with its NMFC item and freight class.
// Hazmat freight classes are rule-based and never derived from density.
type HazmatRule struct {
	HazardClass string `json:"hazardClass"`
	Name        string `json:"name"`
	NMFC        string `json:"nmfcCode"`
	Class       Class  `json:"freightClass"`
}

// Match reports how a hazard class was resolved against the rule table.
type Match string

const (
	MatchExact     Match = "exact"
	MatchMainClass Match = "main-class"
	MatchDefault   Match = "default"
)

var defaultHazmatRule = HazmatRule{
	HazardClass: "9",
	Name:        "Miscellaneous Dangerous Goods",
	NMFC:        MiscDangerousGoodsNMFC,
	Class:       Class85,
}

var hazmatRules = map[string]HazmatRule{
	"1.1": {"1.1", "Explosives (mass explosion)", "44150", Class200},
	"1.2": {"1.2", "Explosives (projection hazard)", "44150", Class200},
	"1.3": {"1.3", "Explosives (fire hazard)", "44155", Class175},
	"1.4": {"1.4", "Explosives (minor hazard)", "44160", Class125},
	"1.5": {"1.5", "Very Insensitive Explosives", "44150", Class200},
	"2.1": {"2.1", "Flammable Gas", "48590", Class100},
	"2.2": {"2.2", "Non-Flammable Gas", "48600", Class85},
	"2.3": {"2.3", "Toxic Gas", "48605", Class125},
	"3":   {"3", "Flammable Liquids", "48635", Class92_5},
	"4.1": {"4.1", "Flammable Solids", "48640", Class100},
	"4.2": {"4.2", "Spontaneously Combustible", "48645", Class100},
	"4.3": {"4.3", "Dangerous When Wet", "48650", Class125},
	"5.1": {"5.1", "Oxidizers", "48660", Class92_5},
	"5.2": {"5.2", "Organic Peroxides", "48665", Class100},
	"6.1": {"6.1", "Toxic Substances", "48670", Class85},
	"6.2": {"6.2", "Infectious Substances", "48675", Class150},
	"7":   {"7", "Radioactive Material", "48680", Class150},
	"8":   {"8", "Corrosives", "48685", Class85},
	"9":   {"9", "Miscellaneous Dangerous Goods", "48700", Class85},
}

// HazmatRules returns a copy of the rule table keyed by hazard class.
func HazmatRules() map[string]HazmatRule {
	out := make(map[string]HazmatRule, len(hazmatRules))
	for k, v := range hazmatRules {
		out[k] = v
	}
	return out
}

// DefaultHazmatRule returns the miscellaneous dangerous goods fallback.
func DefaultHazmatRule() HazmatRule {
	return defaultHazmatRule
}

// HazmatRuleFor resolves a hazard class by exact key, then by main class
// (the part before the decimal), then falls back to the default rule.
func HazmatRuleFor(hazardClass string) (HazmatRule, Match) {
	hc := NormalizeHazardClass(hazardClass)

	if rule, ok := hazmatRules[hc]; ok {
		return rule, MatchExact
	}

	if main, _, found := strings.Cut(hc, "."); found {
		if rule, ok := hazmatRules[main]; ok {
			return rule, MatchMainClass
		}
	}

	return defaultHazmatRule, MatchDefault
}

// NormalizeHazardClass trims whitespace and a leading "class"/"div" word.
func NormalizeHazardClass(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, prefix := range []string{"class", "division", "div."} {
		s = strings.TrimPrefix(s, prefix)
	}
	return strings.TrimSpace(s)
}

// NormalizePackingGroup maps "1"/"i"/"PG II" style inputs onto I, II, or III.
// Unrecognized values are returned upper-cased and trimmed.
func NormalizePackingGroup(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "PG"))
	switch s {
	case "1", "I":
		return "I"
	case "2", "II":
		return "II"
	case "3", "III":
		return "III"
	}
	return s
}

var (
	unExact    = regexp.MustCompile(`(?i)^(?:UN|NA)?\s*-?\s*(\d{4})$`)
	unPrefixed = regexp.MustCompile(`(?i)\b(?:UN|NA)\s*-?\s*(\d{4})\b`)
	unBare     = regexp.MustCompile(`\b(\d{4})\b`)
)

// ParseUNNumber normalizes "UN1203", "un 1203", or "1203" into "UN1203".
func ParseUNNumber(s string) (string, bool) {
	m := unExact.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return "UN" + m[1], true
}

// FindUNNumber detects a four-digit UN number in free text. An explicit
// UN/NA prefix wins over a bare four-digit token.
func FindUNNumber(text string) (string, bool) {
	if m := unPrefixed.FindStringSubmatch(text); m != nil {
		return "UN" + m[1], true
	}
	if m := unBare.FindStringSubmatch(text); m != nil {
		return "UN" + m[1], true
	}
	return "", false
}

// MentionsUNNumber reports whether text cites un ("UN1203") as a prefixed,
// whole token such as "UN1203", "un 1203" or "NA-1203". Bare digits do not
// count, so "11203" and the year "1203" never match.
func MentionsUNNumber(text, un string) bool {
	re, ok := UNNumberMatcher(un)
	return ok && re.MatchString(text)
}

// UNNumberMatcher compiles the expression used by MentionsUNNumber.
func UNNumberMatcher(un string) (*regexp.Regexp, bool) {
	digits, ok := unDigits(un)
	if !ok {
		return nil, false
	}
	return regexp.MustCompile(`(?i)\b(?:UN|NA)\s*-?\s*` + digits + `\b`), true
}

// UNNumberPattern returns a PostgreSQL case-insensitive regular expression
// (for use with ~*) equivalent to MentionsUNNumber.
func UNNumberPattern(un string) (string, bool) {
	digits, ok := unDigits(un)
	if !ok {
		return "", false
	}
	return `\m(UN|NA)\s*-?\s*` + digits + `\M`, true
}

func unDigits(un string) (string, bool) {
	n, ok := ParseUNNumber(un)
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(n, "UN"), true
}
