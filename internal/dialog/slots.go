package dialog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// amountPattern pairs a compiled regex with the multiplier applied to its
// first capture group. Order matters: patterns are tried most-specific
// first, and the first match wins.
type amountPattern struct {
	re         *regexp.Regexp
	multiplier float64
}

// lenderAliases maps a canonical lender name to its surface-form variants.
var lenderAliases = map[string][]string{
	"muthoot":    {"muthoot", "muthut", "muthoot finance"},
	"manappuram": {"manappuram", "manapuram", "manappuram gold"},
	"hdfc":       {"hdfc", "hdfc bank"},
	"icici":      {"icici", "icici bank"},
	"sbi":        {"sbi", "state bank"},
	"kotak":      {"kotak", "kotak mahindra"},
	"axis":       {"axis", "axis bank"},
	"federal":    {"federal", "federal bank"},
	"iifl":       {"iifl", "india infoline"},
}

var indianCities = []string{
	"mumbai", "delhi", "bangalore", "bengaluru", "chennai", "hyderabad",
	"kolkata", "pune", "ahmedabad", "jaipur", "surat", "lucknow",
	"kanpur", "nagpur", "indore", "thane", "bhopal", "visakhapatnam",
	"patna", "vadodara", "ghaziabad", "ludhiana", "agra", "nashik",
	"faridabad", "meerut", "rajkot", "kalyan", "vasai", "varanasi",
	"aurangabad", "dhanbad", "amritsar", "allahabad", "ranchi", "gwalior",
	"jodhpur", "coimbatore", "vijayawada", "madurai", "raipur", "kota",
}

var purposeKeywords = []struct {
	keywords []string
	purpose  string
}{
	{[]string{"medical", "hospital", "treatment", "surgery", "ilaj", "dawai", "doctor"}, "medical"},
	{[]string{"education", "school", "college", "fees", "padhai", "admission"}, "education"},
	{[]string{"business", "shop", "dukan", "karobar", "vyapaar", "investment"}, "business"},
	{[]string{"wedding", "marriage", "shaadi", "vivah", "function"}, "wedding"},
	{[]string{"emergency", "urgent", "zaruri", "turant"}, "emergency"},
	{[]string{"home", "house", "ghar", "renovation", "repair", "construction"}, "home"},
	{[]string{"personal", "family", "apna kaam"}, "personal"},
}

var purityPatterns = []struct {
	re     *regexp.Regexp
	purity string
}{
	{regexp.MustCompile(`(?i)24\s*(?:k|karat|carat|kt)`), "24"},
	{regexp.MustCompile(`(?i)22\s*(?:k|karat|carat|kt)`), "22"},
	{regexp.MustCompile(`(?i)18\s*(?:k|karat|carat|kt)`), "18"},
	{regexp.MustCompile(`(?i)14\s*(?:k|karat|carat|kt)`), "14"},
	{regexp.MustCompile(`(?i)pure\s*gold`), "24"},
	{regexp.MustCompile(`(?i)hallmark(?:ed)?`), "22"},
}

// SlotExtractor is a compiled-once set of pattern groups for the gold-loan
// domain vocabulary, covering Romanized and Devanagari spellings. Safe
// for concurrent use: all state is read-only after construction.
type SlotExtractor struct {
	amountPatterns   []amountPattern
	weightPatterns   []*regexp.Regexp
	phonePatterns    []*regexp.Regexp
	pincodePatterns  []*regexp.Regexp
	locationPatterns []*regexp.Regexp
	monthPattern     *regexp.Regexp
	yearPattern      *regexp.Regexp
	ratePattern      *regexp.Regexp
}

// NewSlotExtractor compiles all pattern groups once.
func NewSlotExtractor() *SlotExtractor {
	return &SlotExtractor{
		amountPatterns: []amountPattern{
			{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:crore|cr|करोड़)`), 10_000_000},
			{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:lakh|lac|लाख)`), 100_000},
			{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:thousand|k|हज़ार|hazar)`), 1_000},
			{regexp.MustCompile(`(?i)(?:₹|rs\.?|rupees?)\s*(\d+(?:,\d+)*)`), 1},
			{regexp.MustCompile(`\b(\d{5,7})\b`), 1},
		},
		weightPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:grams?|gm|g|ग्राम)`),
			regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:tola|तोला)`),
			regexp.MustCompile(`(?i)(?:have|hai|है)\s*(\d+(?:\.\d+)?)\s*(?:grams?|g)?\s*(?:gold|sona|सोना)`),
		},
		phonePatterns: []*regexp.Regexp{
			regexp.MustCompile(`\b([6-9]\d{9})\b`),
			regexp.MustCompile(`(?:\+91|91)?[-\s]?([6-9]\d{9})\b`),
		},
		pincodePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:pincode|pin|पिनकोड)\s*(?:is|hai|है)?\s*(\d{6})`),
			regexp.MustCompile(`\b([1-9]\d{5})\b`),
		},
		locationPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:from|in|at|near|mein|में)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
		},
		monthPattern: regexp.MustCompile(`(\d+)\s*(?:months?|mahine|महीने)`),
		yearPattern:  regexp.MustCompile(`(\d+)\s*(?:years?|saal|साल)`),
		ratePattern:  regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:%|percent|प्रतिशत)`),
	}
}

// Extract runs every sub-extractor over utterance and returns the union of
// matched slots, keyed by slot name.
func (x *SlotExtractor) Extract(utterance string) map[string]Slot {
	slots := map[string]Slot{}

	if v, conf, ok := x.ExtractAmount(utterance); ok {
		slots["loan_amount"] = Slot{Name: "loan_amount", Type: SlotCurrency, Value: formatFloat(v), Confidence: conf, Source: "amount_pattern"}
	}
	if v, conf, ok := x.ExtractWeight(utterance); ok {
		slots["gold_weight"] = Slot{Name: "gold_weight", Type: SlotNumber, Value: formatFloat(v), Confidence: conf, Source: "weight_pattern"}
	}
	if v, conf, ok := x.ExtractPhone(utterance); ok {
		slots["phone_number"] = Slot{Name: "phone_number", Type: SlotPhone, Value: v, Confidence: conf, Source: "phone_pattern"}
	}
	if v, conf, ok := x.ExtractPincode(utterance); ok {
		slots["pincode"] = Slot{Name: "pincode", Type: SlotNumber, Value: v, Confidence: conf, Source: "pincode_pattern"}
	}
	if v, conf, ok := x.ExtractLender(utterance); ok {
		slots["current_lender"] = Slot{Name: "current_lender", Type: SlotEnum, Value: v, Confidence: conf, Source: "lender_alias"}
	}
	if v, conf, ok := x.ExtractPurity(utterance); ok {
		slots["gold_purity"] = Slot{Name: "gold_purity", Type: SlotEnum, Value: normalizeKarat(v), Confidence: conf, Source: "purity_pattern"}
	}
	if v, conf, ok := x.ExtractPurpose(utterance); ok {
		slots["loan_purpose"] = Slot{Name: "loan_purpose", Type: SlotEnum, Value: v, Confidence: conf, Source: "purpose_keyword"}
	}
	if v, conf, ok := x.ExtractLocation(utterance); ok {
		slots["location"] = Slot{Name: "location", Type: SlotLocation, Value: v, Confidence: conf, Source: "location_pattern"}
	}
	if v, conf, ok := x.ExtractTenureMonths(utterance); ok {
		slots["tenure_months"] = Slot{Name: "tenure_months", Type: SlotNumber, Value: strconv.Itoa(v), Confidence: conf, Source: "tenure_pattern"}
	}
	if v, conf, ok := x.ExtractInterestRate(utterance); ok {
		slots["interest_rate"] = Slot{Name: "interest_rate", Type: SlotNumber, Value: formatFloat(v), Confidence: conf, Source: "rate_pattern"}
	}

	return slots
}

// ExtractAmount parses a loan amount, applying the lakh/crore/thousand
// multiplier of whichever pattern matched first, and normalizing by
// stripping comma separators before parsing.
func (x *SlotExtractor) ExtractAmount(utterance string) (float64, float64, bool) {
	lower := strings.ToLower(utterance)
	for _, p := range x.amountPatterns {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		numStr := strings.ReplaceAll(m[1], ",", "")
		num, err := cast.ToFloat64E(numStr)
		if err != nil {
			continue
		}
		amount := num * p.multiplier
		confidence := 0.70
		if strings.Contains(lower, "loan") || strings.Contains(lower, "lakh") ||
			strings.Contains(lower, "amount") || strings.Contains(lower, "chahiye") {
			confidence = 0.90
		}
		return amount, confidence, true
	}
	return 0, 0, false
}

// ExtractWeight parses a gold weight in grams, converting tola to grams
// (1 tola ~= 11.66g).
func (x *SlotExtractor) ExtractWeight(utterance string) (float64, float64, bool) {
	lower := strings.ToLower(utterance)
	for _, re := range x.weightPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		num, err := cast.ToFloat64E(m[1])
		if err != nil {
			continue
		}
		weight := num
		if strings.Contains(lower, "tola") || strings.Contains(lower, "तोला") {
			weight = num * 11.66
		}
		confidence := 0.70
		if strings.Contains(lower, "gold") || strings.Contains(lower, "sona") ||
			strings.Contains(lower, "gram") || strings.Contains(lower, "tola") {
			confidence = 0.90
		}
		return weight, confidence, true
	}
	return 0, 0, false
}

// ExtractPhone returns a 10-digit Indian mobile number if found.
func (x *SlotExtractor) ExtractPhone(utterance string) (string, float64, bool) {
	for _, re := range x.phonePatterns {
		m := re.FindStringSubmatch(utterance)
		if m == nil {
			continue
		}
		if len(m[1]) == 10 {
			return m[1], 0.95, true
		}
	}
	return "", 0, false
}

// ExtractPincode returns a 6-digit Indian pincode if found.
func (x *SlotExtractor) ExtractPincode(utterance string) (string, float64, bool) {
	lower := strings.ToLower(utterance)
	for _, re := range x.pincodePatterns {
		m := re.FindStringSubmatch(utterance)
		if m == nil {
			continue
		}
		pincode := m[1]
		if len(pincode) != 6 || pincode[0] == '0' {
			continue
		}
		confidence := 0.70
		if strings.Contains(lower, "pincode") || strings.Contains(lower, "pin") {
			confidence = 0.95
		}
		return pincode, confidence, true
	}
	return "", 0, false
}

// ExtractLender matches a lender name against the alias table and
// canonicalizes it to its display form.
func (x *SlotExtractor) ExtractLender(utterance string) (string, float64, bool) {
	lower := strings.ToLower(utterance)
	for canonical, variants := range lenderAliases {
		for _, variant := range variants {
			if strings.Contains(lower, variant) {
				confidence := 0.70
				if strings.Contains(lower, "from") || strings.Contains(lower, "with") ||
					strings.Contains(lower, "se") || strings.Contains(lower, "current") {
					confidence = 0.90
				}
				return canonical, confidence, true
			}
		}
	}
	return "", 0, false
}

// ExtractPurity returns a raw karat string ("24","22","18","14").
// Canonicalization to the {18K,22K,24K} display form happens in
// normalizeKarat, called from Extract.
func (x *SlotExtractor) ExtractPurity(utterance string) (string, float64, bool) {
	for _, p := range purityPatterns {
		if p.re.MatchString(utterance) {
			return p.purity, 0.85, true
		}
	}
	return "", 0, false
}

// normalizeKarat canonicalizes a raw karat value to the {18K,22K,24K}
// display form. 14K has no canonical bucket in that set and is rounded
// up to 18K, the nearest higher standard purity.
func normalizeKarat(raw string) string {
	switch raw {
	case "24":
		return "24K"
	case "22":
		return "22K"
	case "18", "14":
		return "18K"
	default:
		return raw
	}
}

// ExtractPurpose matches a loan purpose against the purpose keyword table.
func (x *SlotExtractor) ExtractPurpose(utterance string) (string, float64, bool) {
	lower := strings.ToLower(utterance)
	for _, p := range purposeKeywords {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				return p.purpose, 0.80, true
			}
		}
	}
	return "", 0, false
}

// ExtractLocation matches a known Indian city first, falling back to a
// prepositional capture pattern for unlisted cities.
func (x *SlotExtractor) ExtractLocation(utterance string) (string, float64, bool) {
	lower := strings.ToLower(utterance)
	for _, city := range indianCities {
		if strings.Contains(lower, city) {
			confidence := 0.70
			if strings.Contains(lower, "in ") || strings.Contains(lower, "at ") ||
				strings.Contains(lower, "from ") || strings.Contains(lower, "near ") ||
				strings.Contains(lower, "mein") || strings.Contains(lower, "में") {
				confidence = 0.90
			}
			return canonicalCityName(city), confidence, true
		}
	}
	for _, re := range x.locationPatterns {
		m := re.FindStringSubmatch(utterance)
		if m == nil {
			continue
		}
		loc := m[1]
		if len(loc) >= 3 && len(loc) <= 30 {
			return loc, 0.60, true
		}
	}
	return "", 0, false
}

func canonicalCityName(city string) string {
	if city == "" {
		return city
	}
	return strings.ToUpper(city[:1]) + city[1:]
}

// ExtractTenureMonths parses a loan tenure expressed in months or years,
// clamping to the ranges the original domain validates (1-60 months,
// 1-5 years, converted to months).
func (x *SlotExtractor) ExtractTenureMonths(utterance string) (int, float64, bool) {
	lower := strings.ToLower(utterance)
	if m := x.monthPattern.FindStringSubmatch(lower); m != nil {
		if months, err := cast.ToIntE(m[1]); err == nil && months >= 1 && months <= 60 {
			return months, 0.85, true
		}
	}
	if m := x.yearPattern.FindStringSubmatch(lower); m != nil {
		if years, err := cast.ToIntE(m[1]); err == nil && years >= 1 && years <= 5 {
			return years * 12, 0.85, true
		}
	}
	return 0, 0, false
}

// ExtractInterestRate parses a percentage figure, validated against the
// plausible gold-loan range (5-30%).
func (x *SlotExtractor) ExtractInterestRate(utterance string) (float64, float64, bool) {
	lower := strings.ToLower(utterance)
	m := x.ratePattern.FindStringSubmatch(lower)
	if m == nil {
		return 0, 0, false
	}
	rate, err := cast.ToFloat64E(m[1])
	if err != nil || rate < 5.0 || rate > 30.0 {
		return 0, 0, false
	}
	return rate, 0.85, true
}

func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return fmt.Sprintf("%g", v)
}
