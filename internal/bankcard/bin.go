package bankcard

import (
	"sort"
	"unicode/utf8"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/labfund/fundops/internal/textnorm"
)

// BINLength is the number of leading digits identifying the issuing bank.
const BINLength = 6

// defaultDrift is the largest edit distance, as a percentage of the longer
// name, at which a misspelt bank name still resolves to a known bank. At 20%
// a six-character name tolerates one typo; "中国光大银行" stays distinct from
// "中国银行".
const defaultDrift = 20.0

// binTable maps 6-digit BIN prefixes to issuing bank names.
var binTable = map[string]string{
	"621700": "中国建设银行",
	"622700": "中国建设银行",
	"436742": "中国建设银行",
	"622280": "中国建设银行",
	"622202": "中国工商银行",
	"622208": "中国工商银行",
	"621226": "中国工商银行",
	"955880": "中国工商银行",
	"622848": "中国农业银行",
	"622845": "中国农业银行",
	"621282": "中国农业银行",
	"621661": "中国银行",
	"601382": "中国银行",
	"621785": "中国银行",
	"622588": "招商银行",
	"621485": "招商银行",
	"622260": "交通银行",
	"622262": "交通银行",
	"622150": "中国邮政储蓄银行",
	"621799": "中国邮政储蓄银行",
	"622908": "兴业银行",
	"622690": "中信银行",
	"622622": "中国民生银行",
	"622630": "华夏银行",
	"622521": "浦发银行",
}

// bankNames is the sorted, de-duplicated list of bank names in binTable.
var bankNames = func() []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range binTable {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}()

// LookupBIN returns the bank issuing the card whose digits start with a known
// BIN prefix.
func LookupBIN(digits string) (string, bool) {
	if len(digits) < BINLength {
		return "", false
	}
	name, ok := binTable[digits[:BINLength]]
	return name, ok
}

// BankNames returns the known bank names in sorted order.
func BankNames() []string {
	out := make([]string, len(bankNames))
	copy(out, bankNames)
	return out
}

// CanonicalBankName resolves a free-text bank name taken from a statement or a
// form ("建设银行", "中国建设银行北京海淀支行") to one of the known bank names.
// Names of banks outside the table do not resolve.
//
// A known name contained in the input wins, longest first. Otherwise an input
// of at least four characters contained in exactly one known name wins.
// Otherwise a single closest known name within the drift threshold wins; a
// tie resolves nothing.
func CanonicalBankName(name string) (string, bool) {
	in := textnorm.Normalize(name)
	if in == "" {
		return "", false
	}

	best := ""
	for _, known := range bankNames {
		if textnorm.Contains(in, known) && utf8.RuneCountInString(known) > utf8.RuneCountInString(best) {
			best = known
		}
	}
	if best != "" {
		return best, true
	}

	if utf8.RuneCountInString(in) >= 4 {
		var hits []string
		for _, known := range bankNames {
			if textnorm.Contains(known, in) {
				hits = append(hits, known)
			}
		}
		if len(hits) == 1 {
			return hits[0], true
		}
		if len(hits) > 1 {
			return "", false
		}
	}

	bestDist, ties := -1, 0
	for _, known := range bankNames {
		d, ok := drift(in, textnorm.Normalize(known), defaultDrift)
		if !ok {
			continue
		}
		switch {
		case bestDist < 0 || d < bestDist:
			bestDist, best, ties = d, known, 1
		case d == bestDist:
			ties++
		}
	}
	if ties != 1 {
		return "", false
	}
	return best, true
}

// drift returns the edit distance of a and b and whether it is within pct
// percent of the longer one.
func drift(a, b string, pct float64) (int, bool) {
	distance := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	maxLength := float64(max(utf8.RuneCountInString(a), utf8.RuneCountInString(b)))
	return distance, distance <= int(maxLength*(pct/100))
}
