package scoring

import "strings"

// Brand is a trusted brand and the domains it legitimately sends from
type Brand struct {
	Name    string
	Domains []string
}

// TrustedBrands is the trusted domain registry. Order matters: impersonated
// brands are reported in this order.
var TrustedBrands = []Brand{
	{Name: "amazon", Domains: []string{"amazon.com", "amazonaws.com"}},
	{Name: "paypal", Domains: []string{"paypal.com"}},
	{Name: "apple", Domains: []string{"apple.com", "icloud.com"}},
	{Name: "microsoft", Domains: []string{"microsoft.com", "outlook.com", "live.com", "office.com"}},
	{Name: "google", Domains: []string{"google.com", "gmail.com"}},
	{Name: "netflix", Domains: []string{"netflix.com"}},
	{Name: "facebook", Domains: []string{"facebook.com", "fb.com"}},
}

// LookAlikes maps characters used in spoofed domains to the letter they imitate
var LookAlikes = map[rune]rune{
	'0': 'o',
	'1': 'l',
	'3': 'e',
	'@': 'a',
	'5': 's',
	'4': 'a',
	'7': 't',
	'$': 's',
}

// shortenerSource is maintained by hand and may contain duplicates
var shortenerSource = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "ow.ly", "t.co", "ow.ly", "is.gd", "buff.ly", "adf.ly",
}

// Shorteners is the deduplicated list of known link-shortening domains
var Shorteners = Dedupe(shortenerSource)

// DefaultBuzzwords are matched against the subject line
var DefaultBuzzwords = []string{"urgent"}

// Weights holds the points each rule contributes when triggered
type Weights struct {
	Buzzword      int
	Shortener     int
	Impersonation int
	Typosquat     int
}

// DefaultWeights is the canonical weight table
var DefaultWeights = Weights{
	Buzzword:      20,
	Shortener:     40,
	Impersonation: 50,
	Typosquat:     30,
}

// Dedupe lower-cases and trims entries, dropping blanks and repeats while
// keeping first-seen order
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
