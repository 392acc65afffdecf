package rules

import (
	"strconv"
	"strings"

	"github.com/CompassSecurity/responseleak/pkg/scanner/types"
)

// PrefixRegex builds a case-insensitive assignment prefix: any of the
// keywords, an optional identifier tail, an assignment operator and an
// optional (possibly escaped) opening quote.
func PrefixRegex(keywords []string) string {
	return `(?i:` + strings.Join(keywords, "|") + `)\w*["']?]?\s*(?:[:=]|:=|=>|<-|>)\s*(?:\\?["'])?`
}

// KeywordProximityRegex matches a keyword followed by up to maxGap arbitrary
// characters, for secrets that sit near their service name rather than in a
// direct assignment.
func KeywordProximityRegex(keywords []string, maxGap int) string {
	return `(?i:` + strings.Join(keywords, "|") + `)(?:.|[\n\r\t]){0,` + strconv.Itoa(maxGap) + `}?`
}

// SuffixRegex terminates a secret on common boundaries: whitespace, quotes,
// backticks, semicolons, escaped whitespace or quote sequences, a closing
// HTML tag, or end of input.
func SuffixRegex() string {
	return `(?:[\x60'"\s;]|\\[nrt]|\\"|</|$)`
}

var genericKeywords = []string{"key", "api", "token", "secret", "client", "passwd", "password", "auth", "access"}

// genericBody is the length-bounded candidate of the generic family; the
// min_length/max_length tokens are substituted at compile time.
const genericBody = `([a-zA-Z0-9_~+/.=-]{min_length,max_length})`

// DefaultSpecs returns the built-in pattern set. Fixed-format patterns keep
// the candidate token in capture group one so spans bound the secret itself,
// not surrounding context.
func DefaultSpecs() []types.PatternSpec {
	return []types.PatternSpec{
		{
			Name:   GenericSecretName,
			Prefix: PrefixRegex(genericKeywords),
			Body:   genericBody,
			Suffix: SuffixRegex(),
		},
		{
			Name:   GenericSecretV2Name,
			Prefix: `"(?i:[a-z0-9_-]{0,24}(?:key|token|secret|password|credential))"\s*:\s*"`,
			Body:   genericBody,
			Suffix: `\\?"`,
		},
		{
			Name:   GenericSecretV3Name,
			Prefix: `(?i:[a-z0-9_]{0,24}(?:key|token|secret|password|access))=`,
			Body:   genericBody,
			Suffix: `(?:[&\s"']|\\[nrt]|$)`,
		},
		{Name: "AWS Access Key ID", Body: `\b((?:AKIA|ABIA|ACCA|ASIA)[0-9A-Z]{16})\b`},
		{
			Name:   "AWS Secret Access Key",
			Prefix: KeywordProximityRegex([]string{"aws"}, 40),
			Body:   `\b([A-Za-z0-9/+=]{40})`,
			Suffix: SuffixRegex(),
		},
		{Name: "GitHub Personal Access Token", Body: `\b(ghp_[A-Za-z0-9]{30,255})\b`},
		{Name: "GitHub Fine-Grained Token", Body: `\b(github_pat_[A-Za-z0-9_]{60,255})\b`},
		{Name: "GitHub App Token", Body: `\b(gh[osur]_[A-Za-z0-9]{30,255})\b`},
		{Name: "GitLab Personal Access Token", Body: `\b(glpat-[A-Za-z0-9_-]{20,22})`},
		{Name: "Slack Token", Body: `\b(xox[baprs]-[0-9a-zA-Z-]{20,60})\b`},
		{Name: "Stripe Secret Key", Body: `\b((?:sk|rk)_live_[0-9a-zA-Z]{24,99})\b`},
		{Name: "Google API Key", Body: `\b(AIza[0-9A-Za-z_-]{35})`},
		{Name: "SendGrid API Key", Body: `\b(SG\.[A-Za-z0-9_-]{22}\.[A-Za-z0-9_-]{43})`},
		{Name: "Twilio API Key", Body: `\b(SK[0-9a-fA-F]{32})\b`},
		{Name: "npm Access Token", Body: `\b(npm_[A-Za-z0-9]{36})\b`},
		{Name: "OpenAI API Key", Body: `\b(sk-[A-Za-z0-9]{20}T3BlbkFJ[A-Za-z0-9]{20})\b`},
		{Name: "JSON Web Token", Body: `\b(ey[A-Za-z0-9_-]{15,}\.[A-Za-z0-9_-]{15,}\.[A-Za-z0-9_-]{10,})`},
		{Name: "Private Key", Body: `(-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP |ENCRYPTED )?PRIVATE KEY(?: BLOCK)?-----)`},
		{
			Name:   "Heroku API Key",
			Prefix: KeywordProximityRegex([]string{"heroku"}, 40),
			Body:   `\b([0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12})\b`,
		},
		{Name: RecaptchaSiteKeyName, Body: `\b(6L[0-9A-Za-z_-]{38})`},
	}
}
