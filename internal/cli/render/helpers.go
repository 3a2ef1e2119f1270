package render

import (
	"errors"
	"math/big"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error for the terminal. Deployment failures name the
// state they stopped in so the user knows where a rerun resumes.
func FormatError(err error) string {
	var deployErr *domain.DeploymentError
	if errors.As(err, &deployErr) {
		return color.New(color.FgRed).Sprintf("❌ Deployment stopped in %s: %s",
			StateTitle(deployErr.State), capitalize(deployErr.Err.Error()))
	}
	return color.New(color.FgRed).Sprintf("❌ %s", capitalize(err.Error()))
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// FormatEther renders a wei amount in ether without trailing zeros
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "-"
	}
	s := new(big.Rat).SetFrac(wei, weiPerEther).FloatString(18)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s + " ETH"
}

// StateTitle turns a state name such as SelfTxPending into "Self Tx Pending"
func StateTitle[S ~string](state S) string {
	var words []string
	var current []rune
	for i, r := range string(state) {
		if i > 0 && unicode.IsUpper(r) && len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
		current = append(current, unicode.ToLower(r))
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}

func capitalize(msg string) string {
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
