package cost

import (
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/sonnes/lekha/core"
)

// Pricing is the price per million tokens.
type Pricing struct {
	Input  decimal.Decimal
	Output decimal.Decimal
}

var oneMillion = decimal.NewFromInt(1_000_000)

// pricingTable is keyed by model id without its release date.
var pricingTable = map[string]Pricing{
	"claude-opus-4-6":   price(5, 25),
	"claude-opus-4-5":   price(5, 25),
	"claude-opus-4-1":   price(15, 75),
	"claude-opus-4":     price(15, 75),
	"claude-sonnet-4-6": price(3, 15),
	"claude-sonnet-4-5": price(3, 15),
	"claude-sonnet-4":   price(3, 15),
	"claude-3-7-sonnet": price(3, 15),
	"claude-3-5-sonnet": price(3, 15),
	"claude-haiku-4-5":  price(1, 5),
	"claude-3-5-haiku":  price(0.80, 4),
	"claude-3-haiku":    price(0.25, 1.25),
}

func price(input, output float64) Pricing {
	return Pricing{Input: decimal.NewFromFloat(input), Output: decimal.NewFromFloat(output)}
}

// dateSuffixRE matches a trailing release date such as -20250929.
var dateSuffixRE = regexp.MustCompile(`-\d{8}$`)

// NormalizeModel strips the release date from a model id.
// e.g., "claude-sonnet-4-5-20250929" -> "claude-sonnet-4-5"
func NormalizeModel(model string) string {
	return dateSuffixRE.ReplaceAllString(model, "")
}

// GetPricing returns pricing for a model. Unknown models are free rather
// than priced as some other model.
func GetPricing(model string) Pricing {
	if p, ok := pricingTable[NormalizeModel(model)]; ok {
		return p
	}
	log.Debug("no pricing for model", "model", model)
	return Pricing{}
}

// Estimate prices input and output tokens for every model. Each model's
// share is rounded to four decimal places before summing.
func Estimate(models map[string]*core.ModelUsage) decimal.Decimal {
	total := decimal.Zero
	for model, u := range models {
		p := GetPricing(model)
		in := decimal.NewFromInt(u.Input).Div(oneMillion).Mul(p.Input)
		out := decimal.NewFromInt(u.Output).Div(oneMillion).Mul(p.Output)
		total = total.Add(in.Add(out).Round(4))
	}
	return total
}
