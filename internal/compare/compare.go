// Package compare ranks resolved funds by cost per gram of gold exposure.
package compare

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"goldetf/internal/fund"
)

// ErrNoFunds is returned when a comparison is requested over zero funds.
// Callers must check for resolvable funds before invoking the engine.
var ErrNoFunds = errors.New("no funds provided for comparison")

// Diff describes how much more expensive a fund is than the cheapest one.
type Diff struct {
	Absolute     float64  `json:"absolute"`
	Percent      float64  `json:"percent"`
	PerGramPrice *float64 `json:"per_gram_price,omitempty"`
}

// Result is the ranked comparison across all resolvable funds.
type Result struct {
	Cheapest          fund.Quote      `json:"cheapest"`
	AllETFs           []fund.Quote    `json:"all_etfs"`
	PriceDifference   map[string]Diff `json:"price_difference"`
	Recommendation    string          `json:"recommendation"`
	SpotGramGoldPrice *float64        `json:"spot_gram_gold_price"`
}

// Compare ranks funds by per-gram price when gold backing is known for at
// least one of them, appending backing-less funds after, sorted by raw
// price. With no backing information at all it degrades to a raw unit-price
// comparison.
func Compare(funds []fund.Quote) (Result, error) {
	if len(funds) == 0 {
		return Result{}, ErrNoFunds
	}

	withBacking := make([]fund.Quote, 0, len(funds))
	withoutBacking := make([]fund.Quote, 0, len(funds))
	for _, f := range funds {
		if _, ok := f.PerGram(); ok {
			withBacking = append(withBacking, f)
		} else {
			withoutBacking = append(withoutBacking, f)
		}
	}

	if len(withBacking) == 0 {
		return compareByUnitPrice(funds), nil
	}

	sort.SliceStable(withBacking, func(i, j int) bool {
		pi, _ := withBacking[i].PerGram()
		pj, _ := withBacking[j].PerGram()
		return pi < pj
	})
	cheapest := withBacking[0]
	cheapestPerGram, _ := cheapest.PerGram()

	diffs := make(map[string]Diff, len(withBacking))
	for _, f := range withBacking[1:] {
		perGram, _ := f.PerGram()
		diff := perGram - cheapestPerGram
		diffs[f.Symbol] = Diff{
			Absolute:     round4(diff),
			Percent:      round2(diff / cheapestPerGram * 100),
			PerGramPrice: ptr(round4(perGram)),
		}
	}

	var recommendation string
	if len(diffs) > 0 {
		sum := 0.0
		for _, d := range diffs {
			sum += d.Percent
		}
		avg := sum / float64(len(diffs))
		recommendation = fmt.Sprintf(
			"Cheapest by per-gram price: %s (%.4f TL/gram). On average %.2f%% cheaper than the alternatives.",
			cheapest.Symbol, round4(cheapestPerGram), round2(avg))
	} else {
		recommendation = fmt.Sprintf("Only option with gold backing: %s (%.4f TL/gram).",
			cheapest.Symbol, round4(cheapestPerGram))
	}

	sort.SliceStable(withoutBacking, func(i, j int) bool {
		return withoutBacking[i].CurrentPrice < withoutBacking[j].CurrentPrice
	})
	ranked := append(append(make([]fund.Quote, 0, len(funds)), withBacking...), withoutBacking...)

	return Result{
		Cheapest:        cheapest,
		AllETFs:         ranked,
		PriceDifference: diffs,
		Recommendation:  recommendation,
	}, nil
}

// compareByUnitPrice is the fallback when no fund reports gold backing.
func compareByUnitPrice(funds []fund.Quote) Result {
	cheapest := funds[0]
	for _, f := range funds[1:] {
		if f.CurrentPrice < cheapest.CurrentPrice {
			cheapest = f
		}
	}

	diffs := make(map[string]Diff, len(funds))
	for _, f := range funds {
		if f.Symbol == cheapest.Symbol {
			continue
		}
		diff := f.CurrentPrice - cheapest.CurrentPrice
		diffs[f.Symbol] = Diff{
			Absolute: round4(diff),
			Percent:  round2(diff / cheapest.CurrentPrice * 100),
		}
	}

	ranked := append(make([]fund.Quote, 0, len(funds)), funds...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].CurrentPrice < ranked[j].CurrentPrice })

	return Result{
		Cheapest:        cheapest,
		AllETFs:         ranked,
		PriceDifference: diffs,
		Recommendation: fmt.Sprintf("Cheapest by unit price: %s (%.4f TL/unit).",
			cheapest.Symbol, cheapest.CurrentPrice),
	}
}

// Summary is the per-fund block inside a two-fund comparison.
type Summary struct {
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name"`
	Price            float64  `json:"price"`
	ChangePercent    float64  `json:"change_percent"`
	Volume           *int64   `json:"volume"`
	GoldBackingGrams *float64 `json:"gold_backing_grams"`
}

// PerGramComparison is present when both funds disclose gold backing.
type PerGramComparison struct {
	ETF1PerGram          float64 `json:"etf1_per_gram"`
	ETF2PerGram          float64 `json:"etf2_per_gram"`
	CheaperPerGram       float64 `json:"cheaper_per_gram"`
	DifferencePerGram    float64 `json:"difference_per_gram"`
	DifferencePercent    float64 `json:"difference_percent"`
	CheaperPerGramSymbol string  `json:"cheaper_per_gram_symbol"`
}

// TwoResult is the head-to-head comparison of exactly two funds.
type TwoResult struct {
	ETF1            Summary            `json:"etf1"`
	ETF2            Summary            `json:"etf2"`
	Cheaper         Summary            `json:"cheaper"`
	PriceDifference Diff               `json:"price_difference"`
	PerGram         *PerGramComparison `json:"per_gram_comparison"`
	Comparison      string             `json:"comparison"`
	Recommendation  string             `json:"recommendation"`
}

// CompareTwo reports which of two funds is cheaper by raw price, and by
// per-gram price when both disclose gold backing.
func CompareTwo(a, b fund.Quote) TwoResult {
	cheaper, pricier := a, b
	if b.CurrentPrice < a.CurrentPrice {
		cheaper, pricier = b, a
	}
	priceDiff := pricier.CurrentPrice - cheaper.CurrentPrice
	priceDiffPct := priceDiff / cheaper.CurrentPrice * 100

	var perGram *PerGramComparison
	aPerGram, aOK := a.PerGram()
	bPerGram, bOK := b.PerGram()
	if aOK && bOK {
		cheaperPG, cheaperSym := aPerGram, a.Symbol
		if bPerGram < aPerGram {
			cheaperPG, cheaperSym = bPerGram, b.Symbol
		}
		pgDiff := math.Abs(aPerGram - bPerGram)
		perGram = &PerGramComparison{
			ETF1PerGram:          round4(aPerGram),
			ETF2PerGram:          round4(bPerGram),
			CheaperPerGram:       round4(cheaperPG),
			DifferencePerGram:    round4(pgDiff),
			DifferencePercent:    round2(pgDiff / cheaperPG * 100),
			CheaperPerGramSymbol: cheaperSym,
		}
	}

	return TwoResult{
		ETF1:            summarize(a),
		ETF2:            summarize(b),
		Cheaper:         summarize(cheaper),
		PriceDifference: Diff{Absolute: round4(priceDiff), Percent: round2(priceDiffPct)},
		PerGram:         perGram,
		Comparison: fmt.Sprintf("%s (%.4f TL) is %.4f TL (%.2f%%) cheaper than %s.",
			cheaper.Symbol, cheaper.CurrentPrice, round4(priceDiff), round2(priceDiffPct), pricier.Symbol),
		Recommendation: fmt.Sprintf("By unit price %s is cheaper: %.4f TL vs %.4f TL.",
			cheaper.Symbol, cheaper.CurrentPrice, pricier.CurrentPrice),
	}
}

func summarize(f fund.Quote) Summary {
	return Summary{
		Symbol:           f.Symbol,
		Name:             f.Name,
		Price:            f.CurrentPrice,
		ChangePercent:    f.ChangePercent,
		Volume:           f.Volume,
		GoldBackingGrams: f.GoldBackingGrams,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
func ptr(v float64) *float64   { return &v }
