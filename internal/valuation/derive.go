package valuation

import "math"

// Acceptance bands for derived figures. Values outside them keep the
// configured figure (backing) or leave the field unresolved (NAV).
const (
	minDerivedNav     = 0.1
	maxDerivedNav     = 10000
	minDerivedBacking = 0.01
	maxDerivedBacking = 1.0
)

// infoNavKeys are provider metadata fields consulted, in order, as the last
// resort for a NAV value.
var infoNavKeys = []string{"navPrice", "netAssetValue", "nav"}

// Derive resolves the NAV / gold-backing pair for one fund. It is the single
// place this arithmetic lives; every acquisition path goes through it.
//
// NAV priority: configured fixed value, then configuredBacking x spot when
// the product is plausible, then a provider-reported field. Once a NAV is
// known and a spot price is available, backing is recomputed as nav / spot
// and overrides the configured value only when the result is plausible.
func Derive(configuredNav, configuredBacking, spot *float64, info map[string]float64) (nav, backing *float64) {
	backing = configuredBacking

	switch {
	case configuredNav != nil && *configuredNav > 0:
		nav = ptr(*configuredNav)
	case configuredBacking != nil && *configuredBacking > 0 && spot != nil && *spot > 0:
		calc := *configuredBacking * *spot
		if calc >= minDerivedNav && calc <= maxDerivedNav {
			nav = &calc
		}
	}
	if nav == nil {
		for _, key := range infoNavKeys {
			if v, ok := info[key]; ok && v > 0 {
				nav = ptr(v)
				break
			}
		}
	}

	if nav != nil && spot != nil && *spot > 0 {
		calc := *nav / *spot
		if calc >= minDerivedBacking && calc <= maxDerivedBacking {
			backing = &calc
		}
	}
	return nav, backing
}

func ptr(v float64) *float64 { return &v }

// roundTo applies output rounding; intermediate comparisons stay unrounded.
func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

func roundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	return ptr(roundTo(*v, places))
}
