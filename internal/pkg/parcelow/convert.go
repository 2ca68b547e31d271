package parcelow

import "math"

// Conversion constants shared with the PIX flow. The margin is applied
// on top of the fetched market rate; the fee is the local payment
// processor's cut, deducted from net proceeds.
const (
	RateMargin         = 1.04   // 4% markup on the exchange rate
	PixFeeRate         = 0.0179 // 1.79% processing fee
	FallbackUSDBRLRate = 5.95   // used when the quote service is unreachable
)

// ConvertUSDCentsToBRLCents converts a USD amount in cents into the BRL
// total in cents that must be charged so that, after the processing fee,
// the margin-adjusted net amount is covered. Rounding happens once, at
// the final cents conversion.
func ConvertUSDCentsToBRLCents(amountUSDCents int64, rateUSDToBRL float64) int64 {
	usd := float64(amountUSDCents) / 100
	adjustedRate := rateUSDToBRL * RateMargin
	netBRL := usd * adjustedRate
	grossBRL := netBRL / (1 - PixFeeRate)
	return int64(math.Round(grossBRL * 100))
}
