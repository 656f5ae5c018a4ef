package text

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// costEstimator prices a call from token counts. Token counting uses
// cl100k_base, which is close enough across the models we route to for a
// spend estimate.
type costEstimator struct {
	encoder            *tiktoken.Tiktoken
	priceInputPerMTok  float64
	priceOutputPerMTok float64
}

func newCostEstimator(inputPerMTok, outputPerMTok float64) (*costEstimator, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding: %w", err)
	}
	return &costEstimator{
		encoder:            enc,
		priceInputPerMTok:  inputPerMTok,
		priceOutputPerMTok: outputPerMTok,
	}, nil
}

func (e *costEstimator) countTokens(text string) int {
	return len(e.encoder.Encode(text, nil, nil))
}

func (e *costEstimator) estimate(promptTokens, completionTokens int) float64 {
	return float64(promptTokens)/1_000_000*e.priceInputPerMTok +
		float64(completionTokens)/1_000_000*e.priceOutputPerMTok
}
