package usage

import "math"

// Rate is the static price card of one provider/model pair. LLM rates are
// USD per 1K tokens; TTS rates are USD per 1K characters. FreeTier providers
// cost zero regardless of counts.
type Rate struct {
	InputPer1K  float64
	OutputPer1K float64
	CharsPer1K  float64
	FreeTier    bool
}

// rateTable maps "provider/model" (or just "provider" for TTS vendors with a
// single price) to its rate card. Prices mirror the vendors' public sheets;
// adjust here when they change.
var rateTable = map[string]Rate{
	"openai/gpt-4o-mini":             {InputPer1K: 0.00015, OutputPer1K: 0.0006},
	"openai/gpt-4o":                  {InputPer1K: 0.0025, OutputPer1K: 0.01},
	"gemini/gemini-2.0-flash":        {InputPer1K: 0.0001, OutputPer1K: 0.0004},
	"gemini/gemini-2.0-flash-lite":   {FreeTier: true},
	"openai-tts/tts-1":               {CharsPer1K: 0.015},
	"elevenlabs/eleven_multilingual": {CharsPer1K: 0.03},
	"elevenlabs/eleven_flash":        {CharsPer1K: 0.015},
}

// lookupRate resolves provider/model with a fallback to the bare provider
// key. Unknown pairs cost zero rather than failing the call; pricing gaps are
// a bookkeeping bug, not a generation failure.
func lookupRate(provider, model string) Rate {
	if r, ok := rateTable[provider+"/"+model]; ok {
		return r
	}
	if r, ok := rateTable[provider]; ok {
		return r
	}
	return Rate{}
}

// round6 rounds an amount to 6 decimal places at the entry boundary.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// GenerationCost computes the USD cost of one LLM attempt.
func GenerationCost(provider, model string, inputTokens, outputTokens int) float64 {
	r := lookupRate(provider, model)
	if r.FreeTier {
		return 0
	}
	return round6(float64(inputTokens)/1000*r.InputPer1K + float64(outputTokens)/1000*r.OutputPer1K)
}

// SynthesisCost computes the USD cost of one TTS attempt.
func SynthesisCost(provider, model string, characters int) float64 {
	r := lookupRate(provider, model)
	if r.FreeTier {
		return 0
	}
	return round6(float64(characters) / 1000 * r.CharsPer1K)
}
