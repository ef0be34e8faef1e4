package chat

import "github.com/Pushya04/Mental-Health-Chatbot/pkg/models"

// ResolveParams merges per-request overrides into the configured defaults.
// Each field is independent: a present override wins, an absent one keeps the
// default. Values are passed through as-is; out-of-range settings are the
// generator's problem, not ours.
func ResolveParams(defaults models.GenParams, overrides models.ParamOverrides) models.GenParams {
	resolved := defaults
	if overrides.MaxNewTokens != nil {
		resolved.MaxNewTokens = *overrides.MaxNewTokens
	}
	if overrides.Temperature != nil {
		resolved.Temperature = *overrides.Temperature
	}
	if overrides.TopP != nil {
		resolved.TopP = *overrides.TopP
	}
	if overrides.RepetitionPenalty != nil {
		resolved.RepetitionPenalty = *overrides.RepetitionPenalty
	}
	return resolved
}
