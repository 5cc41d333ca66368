package pipeline

// charsPerToken is the rough chars-per-token ratio used for all budget
// math in this package. It is an estimate, not a tokenizer.
const charsPerToken = 4

// EstimateTokens approximates the token count of text as the ceiling of
// its character count divided by four. Do not confuse it with exact counts
// from a real tokenizer; it exists for budget calculations only.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}
