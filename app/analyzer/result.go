package analyzer

import (
	"encoding/json"
	"strings"
)

// Result is the structured payload the model is asked to return.
type Result struct {
	Summary1Min string      `json:"summary_1min"`
	Headline    Headline    `json:"headline"`
	Performance Performance `json:"performance"`
	Guidance    Guidance    `json:"guidance"`
	Drivers     Drivers     `json:"drivers"`
	Risks       Risks       `json:"risks"`
	WatchPoints []string    `json:"watch_points"`
}

type Headline struct {
	Tone      string  `json:"tone"`
	Score0To10 float64 `json:"score_0_10"`
}

// Year-over-year figures are null when the model could not find them;
// missing values are never guessed.
type Performance struct {
	Period         string   `json:"period"`
	SalesYoYPct    *float64 `json:"sales_yoy_pct"`
	OpYoYPct       *float64 `json:"op_yoy_pct"`
	OrdinaryYoYPct *float64 `json:"ordinary_yoy_pct"`
	NetYoYPct      *float64 `json:"net_yoy_pct"`
}

type Guidance struct {
	Raised        *bool    `json:"raised"`
	Lowered       *bool    `json:"lowered"`
	Unchanged     *bool    `json:"unchanged"`
	SalesFullYear *float64 `json:"sales_full_year"`
	OpFullYear    *float64 `json:"op_full_year"`
	EPSFullYear   *float64 `json:"eps_full_year"`
}

type Drivers struct {
	ProfitUpReasons   []string `json:"profit_up_reasons"`
	ProfitDownReasons []string `json:"profit_down_reasons"`
}

type Risks struct {
	ShortTerm []string `json:"short_term"`
	MidTerm   []string `json:"mid_term"`
}

// ParseResult extracts the structured result from model output. The text may
// be fenced, or surrounded by prose; the first well-formed JSON object wins.
// When no valid object can be extracted the call is a failure, not an
// opportunity to guess values. The second return value is the extracted JSON
// text, suitable for persisting verbatim.
func ParseResult(text string) (*Result, string, error) {
	cleaned := cleanJSONResponse(text)

	candidate := cleaned
	if !json.Valid([]byte(candidate)) {
		extracted, ok := extractFirstJSONObject(cleaned)
		if !ok {
			return nil, "", &MalformedResponseError{RawText: text, Reason: "no JSON object found"}
		}
		candidate = extracted
	}

	var result Result
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return nil, "", &MalformedResponseError{RawText: text, Reason: err.Error()}
	}

	return &result, candidate, nil
}

// cleanJSONResponse strips a surrounding markdown code fence, with or
// without a language tag.
func cleanJSONResponse(text string) string {
	cleaned := strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// extractFirstJSONObject scans for the first balanced top-level object,
// tracking string literals so braces inside values do not confuse the depth
// count.
func extractFirstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}

	return "", false
}
