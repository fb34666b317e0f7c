package analyzer

import (
	"errors"
	"testing"
)

const sampleResultJSON = `{
	"summary_1min": "増収増益。通期予想を上方修正。",
	"headline": {"tone": "good", "score_0_10": 8},
	"performance": {"period": "FY2026 Q3", "sales_yoy_pct": 12.3, "op_yoy_pct": 8.1,
		"ordinary_yoy_pct": null, "net_yoy_pct": null},
	"guidance": {"raised": true, "lowered": false, "unchanged": null,
		"sales_full_year": 540000, "op_full_year": 21000, "eps_full_year": null},
	"drivers": {"profit_up_reasons": ["既存店売上の伸長"], "profit_down_reasons": []},
	"risks": {"short_term": ["原材料価格"], "mid_term": []},
	"watch_points": ["通期進捗率"]
}`

func TestParseResult_PlainJSON(t *testing.T) {
	result, payload, err := ParseResult(sampleResultJSON)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Summary1Min != "増収増益。通期予想を上方修正。" {
		t.Errorf("Unexpected summary: %q", result.Summary1Min)
	}
	if result.Headline.Tone != "good" || result.Headline.Score0To10 != 8 {
		t.Errorf("Unexpected headline: %+v", result.Headline)
	}
	if result.Performance.SalesYoYPct == nil || *result.Performance.SalesYoYPct != 12.3 {
		t.Errorf("Unexpected sales yoy: %v", result.Performance.SalesYoYPct)
	}
	if result.Performance.OrdinaryYoYPct != nil {
		t.Error("Null figure must stay nil, never guessed")
	}
	if result.Guidance.Raised == nil || !*result.Guidance.Raised {
		t.Errorf("Unexpected guidance: %+v", result.Guidance)
	}
	if payload == "" {
		t.Error("Expected extracted payload text")
	}
}

func TestParseResult_CodeFenced(t *testing.T) {
	fenced := "```json\n" + sampleResultJSON + "\n```"

	result, _, err := ParseResult(fenced)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Headline.Tone != "good" {
		t.Errorf("Unexpected tone: %q", result.Headline.Tone)
	}
}

func TestParseResult_SurroundingProse(t *testing.T) {
	wrapped := "Here is the analysis you asked for:\n" + sampleResultJSON + "\nLet me know if you need more."

	result, payload, err := ParseResult(wrapped)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Summary1Min == "" {
		t.Error("Expected summary from embedded object")
	}
	if payload[0] != '{' || payload[len(payload)-1] != '}' {
		t.Errorf("Expected bare object as payload, got %q", payload)
	}
}

func TestParseResult_BracesInsideStrings(t *testing.T) {
	text := `prefix {"summary_1min": "note: {unbalanced in string", "headline": {"tone": "neutral", "score_0_10": 5}} suffix`

	result, _, err := ParseResult(text)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Headline.Tone != "neutral" {
		t.Errorf("Unexpected tone: %q", result.Headline.Tone)
	}
}

func TestParseResult_NoObject(t *testing.T) {
	_, _, err := ParseResult("The document could not be analyzed, sorry.")
	if err == nil {
		t.Fatal("Expected error for prose-only response")
	}

	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedResponseError, got %T", err)
	}
	if malformed.RawText == "" {
		t.Error("Expected raw text to be preserved for the fallback display")
	}
}

func TestParseResult_InvalidObject(t *testing.T) {
	_, _, err := ParseResult(`{"summary_1min": `)
	if err == nil {
		t.Fatal("Expected error for truncated JSON")
	}

	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedResponseError, got %T", err)
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain unchanged", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
