package analyzer

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const inferenceTimeout = 60 * time.Second

var systemInstruction = `あなたは日本株の決算短信を読むプロのアナリストです。
渡されたPDF（TDnetの開示資料）を読み、投資判断に使える形で要点を整理してください。

- 数値は資料に書かれている範囲でのみ記載し、無理に推測しない。見つからない値は null とする。
- summary_1min は1分で読める日本語のサマリにする。
- headline.tone は good / bad / neutral のいずれか。
- 増減要因、リスク、注目ポイントは資料の記述に基づく簡潔な箇条書きにする。`

// Gemini sends a document to the hosted model and returns the raw response
// text. Parsing and caching are the caller's concern.
type Gemini struct {
	apiKey string
	model  string
}

func NewGemini(apiKey, model string) *Gemini {
	return &Gemini{apiKey: apiKey, model: model}
}

func (g *Gemini) Model() string {
	return g.model
}

// AnalyzePDF runs structured extraction over raw PDF bytes. The call is
// bounded by a single timeout; on failure the caller may retry manually,
// never automatically.
func (g *Gemini) AnalyzePDF(ctx context.Context, pdfBytes []byte) (string, error) {
	if g.apiKey == "" {
		return "", ErrAnalysisDisabled
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, inferenceTimeout)
	defer cancel()

	client, err := genai.NewClient(timeoutCtx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: "この決算資料を分析してください。"},
				{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: pdfBytes}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.2),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    resultSchema(),
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(timeoutCtx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	return text, nil
}

func resultSchema() *genai.Schema {
	nullableNumber := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Nullable: genai.Ptr(true), Description: desc}
	}
	nullableBool := &genai.Schema{Type: genai.TypeBoolean, Nullable: genai.Ptr(true)}
	stringList := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: desc,
		}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary_1min": {Type: genai.TypeString, Description: "1分で読める日本語サマリ"},
			"headline": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"tone":       {Type: genai.TypeString, Enum: []string{"good", "bad", "neutral"}},
					"score_0_10": {Type: genai.TypeNumber},
				},
				Required: []string{"tone", "score_0_10"},
			},
			"performance": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"period":           {Type: genai.TypeString},
					"sales_yoy_pct":    nullableNumber("売上高 前年同期比 %"),
					"op_yoy_pct":       nullableNumber("営業利益 前年同期比 %"),
					"ordinary_yoy_pct": nullableNumber("経常利益 前年同期比 %"),
					"net_yoy_pct":      nullableNumber("純利益 前年同期比 %"),
				},
			},
			"guidance": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"raised":          nullableBool,
					"lowered":         nullableBool,
					"unchanged":       nullableBool,
					"sales_full_year": nullableNumber("通期売上予想"),
					"op_full_year":    nullableNumber("通期営業利益予想"),
					"eps_full_year":   nullableNumber("通期EPS予想"),
				},
			},
			"drivers": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"profit_up_reasons":   stringList("増益要因"),
					"profit_down_reasons": stringList("減益要因"),
				},
			},
			"risks": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"short_term": stringList("短期リスク"),
					"mid_term":   stringList("中期リスク"),
				},
			},
			"watch_points": stringList("注目ポイント"),
		},
		Required: []string{"summary_1min", "headline"},
	}
}
