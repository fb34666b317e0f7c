package disclosure

import (
	"testing"
)

func TestClassifier_Run_EarningsReport(t *testing.T) {
	classifier := NewClassifier()

	titles := []string{
		"2026年3月期 第3四半期決算短信〔日本基準〕（連結）",
		"通期決算のお知らせ",
		"Consolidated Financial Results for FY2025",
		"Q3 Earnings Release",
	}

	for _, title := range titles {
		result := classifier.Run(title)
		if !result.IsEarningsReport {
			t.Errorf("Title %q should classify as earnings report", title)
		}
		if result.DocType != DocTypeEarningsReport {
			t.Errorf("Title %q: expected doc type %q, got %q", title, DocTypeEarningsReport, result.DocType)
		}
	}
}

func TestClassifier_Run_BriefingMaterial(t *testing.T) {
	classifier := NewClassifier()

	result := classifier.Run("2026年3月期 決算説明資料")
	if result.IsEarningsReport {
		t.Error("Briefing material should not classify as earnings report")
	}
	if result.DocType != DocTypeBriefingMaterial {
		t.Errorf("Expected doc type %q, got %q", DocTypeBriefingMaterial, result.DocType)
	}
}

func TestClassifier_Run_Other(t *testing.T) {
	classifier := NewClassifier()

	titles := []string{
		"株主優待のお知らせ",
		"代表取締役の異動に関するお知らせ",
		"",
	}

	for _, title := range titles {
		result := classifier.Run(title)
		if result.IsEarningsReport {
			t.Errorf("Title %q should not classify as earnings report", title)
		}
		if result.DocType != DocTypeOther {
			t.Errorf("Title %q: expected doc type %q, got %q", title, DocTypeOther, result.DocType)
		}
	}
}

func TestClassifier_Run_CaseInsensitive(t *testing.T) {
	classifier := NewClassifier()

	if !classifier.IsEarningsReport("FINANCIAL RESULTS briefing") {
		t.Error("English pattern should match case-insensitively")
	}
	if !classifier.IsEarningsReport("quarterly earnings update") {
		t.Error("Lowercase 'earnings' should match")
	}
}
