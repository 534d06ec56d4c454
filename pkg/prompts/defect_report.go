// Package prompts builds the text prompts for the defect report generator.
package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fabpulse/fabpulse-engine/pkg/models"
)

// knownParam maps a column-name fragment to its display labels. Order is the
// order the parameters appear in the prompt.
type knownParam struct {
	fragment string
	labelKo  string
	labelEn  string
}

var knownParams = []knownParam{
	{"lithium_input", "리튬 투입량(kg)", "Lithium input (kg)"},
	{"additive_ratio", "첨가제 비율(%)", "Additive ratio (%)"},
	{"process_time", "공정 시간(분)", "Process time (min)"},
	{"humidity", "습도(%)", "Humidity (%)"},
	{"tank_pressure", "탱크 압력(bar)", "Tank pressure (bar)"},
}

// DefectReportSystemPrompt returns the system instruction for report
// generation. The dashboard renders plain text, so markdown is forbidden.
func DefectReportSystemPrompt(language string) string {
	if language == models.ReportLanguageEnglish {
		return "You are a manufacturing quality engineer writing a defect analysis report. " +
			"Write in plain prose. Do not use markdown, headings, bullet characters, " +
			"asterisks or any other formatting syntax. Respond in English."
	}
	return "당신은 제조 품질 엔지니어로서 불량 분석 리포트를 작성합니다. " +
		"일반 문장으로만 작성하세요. 마크다운, 제목, 글머리 기호, 별표 등 " +
		"어떠한 서식 문법도 사용하지 마세요. 한국어로 답변하세요."
}

// BuildDefectReportPrompt formats a LOT's aggregate data into the labeled
// prompt the generator sends. Known process parameters are labeled in the
// requested language; remaining numeric parameters are appended with their
// column names, sorted for deterministic output.
func BuildDefectReportPrompt(lot models.LotAggregate, language string) string {
	ko := language != models.ReportLanguageEnglish

	var b strings.Builder
	if ko {
		b.WriteString(fmt.Sprintf("LOT %s의 품질 데이터를 분석하여 불량 원인 리포트를 작성해 주세요.\n\n", lot.LotID))
		b.WriteString(fmt.Sprintf("판정 결과: %s\n", resultText(lot.PassFailResult, ko)))
		b.WriteString(fmt.Sprintf("기록 수: %d\n", lot.RecordCount))
		if lot.LatestDate != nil {
			b.WriteString(fmt.Sprintf("최근 기록 일시: %s\n", lot.LatestDate.Format("2006-01-02 15:04:05")))
		}
	} else {
		b.WriteString(fmt.Sprintf("Analyze the quality data of LOT %s and write a defect cause report.\n\n", lot.LotID))
		b.WriteString(fmt.Sprintf("Result: %s\n", resultText(lot.PassFailResult, ko)))
		b.WriteString(fmt.Sprintf("Record count: %d\n", lot.RecordCount))
		if lot.LatestDate != nil {
			b.WriteString(fmt.Sprintf("Latest record: %s\n", lot.LatestDate.Format("2006-01-02 15:04:05")))
		}
	}

	used := make(map[string]bool, len(lot.Params))
	for _, p := range knownParams {
		name, ok := findParam(lot.Params, p.fragment)
		if !ok {
			continue
		}
		used[name] = true
		label := p.labelKo
		if !ko {
			label = p.labelEn
		}
		b.WriteString(fmt.Sprintf("%s: %.2f\n", label, lot.Params[name]))
	}

	var extras []string
	for name := range lot.Params {
		if !used[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		b.WriteString(fmt.Sprintf("%s: %.2f\n", name, lot.Params[name]))
	}

	return b.String()
}

func findParam(params map[string]float64, fragment string) (string, bool) {
	// Exact name first, then fragment containment; iteration order over the
	// map does not matter because ties pick the lexicographically smallest.
	if _, ok := params[fragment]; ok {
		return fragment, true
	}
	var best string
	for name := range params {
		if strings.Contains(strings.ToLower(name), fragment) {
			if best == "" || name < best {
				best = name
			}
		}
	}
	return best, best != ""
}

func resultText(result string, ko bool) string {
	switch {
	case result == "":
		if ko {
			return "판정 없음"
		}
		return "no result recorded"
	case models.IsFailure(result):
		if ko {
			return models.ResultFail
		}
		return "FAIL"
	case result == models.ResultPass:
		if ko {
			return models.ResultPass
		}
		return "PASS"
	}
	return result
}
