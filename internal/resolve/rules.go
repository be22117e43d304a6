// Package resolve maps exam identities to the historical result pages that publish them.
//
// The publisher moved years between hosts and URL shapes irregularly, so every
// mapping here is an ordered rule table: the first rule whose exam type and
// year predicate match wins. Exact-year overrides are listed before range rules.
package resolve

import (
	"strconv"
	"strings"

	"github.com/jonathan/necta-results/internal/types"
)

const (
	onlinesysBase = "https://onlinesys.necta.go.tz/results"
	matokeoBase   = "https://matokeo.necta.go.tz/results"
	archiveBase   = "https://maktaba.tetea.org/exam-results"
)

// yearMatch is a predicate over the exam year.
type yearMatch func(year int) bool

func exactly(y int) yearMatch {
	return func(year int) bool { return year == y }
}

// after matches years strictly greater than y.
func after(y int) yearMatch {
	return func(year int) bool { return year > y }
}

// between matches lo < year < hi.
func between(lo, hi int) yearMatch {
	return func(year int) bool { return year > lo && year < hi }
}

func anyYear(int) bool { return true }

// urlRule maps a year predicate to a URL template. An empty Template marks
// a combination for which no page exists.
type urlRule struct {
	ExamType types.ExamType
	Match    yearMatch
	Template string
}

// intRule maps a year predicate to an integer layout fact.
type intRule struct {
	ExamType types.ExamType
	Match    yearMatch
	Value    int
}

// indexRule selects the results table offset on a summary page.
type indexRule struct {
	ExamType types.ExamType
	Center   bool
	Match    yearMatch
	Index    int
}

// Template placeholders:
//
//	{year}   exam year
//	{exam}   lower-case exam type
//	{EXAM}   upper-case exam type
//	{school} lower-case registration number
//	{SCHOOL} upper-case registration number
var rosterRules = []urlRule{
	{types.CSEE, exactly(2022), onlinesysBase + "/2022/csee/index.htm"},
	{types.CSEE, exactly(2016), onlinesysBase + "/{year}/csee/index.htm"},
	{types.CSEE, anyYear, onlinesysBase + "/{year}/csee/csee.htm"},

	{types.ACSEE, exactly(2023), matokeoBase + "/2023/acsee/index.htm"},
	{types.ACSEE, exactly(2014), onlinesysBase + "/2014/acsee/"},
	{types.ACSEE, after(2019), onlinesysBase + "/{year}/acsee/index.htm"},
	{types.ACSEE, anyYear, onlinesysBase + "/{year}/acsee/acsee.htm"},
}

// Leading decorative anchors (alphabet index letters) on roster pages.
var skipRules = []intRule{
	{types.CSEE, after(2014), 28},
	{types.ACSEE, after(2015), 27},
}

var summaryRules = []urlRule{
	{types.ACSEE, exactly(2023), matokeoBase + "/2023/acsee/results/{school}.htm"},
	{types.ACSEE, exactly(2008), ""},
	{types.ACSEE, between(2014, 2023), onlinesysBase + "/{year}/acsee/results/{school}.htm"},
	{types.ACSEE, between(2005, 2015), archiveBase + "/{EXAM}{year}/{SCHOOL}.html"},

	{types.CSEE, after(2014), onlinesysBase + "/{year}/csee/results/{school}.htm"},
	{types.CSEE, anyYear, onlinesysBase + "/{year}/csee/{school}.htm"},
}

// Newer templates render banner/index tables ahead of the results table.
var tableIndexRules = []indexRule{
	{types.CSEE, true, after(2019), 1},
	{types.CSEE, false, after(2019), 2},
	{types.ACSEE, true, after(2018), 1},
	{types.ACSEE, false, after(2018), 2},
}

func matchURL(rules []urlRule, examType types.ExamType, year int) (urlRule, bool) {
	for _, r := range rules {
		if r.ExamType == examType && r.Match(year) {
			return r, true
		}
	}
	return urlRule{}, false
}

func matchInt(rules []intRule, examType types.ExamType, year int, fallback int) int {
	for _, r := range rules {
		if r.ExamType == examType && r.Match(year) {
			return r.Value
		}
	}
	return fallback
}

func expand(template string, examType types.ExamType, year int, school string) string {
	return strings.NewReplacer(
		"{year}", strconv.Itoa(year),
		"{exam}", string(examType),
		"{EXAM}", examType.Upper(),
		"{school}", strings.ToLower(school),
		"{SCHOOL}", strings.ToUpper(school),
	).Replace(template)
}
