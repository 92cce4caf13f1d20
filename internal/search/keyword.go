package search

import (
	"context"
	"regexp"
	"strings"

	"github.com/ysam020/task-management-assessment/internal/domain"
)

// stageKeywords is checked in order, multi-word phrases first.
var stageKeywords = []struct {
	phrase string
	stage  domain.Stage
}{
	{"background check", domain.StageBGCheck},
	{"bg check", domain.StageBGCheck},
	{"background", domain.StageBGCheck},
	{"compensation", domain.StageCompensation},
	{"level 1", domain.StageL1},
	{"level 2", domain.StageL2},
	{"screening", domain.StageScreening},
	{"director", domain.StageDirector},
	{"offer", domain.StageOffer},
	{"l1", domain.StageL1},
	{"l2", domain.StageL2},
	{"hr", domain.StageHR},
}

var nonWord = regexp.MustCompile(`[^a-z0-9+#.]+`)

// stopWords are dropped from the free-text remainder.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "in": {}, "at": {}, "on": {}, "of": {}, "for": {},
	"with": {}, "and": {}, "or": {}, "who": {}, "are": {}, "is": {}, "show": {},
	"find": {}, "me": {}, "all": {}, "candidates": {}, "candidate": {}, "stage": {},
	"round": {}, "list": {}, "get": {}, "people": {},
}

// KeywordParser recognizes stage names and treats the rest of the query as
// free text. It never fails.
type KeywordParser struct{}

// Parse implements Parser.
func (KeywordParser) Parse(_ context.Context, query string) (Criteria, error) {
	normalized := " " + strings.Join(strings.Fields(nonWord.ReplaceAllString(strings.ToLower(query), " ")), " ") + " "

	var c Criteria
	for _, kw := range stageKeywords {
		needle := " " + kw.phrase + " "
		if strings.Contains(normalized, needle) {
			stage := kw.stage
			c.Stage = &stage
			normalized = strings.Replace(normalized, needle, " ", 1)
			break
		}
	}

	var words []string
	for _, w := range strings.Fields(normalized) {
		if _, skip := stopWords[w]; skip {
			continue
		}
		words = append(words, w)
	}
	c.Search = strings.Join(words, " ")

	return c, nil
}
