package fix

import (
	"strings"

	"github.com/gnoverse/endlint/internal/token"
)

// Result reports the outcome of Apply. Applied and Skipped hold indices
// into the plans slice.
type Result struct {
	Source  string
	Applied []int
	Skipped []int
}

type span struct{ lo, hi int }

func (a span) overlaps(b span) bool {
	return a.lo <= b.hi && b.lo <= a.hi
}

// Apply renders the stream with plans applied. Plans are taken in order; a
// plan that is malformed or touches a token claimed by an earlier plan is
// skipped as a whole. The stream itself is left untouched.
func Apply(s *token.Stream, plans []Plan) Result {
	n := s.Len()
	replaced := make(map[int]string)
	appended := make(map[int]string)

	var res Result
	var claimed []span
	for i, p := range plans {
		if !p.valid(n) {
			res.Skipped = append(res.Skipped, i)
			continue
		}
		lo, hi := p.bounds()
		sp := span{lo, hi}
		conflict := false
		for _, c := range claimed {
			if lo != -1 && sp.overlaps(c) {
				conflict = true
				break
			}
		}
		if conflict {
			res.Skipped = append(res.Skipped, i)
			continue
		}
		if lo != -1 {
			claimed = append(claimed, sp)
		}
		for _, op := range p.Ops {
			switch op.Kind {
			case OpDeleteRange:
				for j := op.From; j < op.To; j++ {
					replaced[j] = ""
				}
			case OpReplaceToken:
				replaced[op.From] = op.Text
			case OpInsertAfter:
				appended[op.From] += op.Text
			}
		}
		res.Applied = append(res.Applied, i)
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		if text, ok := replaced[i]; ok {
			b.WriteString(text)
		} else {
			b.WriteString(s.Text(i))
		}
		b.WriteString(appended[i])
	}
	res.Source = b.String()
	return res
}
