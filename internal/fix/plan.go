// Package fix represents corrections as token-addressed edit plans and
// applies them to a copy of the source.
package fix

import "fmt"

// OpKind is the primitive operation of an edit.
type OpKind uint8

const (
	// OpDeleteRange blanks tokens in [From, To).
	OpDeleteRange OpKind = iota + 1
	// OpInsertAfter appends Text after token From.
	OpInsertAfter
	// OpReplaceToken substitutes Text for token From.
	OpReplaceToken
)

func (k OpKind) String() string {
	switch k {
	case OpDeleteRange:
		return "DeleteRange"
	case OpInsertAfter:
		return "InsertAfter"
	case OpReplaceToken:
		return "ReplaceToken"
	}
	return "OpKind(?)"
}

// Op is a single splice over token indices.
type Op struct {
	Kind OpKind `json:"kind" msgpack:"kind"`
	From int    `json:"from" msgpack:"from"`
	To   int    `json:"to,omitempty" msgpack:"to"`
	Text string `json:"text,omitempty" msgpack:"text"`
}

func DeleteRange(from, to int) Op {
	return Op{Kind: OpDeleteRange, From: from, To: to}
}

func InsertAfter(index int, text string) Op {
	return Op{Kind: OpInsertAfter, From: index, To: index + 1, Text: text}
}

func ReplaceToken(index int, text string) Op {
	return Op{Kind: OpReplaceToken, From: index, To: index + 1, Text: text}
}

func (o Op) String() string {
	switch o.Kind {
	case OpDeleteRange:
		return fmt.Sprintf("%s(%d, %d)", o.Kind, o.From, o.To)
	default:
		return fmt.Sprintf("%s(%d, %q)", o.Kind, o.From, o.Text)
	}
}

// Plan is an ordered changeset that is applied atomically.
type Plan struct {
	Ops []Op `json:"ops" msgpack:"ops"`
}

// NewPlan builds a plan from ops.
func NewPlan(ops ...Op) Plan {
	return Plan{Ops: ops}
}

func (p Plan) Empty() bool { return len(p.Ops) == 0 }

// bounds returns the inclusive token range the plan touches.
func (p Plan) bounds() (lo, hi int) {
	lo, hi = -1, -1
	for _, op := range p.Ops {
		if op.Kind == OpDeleteRange && op.To <= op.From {
			continue
		}
		from, to := op.From, op.To-1
		if lo == -1 || from < lo {
			lo = from
		}
		if hi == -1 || to > hi {
			hi = to
		}
	}
	return lo, hi
}

// valid reports whether every op addresses tokens inside [0, n).
func (p Plan) valid(n int) bool {
	if p.Empty() {
		return false
	}
	for _, op := range p.Ops {
		if op.From < 0 || op.From >= n || op.To > n {
			return false
		}
		switch op.Kind {
		case OpDeleteRange:
			if op.To < op.From {
				return false
			}
		case OpInsertAfter, OpReplaceToken:
		default:
			return false
		}
	}
	return true
}
