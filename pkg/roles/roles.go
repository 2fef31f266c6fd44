// Package roles parses the bracketed role-list grammar used on the command
// line, e.g. "[admin, mon, mgr],[storage, mon, mgr, mds]". Each bracketed
// group describes the roles of one node; group order determines node naming
// downstream.
package roles

import (
	"fmt"
	"strings"
)

// RoleList is an ordered list of per-node role sets. Role tokens are opaque
// text; this layer does not validate or deduplicate them.
type RoleList [][]string

// ParseError indicates malformed role text, such as an unterminated
// bracket group.
type ParseError struct {
	Input string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid roles %q: %s", e.Input, e.Msg)
}

// Parse turns role text into a RoleList. The empty string yields an empty
// RoleList and no error, which callers treat as "no override".
//
// Splitting on ',' separates a group's internal commas from its bracket
// delimiters, so groups are reassembled with a two-state automaton (outside
// a group / inside a group) keyed on the bracket tokens. Brackets do not
// nest.
func Parse(s string) (RoleList, error) {
	input := s
	s = strings.TrimSpace(s)
	if s == "" {
		return RoleList{}, nil
	}

	list := RoleList{}
	var node []string
	inGroup := false

	for _, frag := range strings.Split(s, ",") {
		tok := strings.TrimSpace(frag)

		if !inGroup {
			if !strings.HasPrefix(tok, "[") {
				return nil, &ParseError{Input: input, Msg: fmt.Sprintf("role %q outside a bracket group", tok)}
			}
			inGroup = true
			node = []string{}
			tok = strings.TrimSpace(tok[1:])
		} else if strings.HasPrefix(tok, "[") {
			return nil, &ParseError{Input: input, Msg: "bracket groups cannot nest"}
		}

		if strings.HasSuffix(tok, "]") {
			tok = strings.TrimSpace(tok[:len(tok)-1])
			node = append(node, tok)
			list = append(list, node)
			inGroup = false
			continue
		}
		node = append(node, tok)
	}

	if inGroup {
		return nil, &ParseError{Input: input, Msg: "unterminated bracket group"}
	}
	return list, nil
}

// Render writes a RoleList back in its canonical text form. For role tokens
// free of '[', ']' and ',', Parse(Render(r)) == r.
func Render(r RoleList) string {
	groups := make([]string, 0, len(r))
	for _, node := range r {
		groups = append(groups, "["+strings.Join(node, ", ")+"]")
	}
	return strings.Join(groups, ",")
}
