// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// A Stack is an operand stack for the PostScript-like language used by
// PDF content streams and CMap streams.
type Stack struct {
	stk []Value
}

// Push pushes v onto the stack.
func (s *Stack) Push(v Value) {
	s.stk = append(s.stk, v)
}

// Pop removes and returns the top of the stack, or the zero Value if
// the stack is empty.
func (s *Stack) Pop() Value {
	if len(s.stk) == 0 {
		return Value{}
	}
	v := s.stk[len(s.stk)-1]
	s.stk = s.stk[:len(s.stk)-1]
	return v
}

// Len returns the number of values currently on the stack.
func (s *Stack) Len() int {
	return len(s.stk)
}

// Interpret walks the content stream held by strm (a Value of Kind() ==
// Stream), pushing operands onto an operand Stack and invoking do for
// every operator token encountered. It is used both for page content
// streams (graphics/text operators) and for CMap streams parsed with
// ToUnicode (begincmap/endcmap and friends).
func Interpret(strm Value, do func(stk *Stack, op string)) {
	if strm.Kind() != Stream {
		return
	}
	rd := strm.Reader()
	defer rd.Close()

	b := newBuffer(rd, 0)
	var stk Stack
	for {
		tok := b.readToken()
		if tok == nil {
			break
		}
		switch t := tok.(type) {
		case keyword:
			switch t {
			case "<<":
				b.unreadToken(tok)
				stk.Push(Value{nil, objptr{}, b.readObject()})
			case "[":
				b.unreadToken(tok)
				stk.Push(Value{nil, objptr{}, b.readObject()})
			case "BI":
				skipInlineImage(b)
			default:
				do(&stk, string(t))
			}
		default:
			stk.Push(Value{nil, objptr{}, tok})
		}
	}
}

// skipInlineImage discards the bytes of an inline image ("BI ... ID
// <data> EI"), since redaction and text extraction never need its
// contents.
func skipInlineImage(b *buffer) {
	for {
		tok := b.readToken()
		if tok == nil {
			return
		}
		if tok == keyword("ID") {
			break
		}
	}
	for {
		c, err := b.readByte()
		if err != nil {
			return
		}
		if c != 'E' {
			continue
		}
		c2, err := b.readByte()
		if err != nil {
			return
		}
		if c2 == 'I' {
			return
		}
		b.unreadByte()
	}
}
