package syntax

// Parse lexes and parses a pattern into a syntax tree rooted at a Root node.
func Parse(src string) (*Node, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(src, tokens)
}

// ParseTokens builds the syntax tree from lexed tokens. src is only used
// for error positions.
func ParseTokens(src string, tokens []Token) (*Node, error) {
	p := &parser{src: src, root: NewNode(Root)}
	p.current = p.root

	for i := range tokens {
		if err := p.token(&tokens[i]); err != nil {
			return nil, err
		}
	}

	if len(p.stack) > 0 {
		return nil, newError(src, p.opened[len(p.opened)-1], ErrUnclosedGroup)
	}

	findRightSideForAlternatives(p.root)
	p.root.Link()
	return p.root, nil
}

type parser struct {
	src     string
	root    *Node
	current *Node
	stack   []*Node
	// opened holds the offsets of the open group tokens.
	opened []int
}

func (p *parser) push(n *Node) {
	n.Parent = p.current
	p.current.Children = append(p.current.Children, n)
}

func (p *parser) open(n *Node, offset int) {
	p.push(n)
	p.stack = append(p.stack, p.current)
	p.opened = append(p.opened, offset)
	p.current = n
}

func (p *parser) close() {
	p.current = p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	p.opened = p.opened[:len(p.opened)-1]
}

func (p *parser) token(tok *Token) error {
	switch tok.Kind {
	case TokenWhitespace:
		return nil

	case TokenObject:
		p.push(&Node{Kind: Object, Options: tok.Options})
	case TokenNegatedObject:
		p.push(&Node{Kind: NegatedObject, Options: tok.Options})
	case TokenAnyObject:
		p.push(&Node{Kind: AnyObject})
	case TokenEndIndex:
		p.push(&Node{Kind: EndIndex})

	case TokenNamedGroupStart:
		if p.current.Kind != Group || len(p.current.Children) > 0 {
			return newError(p.src, tok.Offset, ErrNamedGroupPlacement)
		}
		if p.current.Name != "" {
			return newError(p.src, tok.Offset, ErrNamedGroupRepeated)
		}
		p.current.Name = tok.Name

	case TokenGroupOpen:
		p.open(&Node{Kind: Group}, tok.Offset)
	case TokenAtomicGroupOpen:
		p.open(&Node{Kind: AtomicGroup}, tok.Offset)

	case TokenGroupClose:
		if p.current.Kind != Group && p.current.Kind != AtomicGroup {
			return newError(p.src, tok.Offset, ErrUnexpectedGroupClose)
		}
		p.close()

	case TokenAlternative:
		// The right side is collected by findRightSideForAlternatives.
		var left *Node
		switch len(p.current.Children) {
		case 0:
			left = NewNode(Nothing)
		case 1:
			left = p.current.Children[0]
		default:
			left = NewNode(Group, p.current.Children...)
		}
		alt := NewNode(Alternative, left)
		alt.Parent = p.current
		p.current.Children = []*Node{alt}

	case TokenQuantifier:
		prev := p.current.LastChild()
		if prev == nil {
			return newError(p.src, tok.Offset, ErrQuantifierWithoutNode)
		}
		if !quantifiable(prev.Kind) {
			return newError(p.src, tok.Offset, ErrUnexpectedQuantifier)
		}
		q := NewNode(tok.Quantifier, prev)
		q.Min, q.Max, q.Possessive = tok.Min, tok.Max, tok.Possessive
		q.Parent = p.current
		p.current.Children[len(p.current.Children)-1] = q
	}
	return nil
}

func quantifiable(k Kind) bool {
	switch k {
	case Object, NegatedObject, AnyObject, Group, AtomicGroup:
		return true
	}
	return false
}

// findRightSideForAlternatives moves the siblings following every
// Alternative into its right branch. Children are visited right to left so
// nested alternatives are completed first.
func findRightSideForAlternatives(n *Node) {
	for i := len(n.Children) - 1; i >= 0; i-- {
		child := n.Children[i]
		findRightSideForAlternatives(child)
		if child.Kind != Alternative || len(child.Children) != 1 {
			continue
		}

		rest := n.Children[i+1:]
		var right *Node
		switch len(rest) {
		case 0:
			right = NewNode(Nothing)
		case 1:
			right = rest[0]
		default:
			right = NewNode(Group, append([]*Node(nil), rest...)...)
		}
		child.Children = append(child.Children, right)
		n.Children = n.Children[:i+1]
	}
}
