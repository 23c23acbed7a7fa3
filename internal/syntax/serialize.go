package syntax

import (
	"strconv"
	"strings"

	"github.com/rangoo94/object-regexp/pkg/objects"
)

// Serialize renders a syntax tree back into pattern text. Parsing the result
// gives a tree that matches the same inputs.
func Serialize(n *Node) string {
	var sb strings.Builder
	serialize(&sb, n)
	return sb.String()
}

func serialize(sb *strings.Builder, n *Node) {
	switch n.Kind {
	case Root:
		serializeChildren(sb, n)
	case Group:
		if n.Name == "" && len(n.Children) == 1 && n.Children[0].Kind == Alternative {
			serialize(sb, n.Children[0])
			return
		}
		sb.WriteByte('(')
		if n.Name != "" {
			sb.WriteString("?<" + n.Name + ">")
		}
		serializeChildren(sb, n)
		sb.WriteByte(')')
	case AtomicGroup:
		sb.WriteString("(?>")
		serializeChildren(sb, n)
		sb.WriteByte(')')
	case Alternative:
		sb.WriteByte('(')
		serialize(sb, n.Children[0])
		sb.WriteByte('|')
		serialize(sb, n.Children[1])
		sb.WriteByte(')')
	case Object:
		sb.WriteString("[" + serializeOptions(n.Options) + "]")
	case NegatedObject:
		sb.WriteString("[^" + serializeOptions(n.Options) + "]")
	case AnyObject:
		sb.WriteByte('.')
	case EndIndex:
		sb.WriteByte('$')
	case Nothing:
	default:
		child := n.Child()
		if quantifiable(child.Kind) || child.Kind == Alternative {
			serialize(sb, child)
		} else {
			sb.WriteByte('(')
			serialize(sb, child)
			sb.WriteByte(')')
		}
		sb.WriteString(quantifierSuffix(n))
	}
}

func serializeChildren(sb *strings.Builder, n *Node) {
	for _, c := range n.Children {
		serialize(sb, c)
	}
}

func quantifierSuffix(n *Node) string {
	var s string
	switch n.Kind {
	case Optional:
		return "?"
	case OptionalLazy:
		return "??"
	case OptionalPossessive:
		return "?+"
	case AnyGreedy:
		return "*"
	case AnyLazy:
		return "*?"
	case AnyPossessive:
		return "*+"
	case ManyGreedy:
		return "+"
	case ManyLazy:
		return "+?"
	case ManyPossessive:
		return "++"
	case AmountExact:
		s = "{" + strconv.Itoa(n.Min) + "}"
	case AmountAtLeast:
		s = "{" + strconv.Itoa(n.Min) + ",}"
	case AmountAtMost:
		s = "{," + strconv.Itoa(n.Max) + "}"
	case AmountBetween:
		s = "{" + strconv.Itoa(n.Min) + "," + strconv.Itoa(n.Max) + "}"
	}
	if n.Possessive {
		s += "+"
	}
	return s
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, `]`, `\]`, `|`, `\|`)

func serializeOptions(options []objects.Option) string {
	parts := make([]string, len(options))
	for i, o := range options {
		if o.HasValue {
			parts[i] = o.Type + "=" + valueEscaper.Replace(o.Value)
		} else {
			parts[i] = o.Type
		}
	}
	return strings.Join(parts, "|")
}
