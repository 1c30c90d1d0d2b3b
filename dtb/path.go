package dtb

import (
	"iter"
	"strings"
)

// pathSplit is a slash-separated pattern with a movable active component.
// Components are found by rescanning path, so no slice is allocated.
type pathSplit struct {
	path  string
	comp  string
	index int
	num   int
}

// newPathSplit drops one trailing slash. A leading slash leaves an empty
// first component, which matches the root node's empty name.
func newPathSplit(path string) pathSplit {
	path = strings.TrimSuffix(path, "/")
	s := pathSplit{path: path, num: strings.Count(path, "/") + 1}
	s.update()
	return s
}

func (s *pathSplit) update() {
	rest := s.path
	for i := 0; ; i++ {
		comp, tail, found := strings.Cut(rest, "/")
		if i == s.index || !found {
			s.comp = comp
			return
		}
		rest = tail
	}
}

func (s *pathSplit) component() string { return s.comp }
func (s *pathSplit) level() int        { return s.index }

func (s *pathSplit) movePrev() bool {
	if s.index == 0 {
		return false
	}
	s.index--
	s.update()
	return true
}

func (s *pathSplit) moveNext() bool {
	if s.index >= s.num-1 {
		return false
	}
	s.index++
	s.update()
	return true
}

// matchNodeName compares a pattern component against a full node name. A
// component without '@' matches any unit address.
func matchNodeName(comp, name string) bool {
	if strings.IndexByte(comp, '@') >= 0 {
		return comp == name
	}
	base, _, _ := strings.Cut(name, "@")
	return base == comp
}

// PathIter lazily yields every node or property matching a pattern. Every
// same-named sibling matches.
type PathIter struct {
	iter  StructIter
	path  pathSplit
	level int
	err   error
}

// Next returns the next match and an iterator positioned just after it.
// Querying that iterator with a relative pattern narrows the search to the
// matched node's subtree. The query ends with ErrNoMoreStructItems at the
// end of the tree, or ErrOutOfParentNode when the tree climbs above the
// node the query started in. Both are sticky.
func (p *PathIter) Next() (Item, StructIter, error) {
	if p.err != nil {
		return Item{}, StructIter{}, p.err
	}
	for {
		item, err := p.iter.Next()
		if err != nil {
			p.err = err
			return Item{}, StructIter{}, err
		}
		switch item.Kind {
		case ItemBeginNode:
			if p.level == p.path.level() && matchNodeName(p.path.component(), item.Name) && !p.path.moveNext() {
				p.level++
				return item, p.iter, nil
			}
			p.level++
		case ItemProperty:
			if p.level == p.path.level() && p.path.component() == item.Name {
				return item, p.iter, nil
			}
		case ItemEndNode:
			if p.level == p.path.level() && !p.path.movePrev() {
				p.err = ErrOutOfParentNode
				return Item{}, StructIter{}, p.err
			}
			p.level--
		}
	}
}

// Err returns the error that ended the query when it was neither
// ErrNoMoreStructItems nor ErrOutOfParentNode.
func (p *PathIter) Err() error {
	if p.err == nil || IsCode(p.err, CodeNoMoreStructItems) || IsCode(p.err, CodeOutOfParentNode) {
		return nil
	}
	return p.err
}

// All adapts the query for range-over-func.
func (p *PathIter) All() iter.Seq2[Item, StructIter] {
	return func(yield func(Item, StructIter) bool) {
		for {
			item, it, err := p.Next()
			if err != nil || !yield(item, it) {
				return
			}
		}
	}
}
