// Package news holds article records in an append-ordered linked chain.
//
// The chain lives in an arena: every node is addressed by its index and
// links to its successor by index, with nilNode marking the end. Nodes are
// never removed, so an index stays valid for the life of the Store.
package news

import "iter"

// Record is one article entry. Fields are stored exactly as parsed.
type Record struct {
	Title   string `json:"title"`
	Text    string `json:"text"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
}

const nilNode = -1

type node struct {
	rec  Record
	next int
}

// Store is an ordered chain of records. The zero value is not ready for use;
// call NewStore.
//
// A Store is not safe for concurrent use.
type Store struct {
	nodes []node
	head  int
	tail  int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{head: nilNode, tail: nilNode}
}

// Insert appends a record at the tail of the chain.
func (s *Store) Insert(title, text, subject, date string) {
	idx := len(s.nodes)
	s.nodes = append(s.nodes, node{
		rec:  Record{Title: title, Text: text, Subject: subject, Date: date},
		next: nilNode,
	})
	if s.tail == nilNode {
		s.head = idx
	} else {
		s.nodes[s.tail].next = idx
	}
	s.tail = idx
}

// All yields the records in current chain order. The sequence may be ranged
// over any number of times; it must not be used while the store is sorted.
func (s *Store) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for i := s.head; i != nilNode; i = s.nodes[i].next {
			if !yield(s.nodes[i].rec) {
				return
			}
		}
	}
}

// Count walks the chain and returns the number of reachable records.
func (s *Store) Count() int {
	n := 0
	for i := s.head; i != nilNode; i = s.nodes[i].next {
		n++
	}
	return n
}

// Empty reports whether the chain has no records.
func (s *Store) Empty() bool { return s.head == nilNode }

// Page returns up to limit records starting at offset, in chain order.
// A non-positive limit returns everything after offset.
func (s *Store) Page(offset, limit int) []Record {
	var out []Record
	pos := 0
	for rec := range s.All() {
		if pos >= offset {
			if limit > 0 && len(out) == limit {
				break
			}
			out = append(out, rec)
		}
		pos++
	}
	return out
}
