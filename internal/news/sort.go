package news

import "github.com/starford/newsledger/internal/datekey"

// Sort reorders the chain by date, oldest first, by relinking nodes in place.
// Records with unparsable dates end up after all dated records.
//
// The sort is stable: records with equal dates keep their arrival order,
// because split keeps earlier nodes in the front half and merge drains the
// front half first on ties.
func (s *Store) Sort() {
	s.head = s.mergeSort(s.head)
	s.tail = s.head
	if s.tail == nilNode {
		return
	}
	for s.nodes[s.tail].next != nilNode {
		s.tail = s.nodes[s.tail].next
	}
}

// Sorted reports whether the chain is in non-decreasing date order.
func (s *Store) Sorted() bool {
	for i := s.head; i != nilNode; i = s.nodes[i].next {
		next := s.nodes[i].next
		if next == nilNode {
			break
		}
		if s.compare(i, next) > 0 {
			return false
		}
	}
	return true
}

func (s *Store) compare(a, b int) int {
	return datekey.Compare(datekey.Of(s.nodes[a].rec.Date), datekey.Of(s.nodes[b].rec.Date))
}

func (s *Store) mergeSort(head int) int {
	if head == nilNode || s.nodes[head].next == nilNode {
		return head
	}
	front, back := s.split(head)
	return s.merge(s.mergeSort(front), s.mergeSort(back))
}

// split halves the chain starting at head using a slow and a fast cursor.
// The front half is never shorter than the back half.
func (s *Store) split(head int) (front, back int) {
	if head == nilNode || s.nodes[head].next == nilNode {
		return head, nilNode
	}
	slow, fast := head, s.nodes[head].next
	for fast != nilNode && s.nodes[fast].next != nilNode {
		slow = s.nodes[slow].next
		fast = s.nodes[s.nodes[fast].next].next
	}
	back = s.nodes[slow].next
	s.nodes[slow].next = nilNode
	return head, back
}

// merge joins two date-ordered chains. Ties are taken from a first.
func (s *Store) merge(a, b int) int {
	head, last := nilNode, nilNode
	link := func(i int) {
		if last == nilNode {
			head = i
		} else {
			s.nodes[last].next = i
		}
		last = i
	}

	for a != nilNode && b != nilNode {
		if s.compare(a, b) <= 0 {
			link(a)
			a = s.nodes[a].next
		} else {
			link(b)
			b = s.nodes[b].next
		}
	}
	rest := a
	if rest == nilNode {
		rest = b
	}
	if rest != nilNode {
		link(rest)
	}
	return head
}
