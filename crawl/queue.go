package crawl

// Queue is a BFS queue of URLs that never holds the same URL twice.
type Queue struct {
	items   []string
	visited map[string]bool
	idx     int // current read position
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{
		visited: make(map[string]bool),
	}
}

// Add enqueues a URL unless it was seen before, and reports whether it did.
func (q *Queue) Add(url string) bool {
	if q.visited[url] {
		return false
	}
	q.visited[url] = true
	q.items = append(q.items, url)
	return true
}

// HasNext returns true if there are unprocessed URLs.
func (q *Queue) HasNext() bool {
	return q.idx < len(q.items)
}

// Next returns the next unprocessed URL and advances the pointer.
func (q *Queue) Next() string {
	url := q.items[q.idx]
	q.idx++
	return url
}

// Pending returns how many URLs are waiting.
func (q *Queue) Pending() int {
	return len(q.items) - q.idx
}

// Seen returns the number of distinct URLs ever added.
func (q *Queue) Seen() int {
	return len(q.visited)
}
