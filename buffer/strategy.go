package buffer

// ReplacementStrategy chooses which unpinned buffer to evict when a new
// block needs to be read into the pool. Implementations are free to track
// additional bookkeeping via pinBuffer/unpinBuffer (e.g. for clock or LRU
// ordering); Manager notifies them of every pin/unpin so they can do so.
type ReplacementStrategy interface {
	initialize(pool []*Buffer)
	chooseUnpinnedBuffer() *Buffer
	pinBuffer(buffer *Buffer)
	unpinBuffer(buffer *Buffer)
}

// naiveStrategy scans the pool from the front and returns the first
// unpinned buffer it finds. It does no extra bookkeeping.
type naiveStrategy struct {
	pool []*Buffer
}

// NewNaiveStrategy returns a ReplacementStrategy that picks the first
// unpinned buffer encountered by a linear scan of the pool.
func NewNaiveStrategy() ReplacementStrategy {
	return &naiveStrategy{}
}

func (s *naiveStrategy) initialize(pool []*Buffer) {
	s.pool = pool
}

func (s *naiveStrategy) chooseUnpinnedBuffer() *Buffer {
	for _, buff := range s.pool {
		if !buff.isPinned() {
			return buff
		}
	}
	return nil
}

func (s *naiveStrategy) pinBuffer(_ *Buffer)   {}
func (s *naiveStrategy) unpinBuffer(_ *Buffer) {}
