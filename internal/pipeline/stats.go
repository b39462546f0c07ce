package pipeline

import (
	"sync"

	"github.com/danmuck/mview/internal/render"
)

// Stats counts messages and windows for the process lifetime. The sink is the
// only writer; the status endpoint reads snapshots.
type Stats struct {
	mu      sync.Mutex
	current StatsSnapshot
}

type StatsSnapshot struct {
	MessageCount uint64 `json:"message_count"`
	MessageLen   int    `json:"message_len"`
	ChunkCount   int    `json:"chunk_count"`
	ChunkStart   int    `json:"chunk_start"`
	Windows      uint64 `json:"windows"`
	Bytes        uint64 `json:"bytes"`
	Anomalies    uint64 `json:"anomalies"`
}

func (s *Stats) BeginMessage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.MessageCount++
	s.current.MessageLen = n
	s.current.ChunkCount = 0
	s.current.ChunkStart = 0
	s.current.Bytes += uint64(n)
}

func (s *Stats) BeginWindow(start int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.ChunkCount++
	s.current.ChunkStart = start
	s.current.Windows++
}

func (s *Stats) AddAnomaly() {
	s.mu.Lock()
	s.current.Anomalies++
	s.mu.Unlock()
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Counters returns the values printed in the statistics block.
func (s *Stats) Counters(windowLen int) render.Counters {
	snap := s.Snapshot()
	return render.Counters{
		MessageCount: snap.MessageCount,
		MessageLen:   snap.MessageLen,
		ChunkCount:   snap.ChunkCount,
		ChunkStart:   snap.ChunkStart,
		ChunkLen:     windowLen,
	}
}
