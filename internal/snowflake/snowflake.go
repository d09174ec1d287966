// Package snowflake generates the primary keys of links: unique 64-bit IDs
// that are roughly time-sortable.
// https://en.wikipedia.org/wiki/Snowflake_ID
package snowflake

import (
	"errors"
	"sync"
	"time"
)

const (
	customEpoch int64 = 1704067200000 // Jan 1, 2024
	nodeIDBits  uint  = 10
	seqBits     uint  = 12
	maxNodeID   int64 = -1 ^ (-1 << nodeIDBits)
	maxSeq      int64 = -1 ^ (-1 << seqBits)
)

var ErrInvalidNodeID = errors.New("snowflake: node id out of range")

type Generator struct {
	mu        sync.Mutex
	lastStamp int64
	nodeID    int64
	seq       int64
	now       func() int64
}

func NewGenerator(nodeID int64) (*Generator, error) {
	if nodeID < 0 || nodeID > maxNodeID {
		return nil, ErrInvalidNodeID
	}

	return &Generator{
		nodeID: nodeID,
		now:    func() int64 { return time.Now().UnixMilli() },
	}, nil
}

func (g *Generator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now()
	if ts < g.lastStamp {
		// Clock went backwards, wait
		ts = g.wait()
	}
	if ts == g.lastStamp {
		g.seq = (g.seq + 1) & maxSeq
		if g.seq == 0 {
			ts = g.wait()
		}
	} else {
		g.seq = 0
	}
	g.lastStamp = ts

	id := ((ts - customEpoch) << (nodeIDBits + seqBits)) |
		(g.nodeID << seqBits) |
		g.seq

	return id, nil
}

// Time returns the millisecond timestamp encoded in id.
func Time(id int64) time.Time {
	return time.UnixMilli((id >> (nodeIDBits + seqBits)) + customEpoch)
}

func (g *Generator) wait() int64 {
	ts := g.now()
	for ts <= g.lastStamp {
		time.Sleep(time.Millisecond)
		ts = g.now()
	}

	return ts
}
