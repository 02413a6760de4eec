package generic

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource hands out event identifiers. Every call returns a new one.
type IDSource interface {
	NewID() EventID
}

// UUIDSource generates random (v4) UUIDs.
type UUIDSource struct{}

func (UUIDSource) NewID() EventID { return EventID(uuid.NewString()) }

// DefaultIDSource is used when no source is configured.
var DefaultIDSource IDSource = UUIDSource{}

// SequenceSource yields prefix-1, prefix-2, ... Safe for concurrent use.
type SequenceSource struct {
	Prefix string
	next   atomic.Uint64
}

func NewSequenceSource(prefix string) *SequenceSource {
	return &SequenceSource{Prefix: prefix}
}

func (s *SequenceSource) NewID() EventID {
	return EventID(fmt.Sprintf("%s-%d", s.Prefix, s.next.Add(1)))
}
