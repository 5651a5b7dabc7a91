package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Record is a single returned assignment with its energy and multiplicity.
type Record struct {
	Sample         map[string]int8
	Energy         float64
	NumOccurrences int
}

// ResolveHook mutates a sample set's records and metadata when the set is
// first resolved. Hooks run exactly once, in registration order, before any
// caller-visible read of records or metadata succeeds.
type ResolveHook func(records []Record, info map[string]any) error

// SampleSet is an ordered collection of assignments produced by a sampler.
//
// A sample set may be pending: an asynchronous sampler hands back a set whose
// records materialize on first access. Done reports completion without
// forcing; Resolve (or any record/metadata accessor) forces materialization
// and then runs the registered resolution hooks.
type SampleSet struct {
	id string

	mu          sync.Mutex
	records     []Record
	info        map[string]any
	resolved    bool
	err         error
	poll        func() bool
	materialize func() ([]Record, map[string]any, error)
	hooks       []ResolveHook
}

// SampleSetFromRecords builds an already-resolved sample set.
func SampleSetFromRecords(records []Record, info map[string]any) *SampleSet {
	if info == nil {
		info = make(map[string]any)
	}
	return &SampleSet{
		id:       uuid.NewString(),
		records:  records,
		info:     info,
		resolved: true,
	}
}

// NewDeferredSampleSet builds a pending sample set. poll reports, without
// blocking, whether the underlying computation has finished; materialize
// blocks until the records and metadata are available.
func NewDeferredSampleSet(poll func() bool, materialize func() ([]Record, map[string]any, error)) *SampleSet {
	return &SampleSet{
		id:          uuid.NewString(),
		info:        make(map[string]any),
		poll:        poll,
		materialize: materialize,
	}
}

// ID returns the unique identifier of this sample set.
func (s *SampleSet) ID() string { return s.id }

// Done reports whether the underlying computation has finished. It never
// blocks and never triggers resolution.
func (s *SampleSet) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved || s.poll == nil {
		return true
	}
	return s.poll()
}

// OnResolve registers a hook to run at resolution time. If the set is already
// resolved the hook runs immediately.
func (s *SampleSet) OnResolve(hook ResolveHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resolved {
		s.hooks = append(s.hooks, hook)
		return
	}
	if s.err == nil {
		s.err = hook(s.records, s.info)
	}
}

// Resolve forces materialization and runs pending hooks. It is idempotent:
// the first outcome, success or failure, is sticky.
func (s *SampleSet) Resolve() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked()
}

func (s *SampleSet) resolveLocked() error {
	if !s.resolved {
		s.resolved = true
		if s.materialize != nil {
			records, info, err := s.materialize()
			if err != nil {
				s.err = fmt.Errorf("materializing sample set %s: %w", s.id, err)
				return s.err
			}
			s.records = records
			for k, v := range info {
				s.info[k] = v
			}
		}
		for _, hook := range s.hooks {
			if err := hook(s.records, s.info); err != nil {
				s.err = err
				break
			}
		}
		s.hooks = nil
	}
	return s.err
}

// Records returns the resolved records, forcing resolution if needed.
func (s *SampleSet) Records() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.resolveLocked(); err != nil {
		return nil, err
	}
	return s.records, nil
}

// Info returns the resolved metadata map, forcing resolution if needed.
func (s *SampleSet) Info() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.resolveLocked(); err != nil {
		return nil, err
	}
	return s.info, nil
}

// Energies returns the energy of each record in order.
func (s *SampleSet) Energies() ([]float64, error) {
	records, err := s.Records()
	if err != nil {
		return nil, err
	}
	energies := make([]float64, len(records))
	for i, rec := range records {
		energies[i] = rec.Energy
	}
	return energies, nil
}

// First returns the lowest-energy record.
func (s *SampleSet) First() (Record, error) {
	records, err := s.Records()
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, fmt.Errorf("sample set %s is empty", s.id)
	}
	best := records[0]
	for _, rec := range records[1:] {
		if rec.Energy < best.Energy {
			best = rec
		}
	}
	return best, nil
}

// Len returns the number of records, forcing resolution if needed.
func (s *SampleSet) Len() (int, error) {
	records, err := s.Records()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
