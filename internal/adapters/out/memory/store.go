// Package memory is an in-process implementation of the workflow unit of work.
//
// A Store keeps committed state in maps. Each unit of work takes the store
// lock in Begin and holds it until Commit or Rollback, so units of work are
// serialized the same way row locks serialize them in postgres. Writes go to
// a private copy that replaces the committed state on Commit.
package memory

import (
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/request"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/stock"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
)

// ErrNoTransaction is returned by Commit and Rollback outside Begin.
var ErrNoTransaction = errors.New("memory: no active transaction")

type requestRow struct {
	id      kernel.UUID
	code    string
	status  request.Status
	lines   []request.Line
	version int
}

func (r requestRow) restore() (*request.Request, error) {
	return request.RestoreRequest(r.id, r.code, r.status, r.lines, r.version)
}

type lotRow struct {
	id         kernel.UUID
	productID  kernel.UUID
	quantity   int
	expiryDate *time.Time
	entryDate  time.Time
	version    int
}

func (r lotRow) restore() (*stock.Lot, error) {
	return stock.RestoreLot(r.id, r.productID, r.quantity, r.expiryDate, r.entryDate, r.version)
}

// data is one consistent version of everything the store holds. Values are
// replaced, never mutated in place, so a shallow clone is a snapshot.
type data struct {
	deliveries map[kernel.UUID]delivery.State
	history    []delivery.HistoryRecord
	requests   map[kernel.UUID]requestRow
	lots       map[kernel.UUID]lotRow
	kits       map[kernel.UUID][]stock.KitComponent
	outbox     []ports.OutboxMessage
}

func (d data) clone() data {
	return data{
		deliveries: maps.Clone(d.deliveries),
		history:    slices.Clone(d.history),
		requests:   maps.Clone(d.requests),
		lots:       maps.Clone(d.lots),
		kits:       maps.Clone(d.kits),
		outbox:     slices.Clone(d.outbox),
	}
}

// Store is the committed state shared by every unit of work it creates.
type Store struct {
	mu        sync.Mutex
	committed data
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		committed: data{
			deliveries: map[kernel.UUID]delivery.State{},
			requests:   map[kernel.UUID]requestRow{},
			lots:       map[kernel.UUID]lotRow{},
			kits:       map[kernel.UUID][]stock.KitComponent{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// PutKit registers or replaces the composition of a kit.
func (s *Store) PutKit(kitID kernel.UUID, components ...stock.KitComponent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed.kits[kitID] = slices.Clone(components)
}

// Outbox returns a copy of every outbox message, published ones included.
func (s *Store) Outbox() []ports.OutboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.committed.outbox)
}

// Create returns a new unit of work bound to the store.
func (s *Store) Create() *UnitOfWork {
	return &UnitOfWork{store: s}
}

func (s *Store) begin() data {
	s.mu.Lock()
	return s.committed.clone()
}

func (s *Store) commit(d data) {
	s.committed = d
	s.mu.Unlock()
}

func (s *Store) release() {
	s.mu.Unlock()
}
