package delivery

import (
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
)

// Step is the actor, timestamp and notes recorded by one workflow checkpoint.
type Step struct {
	By    kernel.UUID
	At    time.Time
	Notes string
}

func newStep(by kernel.UUID, at time.Time, notes string) *Step {
	return &Step{By: by, At: at.UTC(), Notes: notes}
}

func (s *Step) byID() *kernel.UUID {
	if s == nil {
		return nil
	}
	id := s.By
	return &id
}

func (s *Step) clone() *Step {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
