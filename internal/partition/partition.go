package partition

import (
	"log"

	"github.com/go-sif/sparkling"
	errors "github.com/go-sif/sparkling/errors"
	uuid "github.com/gofrs/uuid"
)

// partitionImpl is Sparkling's internal implementation of Partition
type partitionImpl struct {
	id       string
	index    int
	elements []interface{}
}

// CreatePartition creates a new Partition holding the given elements, which it takes ownership of
func CreatePartition(index int, elements []interface{}) sparkling.Partition {
	id, err := uuid.NewV4()
	if err != nil {
		log.Fatalf("failed to generate UUID for Partition: %v", err)
	}
	if elements == nil {
		elements = make([]interface{}, 0)
	}
	return &partitionImpl{
		id:       id.String(),
		index:    index,
		elements: elements,
	}
}

// ID retrieves the ID of this Partition
func (p *partitionImpl) ID() string {
	return p.id
}

// Index retrieves the index of this Partition within its Dataset
func (p *partitionImpl) Index() int {
	return p.index
}

// GetNumRows retrieves the number of elements in this Partition
func (p *partitionImpl) GetNumRows() int {
	return len(p.elements)
}

// Get retrieves a specific element from this Partition
func (p *partitionImpl) Get(pos int) interface{} {
	return p.elements[pos]
}

// Elements returns a copy of the elements of this Partition, in order
func (p *partitionImpl) Elements() []interface{} {
	elements := make([]interface{}, len(p.elements))
	copy(elements, p.elements)
	return elements
}

// ForEach iterates over elements in order, stopping at the first error
func (p *partitionImpl) ForEach(fn func(element interface{}) error) error {
	for _, e := range p.elements {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// sliceIterator is a PartitionIterator over a fixed slice of Partitions
type sliceIterator struct {
	parts []sparkling.Partition
	next  int
}

// CreatePartitionIterator produces a PartitionIterator over the given Partitions, in order
func CreatePartitionIterator(parts []sparkling.Partition) sparkling.PartitionIterator {
	return &sliceIterator{parts: parts}
}

func (it *sliceIterator) HasNextPartition() bool {
	return it.next < len(it.parts)
}

func (it *sliceIterator) NextPartition() (sparkling.Partition, error) {
	if !it.HasNextPartition() {
		return nil, errors.NoMorePartitionsError{}
	}
	part := it.parts[it.next]
	it.next++
	return part, nil
}
