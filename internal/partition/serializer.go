package partition

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/go-sif/sparkling"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/shopspring/decimal"
)

func init() {
	gob.Register(time.Time{})
	gob.Register(decimal.Decimal{})
	gob.Register([]interface{}{})
	gob.Register(map[string]interface{}{})
}

// Serializer converts Partitions to and from a compact byte representation
type Serializer interface {
	Name() string
	Serialize(part sparkling.Partition) ([]byte, error)
	Deserialize(data []byte, schema sparkling.Schema) (sparkling.Partition, error)
}

// serializedPartition is the gob representation of a Partition. Rows are stored
// as bare value slices and rebuilt against the Dataset's Schema on the way out.
type serializedPartition struct {
	ID       string
	Index    int
	IsRows   bool
	Rows     [][]interface{}
	Elements []interface{}
}

func encode(w io.Writer, part sparkling.Partition) error {
	sp := serializedPartition{ID: part.ID(), Index: part.Index()}
	if part.GetNumRows() > 0 {
		if _, ok := part.Get(0).(sparkling.Row); ok {
			sp.IsRows = true
		}
	}
	err := part.ForEach(func(element interface{}) error {
		if !sp.IsRows {
			sp.Elements = append(sp.Elements, element)
			return nil
		}
		row, ok := element.(sparkling.Row)
		if !ok {
			return fmt.Errorf("Partition %d mixes Rows with %T elements", part.Index(), element)
		}
		sp.Rows = append(sp.Rows, row.Values())
		return nil
	})
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(&sp); err != nil {
		return fmt.Errorf("Unable to serialize Partition %d: %w", part.Index(), err)
	}
	return nil
}

func decode(r io.Reader, schema sparkling.Schema) (sparkling.Partition, error) {
	var sp serializedPartition
	if err := gob.NewDecoder(r).Decode(&sp); err != nil {
		return nil, fmt.Errorf("Unable to deserialize Partition: %w", err)
	}
	if !sp.IsRows {
		return &partitionImpl{id: sp.ID, index: sp.Index, elements: sp.Elements}, nil
	}
	if schema == nil {
		return nil, fmt.Errorf("Partition %d contains Rows, but no Schema was supplied", sp.Index)
	}
	elements := make([]interface{}, len(sp.Rows))
	for i, values := range sp.Rows {
		row, err := CreateRow(values, schema)
		if err != nil {
			return nil, err
		}
		elements[i] = row
	}
	return &partitionImpl{id: sp.ID, index: sp.Index, elements: elements}, nil
}

// LZ4PartitionSerializer is a partition serializer which uses the lz4 compression algorithm
type LZ4PartitionSerializer struct{}

// NewLZ4PartitionSerializer instantiates a new LZ4PartitionSerializer
func NewLZ4PartitionSerializer() Serializer {
	return &LZ4PartitionSerializer{}
}

// Name returns the name of this compression scheme
func (s *LZ4PartitionSerializer) Name() string {
	return "lz4"
}

// Serialize serializes and compresses partition data
func (s *LZ4PartitionSerializer) Serialize(part sparkling.Partition) ([]byte, error) {
	buf := new(bytes.Buffer)
	compressor := lz4.NewWriter(buf)
	if err := encode(compressor, part); err != nil {
		return nil, err
	}
	if err := compressor.Close(); err != nil {
		return nil, fmt.Errorf("Unable to compress Partition %d: %w", part.Index(), err)
	}
	return buf.Bytes(), nil
}

// Deserialize decompresses and deserializes partition data
func (s *LZ4PartitionSerializer) Deserialize(data []byte, schema sparkling.Schema) (sparkling.Partition, error) {
	return decode(lz4.NewReader(bytes.NewReader(data)), schema)
}

// ZstdPartitionSerializer is a partition serializer which uses the zstd compression algorithm
type ZstdPartitionSerializer struct {
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
}

// NewZstdPartitionSerializer instantiates a new ZstdPartitionSerializer
func NewZstdPartitionSerializer() (Serializer, error) {
	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("Unable to initialize compressor: %w", err)
	}
	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("Unable to initialize decompressor: %w", err)
	}
	return &ZstdPartitionSerializer{compressor: compressor, decompressor: decompressor}, nil
}

// Name returns the name of this compression scheme
func (s *ZstdPartitionSerializer) Name() string {
	return "zstd"
}

// Serialize serializes and compresses partition data
func (s *ZstdPartitionSerializer) Serialize(part sparkling.Partition) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := encode(buf, part); err != nil {
		return nil, err
	}
	return s.compressor.EncodeAll(buf.Bytes(), nil), nil
}

// Deserialize decompresses and deserializes partition data
func (s *ZstdPartitionSerializer) Deserialize(data []byte, schema sparkling.Schema) (sparkling.Partition, error) {
	raw, err := s.decompressor.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("Unable to decompress Partition: %w", err)
	}
	return decode(bytes.NewReader(raw), schema)
}

// NewSerializer produces the Serializer for a named compression scheme ("lz4" or "zstd")
func NewSerializer(compression string) (Serializer, error) {
	switch compression {
	case "", "lz4":
		return NewLZ4PartitionSerializer(), nil
	case "zstd":
		return NewZstdPartitionSerializer()
	default:
		return nil, fmt.Errorf("Unknown partition compression %q", compression)
	}
}
