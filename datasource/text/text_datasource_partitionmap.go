package text

import "github.com/go-sif/sparkling"

// PartitionMap is an iterator producing a sequence of PartitionLoaders, slicesPerFile for each file
type PartitionMap struct {
	files         []string
	slicesPerFile int
	next          int
	source        *DataSource
}

// HasNext returns true iff there is another PartitionLoader remaining
func (pm *PartitionMap) HasNext() bool {
	return pm.next < len(pm.files)*pm.slicesPerFile
}

// Next returns the next PartitionLoader for a slice of a file
func (pm *PartitionMap) Next() sparkling.PartitionLoader {
	result := &PartitionLoader{
		path:   pm.files[pm.next/pm.slicesPerFile],
		slice:  pm.next % pm.slicesPerFile,
		slices: pm.slicesPerFile,
		source: pm.source,
	}
	pm.next++
	return result
}
