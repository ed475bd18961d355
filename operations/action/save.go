package action

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/fileio"
	"github.com/go-sif/sparkling/internal/dataset"
)

// SuccessMarker is written to an output directory once every Partition has been saved
const SuccessMarker = "_SUCCESS"

// formatLine renders an element as a line of text
func formatLine(element interface{}) string {
	switch e := element.(type) {
	case sparkling.Row:
		return e.ToString()
	case string:
		return e
	default:
		return fmt.Sprint(e)
	}
}

// SaveAsTextFile writes each Partition of a Dataset to a file named part-NNNNN within the directory
// dir, one element per line. extension (e.g. ".gz") selects an optional compression codec. The
// directory must not already exist.
func SaveAsTextFile(ctx context.Context, d sparkling.Dataset, fs fileio.FileSystem, dir string, extension string) error {
	const op = "saveAsTextFile"
	if extension != "" && fileio.CodecFor(extension) == nil {
		return errors.Validationf(op, "unsupported compression extension %s", extension)
	}
	exists, err := fs.Exists(dir)
	if err != nil {
		return err
	}
	if exists {
		return errors.Validationf(op, "output directory %s already exists", dir)
	}
	engine, err := dataset.EngineOf(d)
	if err != nil {
		return err
	}
	err = engine.Run(ctx, d, op, nil, func(part sparkling.Partition) error {
		var sb strings.Builder
		err := part.ForEach(func(element interface{}) error {
			sb.WriteString(formatLine(element))
			sb.WriteByte('\n')
			return nil
		})
		if err != nil {
			return err
		}
		return fs.Dump(path.Join(dir, fmt.Sprintf("part-%05d%s", part.Index(), extension)), []byte(sb.String()))
	})
	if err != nil {
		return err
	}
	return fs.Dump(path.Join(dir, SuccessMarker), []byte{})
}
