package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wehubfusion/Daedalus/pkg/registry"
)

// SnapshotBlobPath builds the blob path for one volume snapshot:
// runs/<runID>/zone_<zone>/volume_<timeIter>.csv
func SnapshotBlobPath(runID string, zone, timeIter int) string {
	return fmt.Sprintf("runs/%s/zone_%d/volume_%05d.csv", runID, zone, timeIter)
}

// EncodeSnapshot serializes the volume registry as a delimited table: a
// header row of quoted field labels followed by one row per spatial point,
// columns in declaration order.
func EncodeSnapshot(vol *registry.Volume) ([]byte, error) {
	if vol == nil {
		return nil, errors.New("volume registry is required")
	}

	keys := vol.OrderedKeys("")
	if len(keys) == 0 {
		return nil, errors.New("volume registry has no declared fields")
	}

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		schema, _ := vol.Schema(key)
		fmt.Fprintf(&b, "%q", schema.Label)
	}
	b.WriteByte('\n')

	for point := 0; point < vol.NumPoints(); point++ {
		for i, key := range keys {
			value, err := vol.Value(key, point)
			if err != nil {
				return nil, fmt.Errorf("snapshot encode: %w", err)
			}
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%17.10e", value)
		}
		b.WriteByte('\n')
	}

	return []byte(b.String()), nil
}
