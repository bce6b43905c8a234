package bpstore

import (
	"errors"
	"fmt"
	"os"
)

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

// datFilename and tblFilename mirror the reference store's "%s/%d_%u.dat"
// / ".tbl" naming (spec §4.F): root path, then service ID and bucket ID
// joined with an underscore.
func datFilename(root string, serviceID uint64, bucketID uint32) string {
	return fmt.Sprintf("%s/%d_%d.dat", root, serviceID, bucketID)
}

func tblFilename(root string, serviceID uint64, bucketID uint32) string {
	return fmt.Sprintf("%s/%d_%d.tbl", root, serviceID, bucketID)
}
