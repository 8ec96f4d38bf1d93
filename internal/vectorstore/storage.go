// Package vectorstore holds what its backends share: the deleted-state
// sentinel, record id formatting and the distance metric.
package vectorstore

import (
	"errors"
	"fmt"
	"math"
)

// ErrCollectionDeleted is returned by a store whose collection was
// dropped. The store must be re-created before further use; it never
// silently recreates storage.
var ErrCollectionDeleted = errors.New("collection deleted; re-create the store before further use")

// RecordID formats the id of the n-th record inserted into a
// collection. Ids are monotonically increasing and never reused while
// the collection exists.
func RecordID(n int64) string {
	return fmt.Sprintf("chunk_%d", n)
}

// CosineDistance returns 1 minus the cosine similarity of a and b.
// Lower is more similar; orthogonal or zero vectors score 1.
func CosineDistance(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
