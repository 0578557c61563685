package badger

import "fmt"

// Key prefixes for different data types
const (
	vectorEntryPrefix = "vecent"
	syncWatermarkKey  = "syncmark"
)

// makeVectorEntryKey generates a key for a vector entry by listing ID.
func makeVectorEntryKey(listingID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", vectorEntryPrefix, listingID))
}
