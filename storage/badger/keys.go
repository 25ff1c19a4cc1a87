package badger

// Key prefixes for different data types
const (
	vectorRecordPrefix = "vecrec"
)

// makeVectorRecordKey generates a key for a vector record by chunk ID.
func makeVectorRecordKey(id string) []byte {
	return []byte(vectorRecordPrefix + ":" + id)
}
