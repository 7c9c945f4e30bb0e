package evidence

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// IDGenerator produces a record identifier for a file and its content.
type IDGenerator func(fileName string, content []byte) string

// RandomID returns a fresh UUIDv4 regardless of content.
func RandomID(string, []byte) string {
	return uuid.NewString()
}

// ContentID derives the identifier from the file content, so the same bytes
// always yield the same ID.
func ContentID(_ string, content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// ParseIDStrategy maps a configuration value to a generator.
func ParseIDStrategy(name string) (IDGenerator, error) {
	switch name {
	case "", "random":
		return RandomID, nil
	case "content":
		return ContentID, nil
	}
	return nil, fmt.Errorf("unknown id strategy: %q", name)
}
