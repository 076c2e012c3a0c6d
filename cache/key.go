package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key builds a deterministic cache key from a resource name and its
// filter/pagination parameters: resource + sha256 over a canonical JSON
// rendering of the params. Two semantically identical parameter sets always
// hash to the same key regardless of how the caller assembled them.
func Key(resource string, params any) (string, error) {
	canon, err := Canonical(params)
	if err != nil {
		return "", fmt.Errorf("cache key for %s: %w", resource, err)
	}
	h := sha256.New()
	h.Write([]byte(resource))
	h.Write([]byte{'\n'})
	h.Write(canon)
	return resource + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// Canonical renders params as JSON with sorted object keys at every level.
// Structs are first flattened through their json tags into maps, since
// encoding/json sorts map keys but preserves struct field order.
func Canonical(params any) ([]byte, error) {
	if params == nil {
		return []byte("null"), nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}
