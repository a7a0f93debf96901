package compose

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// Fingerprint is the Base58 encoded SHA256 of the spec's JSON encoding. Map
// keys are encoded sorted, so equal specs always share a fingerprint.
func Fingerprint(spec BuildSpec) (string, error) {
	data, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("failed to encode build spec: %w", err)
	}
	hash := sha256.Sum256(data)
	return base58.Encode(hash[:]), nil
}
