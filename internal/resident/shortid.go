package resident

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// shortIDLength is 6 hex characters (24 bits). Collisions become likely past
// a few thousand records; the unique index plus regeneration on conflict is
// the backstop.
const shortIDLength = 6

// newShortID derives a short public identifier by hashing a fresh UUID and
// keeping the first 6 hex characters.
func newShortID() string {
	sum := sha256.Sum256([]byte(uuid.NewString()))
	return hex.EncodeToString(sum[:])[:shortIDLength]
}
