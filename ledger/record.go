package ledger

import (
	"time"

	"github.com/phantomarchive/libphantom-go/sealing"
)

// Record is one file entry of a user's archive. Records are immutable once
// appended.
type Record struct {
	Name             string         `json:"name"`
	EncryptedPayload string         `json:"encrypted_payload"`
	SealedAddress    sealing.Handle `json:"sealed_address"`
	CreatedAt        uint64         `json:"created_at"`
}

// Time returns CreatedAt as a time.Time in the local zone.
func (r *Record) Time() time.Time {
	return time.Unix(int64(r.CreatedAt), 0)
}
