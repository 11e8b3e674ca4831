package mqtt

import (
	"crypto/md5" // #nosec G501 -- identifier derivation, not a security boundary
	"encoding/hex"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// instanceSeq numbers PublishClient instances within the process. It stands
// in for a thread identifier: each producer owns its client, so the number is
// stable for that producer's lifetime and unique within the process.
var instanceSeq atomic.Uint64

// ClientID derives the broker client identifier for the (host, process,
// logical thread) triple.
//
// The host part is the node identifier used for version 1 UUIDs (a network
// interface hardware address, or a random node when none is available). It is
// hashed together with the prefix, process id and logical id so the hardware
// address never appears in the identifier or in logs.
func ClientID(prefix string, logicalID uint64) string {
	node := uuid.NodeID()

	key := prefix +
		hex.EncodeToString(node) +
		strconv.Itoa(os.Getpid()) +
		strconv.FormatUint(logicalID, 10)

	sum := md5.Sum([]byte(key)) // #nosec G401
	return hex.EncodeToString(sum[:])
}
