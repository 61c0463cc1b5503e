package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// VoterPrefix marks identities derived from a network fingerprint rather
// than supplied by the client.
const VoterPrefix = "user_"

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// ShortSHA256 returns the first n hex characters of SHA256(input).
// Used for log correlation where the raw value must not be written.
func ShortSHA256(input string, n int) string {
	full := SHA256Hex(input)
	if n > len(full) {
		return full
	}
	return full[:n]
}

// Fingerprint folds xxhash64(ip-userAgent) into the non-negative 31-bit range.
func Fingerprint(ip, userAgent string) uint32 {
	sum := xxhash.Sum64String(ip + "-" + userAgent)
	return uint32((sum ^ (sum >> 32)) & 0x7fffffff)
}

// VoterIdentity renders the fingerprint of a client as a short base36 key.
// Stable for one ip/agent pair, trivially forgeable: an anti-abuse
// heuristic, not an authentication mechanism.
func VoterIdentity(ip, userAgent string) string {
	return VoterPrefix + strconv.FormatUint(uint64(Fingerprint(ip, userAgent)), 36)
}
