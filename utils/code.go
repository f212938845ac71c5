package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Confirmation codes are 40 hex characters.
const codeLength = 40

// NewConfirmationCode derives a one-time code from fresh UUID entropy, the
// target email and the current time, so it is not predictable from the email
// alone.
func NewConfirmationCode(email string) string {
	salt := uuid.NewString() + email + strconv.FormatInt(time.Now().UnixNano(), 10)
	sum := sha256.Sum256([]byte(salt))
	return hex.EncodeToString(sum[:])[:codeLength]
}
