package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomString(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}

// NewDraftID generates the client-style draft identifier assigned on first
// save: app_<epoch ms>_<random>.
func NewDraftID() string {
	return fmt.Sprintf("app_%d_%s", time.Now().UnixMilli(), randomString(9))
}

// NewLinkToken returns an unguessable completion-link token.
func NewLinkToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "") + randomString(8)
}

// NewProviderCode returns the short human-facing provider code.
func NewProviderCode() string {
	return "PRV-" + strings.ToUpper(randomString(8))
}
