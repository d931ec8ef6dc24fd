package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDraftID(t *testing.T) {
	pattern := regexp.MustCompile(`^app_\d{13}_[a-z0-9]{9}$`)

	id := NewDraftID()
	assert.Regexp(t, pattern, id)
	assert.NotEqual(t, id, NewDraftID())
}

func TestNewLinkToken(t *testing.T) {
	token := NewLinkToken()
	assert.Len(t, token, 40)
	assert.NotContains(t, token, "-")
	assert.NotEqual(t, token, NewLinkToken())
}

func TestNewProviderCode(t *testing.T) {
	pattern := regexp.MustCompile(`^PRV-[A-Z0-9]{8}$`)

	code := NewProviderCode()
	assert.Regexp(t, pattern, code)
	assert.NotEqual(t, code, NewProviderCode())
}
