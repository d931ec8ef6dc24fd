package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompletionLink_Active(t *testing.T) {
	now := time.Now()
	used := now.Add(-time.Hour)

	cases := []struct {
		name   string
		link   CompletionLink
		active bool
	}{
		{"fresh", CompletionLink{ExpiresAt: now.Add(time.Hour)}, true},
		{"used", CompletionLink{ExpiresAt: now.Add(time.Hour), UsedAt: &used}, false},
		{"expired", CompletionLink{ExpiresAt: now.Add(-time.Second)}, false},
		{"expires exactly now", CompletionLink{ExpiresAt: now}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.active, tc.link.Active(now))
		})
	}
}
