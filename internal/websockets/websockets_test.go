package websockets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SaveRequestCopiesFormData(t *testing.T) {
	sess := &session{
		applicationID: "app_1",
		formData:      map[string]any{"firstName": "Jane"},
		currentStep:   2,
		totalSteps:    5,
	}

	request := sess.saveRequest()
	require.Equal(t, "app_1", request.ApplicationID)
	assert.Equal(t, 2, request.CurrentStep)
	assert.Equal(t, 5, request.TotalSteps)

	// A later field change must not mutate an in-flight save payload.
	sess.formData["firstName"] = "Janet"
	assert.Equal(t, "Jane", request.FormData["firstName"])
}
