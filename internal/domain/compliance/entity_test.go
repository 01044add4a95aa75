package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityWorseThan(t *testing.T) {
	assert.True(t, SeverityViolation.WorseThan(SeverityWarning))
	assert.True(t, SeverityViolation.WorseThan(SeverityInfo))
	assert.True(t, SeverityWarning.WorseThan(SeverityInfo))

	assert.False(t, SeverityInfo.WorseThan(SeverityWarning))
	assert.False(t, SeverityWarning.WorseThan(SeverityViolation))

	// Strict ordering, a severity is never worse than itself.
	assert.False(t, SeverityViolation.WorseThan(SeverityViolation))
	assert.False(t, SeverityInfo.WorseThan(SeverityInfo))
}
