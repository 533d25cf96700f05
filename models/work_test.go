package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(WorkStatusCompleted))
	assert.True(t, IsTerminalStatus(WorkStatusFailed))
	assert.False(t, IsTerminalStatus(WorkStatusPending))
	assert.False(t, IsTerminalStatus(WorkStatusGenerating))
	assert.False(t, IsTerminalStatus(""))
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "user_works", Work{}.TableName())
	assert.Equal(t, "user_answers", UserAnswer{}.TableName())
}
