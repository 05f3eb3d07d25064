package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	info := Describe(NewMockAdapter())
	assert.Equal(t, "mock", info.Name)
	require.Len(t, info.Models, 1)
	assert.Equal(t, "mock-1", info.Models[0].ID)
}
