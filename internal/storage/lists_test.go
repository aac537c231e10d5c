package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushRecent(t *testing.T) {
	assert.Equal(t, []string{"a"}, pushRecent(nil, "a", 3))
	assert.Equal(t, []string{"b", "a"}, pushRecent([]string{"a"}, "b", 3))
	assert.Equal(t, []string{"a", "c", "b"}, pushRecent([]string{"c", "a", "b"}, "a", 3))
	assert.Equal(t, []string{"d", "c", "a"}, pushRecent([]string{"c", "a", "b"}, "d", 3))
}

func TestRemoveValue(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, removeValue([]string{"a", "b", "c"}, "b"))
	assert.Empty(t, removeValue(nil, "b"))
}
