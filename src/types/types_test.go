package types_test

import (
	"testing"

	"github.com/cryptiklemur/discordarr/src/types"
	"github.com/stretchr/testify/assert"
)

func TestEncodeSeasons(t *testing.T) {
	assert.Equal(t, "", types.EncodeSeasons(nil))
	assert.Equal(t, "", types.EncodeSeasons([]int{}))
	assert.Equal(t, "1", types.EncodeSeasons([]int{1}))
	assert.Equal(t, "1,2,5", types.EncodeSeasons([]int{1, 2, 5}))
}

func TestDecodeSeasons(t *testing.T) {
	assert.Nil(t, types.DecodeSeasons(""))
	assert.Equal(t, []int{1, 2, 5}, types.DecodeSeasons("1,2,5"))
	assert.Equal(t, []int{3}, types.DecodeSeasons(" 3 "))
	// malformed entries are skipped, not fatal
	assert.Equal(t, []int{1, 2}, types.DecodeSeasons("1,x,2"))
}
