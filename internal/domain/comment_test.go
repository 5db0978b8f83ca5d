package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferContentKind(t *testing.T) {
	tests := []struct {
		content string
		want    ContentKind
	}{
		{"hello", ContentText},
		{"", ContentText},
		{"ab", ContentText},
		{"7", ContentText},
		{"❤️", ContentEmoticon},
		{"👍", ContentEmoticon},
		{":)", ContentEmoticon},
		{"a long sentence with emoji 🎉", ContentText},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, InferContentKind(tt.content), "content %q", tt.content)
	}
}

func TestRoomID(t *testing.T) {
	assert.Equal(t, "ad:ad1", RoomID("ad1"))
}
