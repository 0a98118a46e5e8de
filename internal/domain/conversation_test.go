package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationUnreadFor(t *testing.T) {
	conv := &Conversation{UnreadCountAdmin: 2, UnreadCountDealership: 7}

	assert.Equal(t, 2, conv.UnreadFor(PrincipalTypeAdmin))
	assert.Equal(t, 7, conv.UnreadFor(PrincipalTypeDealership))
}

func TestConversationArchivedFor(t *testing.T) {
	conv := &Conversation{ArchivedByAdmin: true}

	assert.True(t, conv.ArchivedFor(PrincipalTypeAdmin))
	assert.False(t, conv.ArchivedFor(PrincipalTypeDealership))
}

func TestConversationLastMessage(t *testing.T) {
	empty := &Conversation{}
	assert.Nil(t, empty.LastMessage())

	conv := &Conversation{Messages: []Message{
		{ID: "m1", Content: "first"},
		{ID: "m2", Content: "second"},
	}}
	last := conv.LastMessage()
	assert.NotNil(t, last)
	assert.Equal(t, "m2", last.ID)
}
