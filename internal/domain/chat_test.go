package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatStatus_Next(t *testing.T) {
	cases := []struct {
		from ChatStatus
		ev   ChatEvent
		want ChatStatus
	}{
		{ChatOpen, ChatClosedByUser, ChatClosed},
		{ChatClosed, ChatClosedByUser, ChatClosed},
		{ChatClosed, MessageReceived, ChatOpen},
		{ChatOpen, MessageReceived, ChatOpen},
		{ChatClosed, ChatOpened, ChatOpen},
		{"", ChatOpened, ChatOpen},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.from.Next(c.ev), "%s --%s-->", c.from, c.ev)
	}
}

func TestChatStatus_CyclesIndefinitely(t *testing.T) {
	s := ChatOpen
	for i := 0; i < 3; i++ {
		s = s.Next(ChatClosedByUser)
		assert.Equal(t, ChatClosed, s)
		s = s.Next(MessageReceived)
		assert.Equal(t, ChatOpen, s)
	}
}

func TestViewer_Can(t *testing.T) {
	var anon *Viewer
	assert.False(t, anon.Can(PermAccessDashboard))

	v := &Viewer{ID: "u1", Permissions: []Permission{PermAccessClient}}
	assert.True(t, v.Can(PermAccessClient))
	assert.False(t, v.Can(PermAccessDashboard))
}
