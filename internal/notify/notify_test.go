package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender(t *testing.T) {
	_, isResend := NewSender("resend", "re_test", "a@b.c").(*ResendSender)
	assert.True(t, isResend)

	_, isLog := NewSender("", "", "").(LogSender)
	assert.True(t, isLog)
}

func TestLogSender_Send(t *testing.T) {
	res, err := LogSender{}.Send(context.Background(), Message{To: []string{"owner@example.com"}, Subject: "hi"})
	require.NoError(t, err)
	assert.Empty(t, res.MessageID)
	assert.False(t, res.SentAt.IsZero())
}
