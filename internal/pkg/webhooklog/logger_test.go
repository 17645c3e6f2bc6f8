package webhooklog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerCorrelationID(t *testing.T) {
	a := New("billing")
	b := New("billing")

	assert.NotEmpty(t, a.CorrelationID())
	assert.NotEqual(t, a.CorrelationID(), b.CorrelationID())
}

func TestLoggerWith(t *testing.T) {
	lg := New("voice").With("call_id", "call_abc", "user_id", 7)

	prefix := lg.prefix()
	assert.Contains(t, prefix, "[voice cid=")
	assert.Contains(t, prefix, "call_id=call_abc")
	assert.Contains(t, prefix, "user_id=7")
}

func TestLoggerWith_ChildKeepsCorrelationID(t *testing.T) {
	parent := New("musicgen")
	child := parent.With("task_id", "t1")

	assert.Equal(t, parent.CorrelationID(), child.CorrelationID())
	assert.NotContains(t, parent.prefix(), "task_id", "With must not mutate the parent")
}

func TestLoggerWith_OddTrailingArgumentIgnored(t *testing.T) {
	lg := New("identity").With("k1", "v1", "dangling")

	prefix := lg.prefix()
	assert.Contains(t, prefix, "k1=v1")
	assert.NotContains(t, prefix, "dangling")
}
