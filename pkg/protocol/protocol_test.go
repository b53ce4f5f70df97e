package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageIsFor(t *testing.T) {
	broadcast := Message{From: "a"}
	assert.True(t, broadcast.Broadcast())
	assert.True(t, broadcast.IsFor("b"))
	assert.False(t, broadcast.IsFor("a"), "a message is never for its sender")

	direct := Message{From: "a", To: "b"}
	assert.False(t, direct.Broadcast())
	assert.True(t, direct.IsFor("b"))
	assert.False(t, direct.IsFor("c"))
}

func TestError(t *testing.T) {
	cause := errors.New("bad proof")
	err := error(Error{RoundNumber: 3, Culprit: "b", Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "round 3: party: b: bad proof", err.Error())

	var protocolErr Error
	assert.True(t, errors.As(err, &protocolErr))
	assert.Equal(t, "round 2: bad proof", Error{RoundNumber: 2, Err: cause}.Error())
}
