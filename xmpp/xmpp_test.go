package xmpp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerName(t *testing.T) {
	assert.Equal(t, "mrcc.example.org", serverName("duty@mrcc.example.org"))
	assert.Equal(t, "mrcc.example.org", serverName("duty@mrcc.example.org/planner"))
	assert.Equal(t, "localhost", serverName("localhost"))
}

func TestOptions(t *testing.T) {
	x := Xmpp{Config: Config{Jid: "planner@mrcc.example.org", Password: "secret", To: "duty@mrcc.example.org"}}
	assert.True(t, x.Enabled())
	assert.Equal(t, "mrcc.example.org", x.options().Host)

	x.Config.Host = "xmpp.example.org:5222"
	assert.Equal(t, "xmpp.example.org:5222", x.options().Host)
}

func TestSendWithoutConfig(t *testing.T) {
	x := Xmpp{Config: Config{Jid: "planner@mrcc.example.org"}}
	assert.False(t, x.Enabled())
	assert.True(t, errors.Is(x.Send("hello"), ErrMissingConfig))
}
