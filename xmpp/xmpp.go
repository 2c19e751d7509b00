// Package xmpp sends operator alerts as XMPP chat messages.
package xmpp

import (
	"crypto/tls"
	"strings"

	"github.com/mattn/go-xmpp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type (
	// Config of the duty officer alerts. Host defaults to the domain of Jid.
	Config struct {
		Host     string `koanf:"host"`
		Jid      string `koanf:"jid"`
		Password string `koanf:"password"`
		To       string `koanf:"to"`
	}

	Xmpp struct {
		Config Config
	}
)

var ErrMissingConfig = errors.New("missing xmpp config")

func serverName(jid string) string {
	parts := strings.SplitN(jid, "@", 2)
	if len(parts) < 2 {
		return jid
	}
	return strings.SplitN(parts[1], "/", 2)[0]
}

// Enabled tells whether the config is complete enough to send anything
func (x Xmpp) Enabled() bool {
	return len(x.Config.Jid) > 0 && len(x.Config.Password) > 0 && len(x.Config.To) > 0
}

func (x Xmpp) options() xmpp.Options {
	host := x.Config.Host
	if len(host) == 0 {
		host = serverName(x.Config.Jid)
	}
	return xmpp.Options{
		Host:          host,
		User:          x.Config.Jid,
		Password:      x.Config.Password,
		NoTLS:         true,
		StartTLS:      true,
		Debug:         false,
		Session:       false,
		Status:        "xa",
		StatusMessage: "SAR planning alerts",
	}
}

// Send opens a session, sends message to the configured recipient and
// closes the session
func (x Xmpp) Send(message string) error {

	if !x.Enabled() {
		log.Warn("Missing xmpp config")
		return ErrMissingConfig
	}

	xmpp.DefaultConfig = tls.Config{
		InsecureSkipVerify: true,
	}

	options := x.options()
	log.WithFields(log.Fields{"host": options.Host, "user": options.User}).Debug("Create xmpp client")
	talk, err := options.NewClient()
	if err != nil {
		log.WithError(err).Error("Error creating xmpp client")
		return errors.Wrap(err, "xmpp client")
	}
	defer talk.Close()

	log.WithField("to", x.Config.To).Debug("Send xmpp message")
	if _, err := talk.Send(xmpp.Chat{Remote: x.Config.To, Type: "chat", Text: message}); err != nil {
		return errors.Wrap(err, "xmpp send")
	}

	return nil
}
