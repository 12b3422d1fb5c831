// cmd/basedctl/link.go
package main

import (
	"github.com/tamzrod/basedctl/internal/device"
	"github.com/tamzrod/basedctl/internal/session"
	"github.com/tamzrod/basedctl/internal/transport"
)

// link owns the one session of an invocation. It opens lazily, so an
// invocation that fails validation never touches the transport.
type link struct {
	cfg  session.Config
	addr transport.Address
	opts []device.Option

	sess   *session.Session
	client *device.Client
}

// open returns the live session, connecting first when there is none.
func (l *link) open() (*session.Session, *device.Client, error) {
	if l.sess != nil {
		return l.sess, l.client, nil
	}
	s, err := session.Open(l.cfg, l.addr)
	if err != nil {
		return nil, nil, err
	}
	l.sess = s
	l.client = device.NewClient(s, l.opts...)
	return l.sess, l.client, nil
}

// reset drops the session; the next open reconnects.
func (l *link) reset() error {
	if l.sess == nil {
		return nil
	}
	err := l.sess.Close()
	l.sess, l.client = nil, nil
	return err
}

func (l *link) close() error {
	return l.reset()
}
