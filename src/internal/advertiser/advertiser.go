// Package advertiser wraps mDNS registration for the _daap._tcp service
// type. Register and Unregister are serialized under one lock;
// collision signals are delivered through a one-slot channel and take
// no lock.
package advertiser

import (
	"fmt"
	"sync"

	"github.com/hashicorp/mdns"
	"github.com/pkg/errors"
	l "github.com/sirupsen/logrus"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "advertiser"})

const serviceType = "_daap._tcp"

// Advertiser registers and unregisters the server's mDNS record.
type Advertiser struct {
	mu      sync.Mutex
	server  *mdns.Server
	collide chan string
}

// New creates an Advertiser. Collisions reports the name that was
// requested when the record turned out to conflict with another host's.
func New() *Advertiser {
	return &Advertiser{collide: make(chan string, 1)}
}

// Collisions returns the channel on which collision signals are
// delivered; the owner may choose a new name and call Register again.
func (a *Advertiser) Collisions() <-chan string { return a.collide }

// Register advertises name at port with the given TXT record fields,
// unregistering any prior record first.
func (a *Advertiser) Register(name string, port int, hasPassword bool, machineName, machineID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		if err := a.server.Shutdown(); err != nil {
			log.WithError(err).Warn("shutting down previous mdns record")
		}
		a.server = nil
	}

	txt := []string{
		fmt.Sprintf("Password=%t", hasPassword),
		fmt.Sprintf("Machine Name=%s", machineName),
		"txtvers=1",
	}
	if machineID != "" {
		txt = append(txt, fmt.Sprintf("Machine ID=%s", machineID))
	}

	svc, err := mdns.NewMDNSService(name, serviceType, "", "", port, nil, txt)
	if err != nil {
		return errors.Wrap(err, "advertiser: building mdns service")
	}

	srv, err := mdns.NewServer(&mdns.Config{Zone: svc})
	if err != nil {
		return errors.Wrap(err, "advertiser: starting mdns server")
	}
	a.server = srv
	log.WithFields(l.Fields{"name": name, "port": port}).Info("registered mdns record")
	return nil
}

// NotifyCollision surfaces a name collision to the owner. Non-blocking:
// a pending, unread collision for a different name is replaced.
func (a *Advertiser) NotifyCollision(name string) {
	for {
		select {
		case a.collide <- name:
			return
		default:
		}
		select {
		case <-a.collide:
		default:
		}
	}
}

// Unregister tears down the current record, if any, swallowing disposal
// errors so a failed shutdown never blocks the caller from proceeding.
func (a *Advertiser) Unregister() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server == nil {
		return
	}
	if err := a.server.Shutdown(); err != nil {
		log.WithError(err).Debug("mdns shutdown error (swallowed)")
	}
	a.server = nil
}
