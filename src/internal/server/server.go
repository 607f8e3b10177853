// Package server implements the main control loop: load config, wire up
// the session/revision/router subsystems around a library adapter,
// start the TCP accept loop and the mDNS advertiser, then select over
// OS signals, library change notifications, and fatal listener errors
// until told to stop.
package server

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	l "github.com/sirupsen/logrus"

	"gitlab.com/mipimipi/daapd/src/internal/advertiser"
	"gitlab.com/mipimipi/daapd/src/internal/config"
	"gitlab.com/mipimipi/daapd/src/internal/daap"
	"gitlab.com/mipimipi/daapd/src/internal/dmap"
	"gitlab.com/mipimipi/daapd/src/internal/httpio"
	"gitlab.com/mipimipi/daapd/src/internal/library"
	"gitlab.com/mipimipi/daapd/src/internal/playlist"
	"gitlab.com/mipimipi/daapd/src/internal/revision"
	"gitlab.com/mipimipi/daapd/src/internal/session"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "server"})

// Run implements the main control loop of the server. version is the
// daapd version used to build the DAAP-Server header; lib is the music
// library adapter the caller constructed (e.g. an in-memory library for
// --demo, or a real adapter in a future build).
func Run(version string, lib library.Library) (err error) {
	var cfg config.Cfg
	if cfg, err = config.Load(); err != nil {
		err = errors.Wrap(err, "cannot run daapd")
		return
	}
	if err = cfg.Validate(); err != nil {
		err = errors.Wrap(err, "cannot run daapd")
		return
	}

	if err = setupLogging(cfg.LogDir, cfg.LogLevel); err != nil {
		err = errors.Wrap(err, "cannot run daapd")
		return
	}

	log.Trace("running ...")

	ctx := context.WithValue(context.Background(), config.KeyCfg, cfg)
	ctx = context.WithValue(ctx, config.KeyVersion, version)
	ctx, cancel := context.WithCancel(ctx)

	httpio.ServerName = cfg.Name() + "/" + version

	sessions := session.New(cfg.MaxUsers(), cfg.SessionTimeout())
	revs := revision.New()
	reg := dmap.DefaultRegistry()
	router := daap.New(&cfg, lib, sessions, revs, reg)

	ln, err := net.Listen("tcp", portAddr(cfg.Port()))
	if err != nil {
		err = errors.Wrap(err, "cannot run daapd")
		cancel()
		return
	}
	actualPort := ln.Addr().(*net.TCPAddr).Port
	log.WithField("port", actualPort).Info("listening")

	var adv *advertiser.Advertiser
	if cfg.Publish() {
		adv = advertiser.New()
		machineID := cfg.MachineID()
		if machineID == "" {
			machineID = uuid.New().String()
		}
		if err = adv.Register(cfg.Name(), actualPort, cfg.AuthMethod() != config.AuthNone, cfg.Name(), machineID); err != nil {
			log.WithError(err).Warn("mdns registration failed")
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	fatal := make(chan error, 1)
	changed := make(chan struct{}, 1)
	lib.SubscribeChanges(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	cl := newClients()

	var wg sync.WaitGroup
	wg.Add(1)
	go acceptLoop(ctx, &wg, ln, router, cl, fatal)

	root := &playlist.State{}
	root.Refresh(trackIDs(lib))

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case sig := <-interrupt:
				log.Tracef("signal received: %v", sig)
				log.Trace("stopping ...")
				stop(ln, revs, adv, cl)
				cancel()
				return

			case <-changed:
				removed := root.Refresh(trackIDs(lib))
				rev := revs.Bump(removed)
				log.WithField("revision", rev).Trace("revision bumped")

			case collided := <-collisions(adv):
				log.WithField("name", collided).Warn("mdns name collision")

			case ferr := <-fatal:
				log.WithError(ferr).Error("fatal listener error")
				stop(ln, revs, adv, cl)
				cancel()
				return

			case <-ctx.Done():
				stop(ln, revs, adv, cl)
				return
			}
		}
	}()

	wg.Wait()
	return
}

func portAddr(port int) string {
	if port <= 0 {
		return ":0"
	}
	return ":" + strconv.Itoa(port)
}

func trackIDs(lib library.Library) []uint32 {
	tracks := lib.IterTracks()
	ids := make([]uint32, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ItemID
	}
	return ids
}

func collisions(adv *advertiser.Advertiser) <-chan string {
	if adv == nil {
		return nil
	}
	return adv.Collisions()
}

func acceptLoop(ctx context.Context, wg *sync.WaitGroup, ln net.Listener, router *daap.Router, cl *clients, fatal chan<- error) {
	defer wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return // listener closed by Stop
			default:
			}
			select {
			case fatal <- err:
			default:
			}
			return
		}
		cl.add(conn)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer cl.remove(conn)
			httpio.Serve(conn, router.Handle)
		}()
	}
}

func stop(ln net.Listener, revs *revision.Manager, adv *advertiser.Advertiser, cl *clients) {
	revs.Stop()
	_ = ln.Close()
	cl.closeAll()
	if adv != nil {
		adv.Unregister()
	}
}
