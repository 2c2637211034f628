//go:build linux

package remote

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
)

const (
	serviceName = "org.mpris.MediaPlayer2.oldplay"
	objectPath  = dbus.ObjectPath("/org/mpris/MediaPlayer2")
)

// mprisRemote registers both org.mpris.MediaPlayer2 and
// org.mpris.MediaPlayer2.Player at the standard MPRIS path, grounded on
// media_keys.rs's MainInterface and MediaPlayer structs.
type mprisRemote struct {
	conn   *dbus.Conn
	props  *prop.Properties
	events chan Event

	mu    sync.Mutex
	state Info
}

// Start registers the MPRIS service on the session bus and begins
// forwarding key presses on the returned Remote's Events channel.
func Start() (Remote, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}

	r := &mprisRemote{
		conn:   conn,
		events: make(chan Event, 8),
	}

	propsSpec := prop.Map{
		"org.mpris.MediaPlayer2": {
			"Identity":            {Value: "oldplay", Writable: false, Emit: prop.EmitFalse},
			"CanQuit":             {Value: true, Writable: false, Emit: prop.EmitFalse},
			"CanRaise":            {Value: false, Writable: false, Emit: prop.EmitFalse},
			"HasTrackList":        {Value: false, Writable: false, Emit: prop.EmitFalse},
			"SupportedUriSchemes": {Value: []string{}, Writable: false, Emit: prop.EmitFalse},
			"SupportedMimeTypes":  {Value: []string{}, Writable: false, Emit: prop.EmitFalse},
		},
		"org.mpris.MediaPlayer2.Player": {
			"PlaybackStatus": {Value: "Stopped", Writable: false, Emit: prop.EmitTrue},
			"Rate":           {Value: 1.0, Writable: false, Emit: prop.EmitFalse},
			"Metadata":       {Value: map[string]dbus.Variant{}, Writable: false, Emit: prop.EmitTrue},
			"Volume":         {Value: 1.0, Writable: false, Emit: prop.EmitFalse},
			"Position":       {Value: int64(0), Writable: false, Emit: prop.EmitFalse},
			"MinimumRate":    {Value: 1.0, Writable: false, Emit: prop.EmitFalse},
			"MaximumRate":    {Value: 1.0, Writable: false, Emit: prop.EmitFalse},
			"CanGoNext":      {Value: true, Writable: false, Emit: prop.EmitFalse},
			"CanGoPrevious":  {Value: true, Writable: false, Emit: prop.EmitFalse},
			"CanPlay":        {Value: true, Writable: false, Emit: prop.EmitTrue},
			"CanPause":       {Value: true, Writable: false, Emit: prop.EmitTrue},
			"CanSeek":        {Value: false, Writable: false, Emit: prop.EmitFalse},
			"CanControl":     {Value: true, Writable: false, Emit: prop.EmitFalse},
		},
	}
	props, err := prop.Export(conn, objectPath, propsSpec)
	if err != nil {
		conn.Close()
		return nil, err
	}
	r.props = props

	if err := conn.Export(r, objectPath, "org.mpris.MediaPlayer2"); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.Export(r, objectPath, "org.mpris.MediaPlayer2.Player"); err != nil {
		conn.Close()
		return nil, err
	}

	node := &introspect.Node{
		Name: string(objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), objectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return nil, err
	}

	reply, err := conn.RequestName(serviceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("remote: not primary owner of %s", serviceName)
	}

	return r, nil
}

func (r *mprisRemote) Events() <-chan Event { return r.events }

// Publish updates the Player interface's PlaybackStatus and Metadata
// properties, emitting PropertiesChanged to any subscribed shell.
func (r *mprisRemote) Publish(info Info) {
	r.mu.Lock()
	r.state = info
	r.mu.Unlock()

	status := "Paused"
	if info.Playing {
		status = "Playing"
	}
	r.props.SetMust("org.mpris.MediaPlayer2.Player", "PlaybackStatus", status)

	metadata := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/org/mpris/MediaPlayer2/Track/1")),
		"xesam:title":   dbus.MakeVariant(info.Title),
		"xesam:artist":  dbus.MakeVariant([]string{info.Author}),
	}
	r.props.SetMust("org.mpris.MediaPlayer2.Player", "Metadata", metadata)
}

func (r *mprisRemote) Close() {
	r.conn.ReleaseName(serviceName)
	r.conn.Close()
	close(r.events)
}

func (r *mprisRemote) sendEvent(ev Event) {
	select {
	case r.events <- ev:
	default:
	}
}

// The methods below implement the org.mpris.MediaPlayer2 and
// org.mpris.MediaPlayer2.Player method tables. Each forwards a key press
// onto the events channel and returns immediately, matching
// media_keys.rs's fire-and-forget `let _ = event_sender.send(...)`.

func (r *mprisRemote) Quit() *dbus.Error {
	r.sendEvent(EventStop)
	return nil
}

func (r *mprisRemote) Raise() *dbus.Error { return nil }

func (r *mprisRemote) Next() *dbus.Error {
	r.sendEvent(EventNext)
	return nil
}

func (r *mprisRemote) Previous() *dbus.Error {
	r.sendEvent(EventPrevious)
	return nil
}

func (r *mprisRemote) PlayPause() *dbus.Error {
	r.sendEvent(EventPlayPause)
	return nil
}

func (r *mprisRemote) Play() *dbus.Error {
	r.sendEvent(EventPlay)
	return nil
}

func (r *mprisRemote) Pause() *dbus.Error {
	r.sendEvent(EventPause)
	return nil
}

func (r *mprisRemote) Stop() *dbus.Error {
	r.sendEvent(EventStop)
	return nil
}
