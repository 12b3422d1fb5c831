// internal/bluez/bluez.go
package bluez

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/tamzrod/basedctl/internal/fault"
	"github.com/tamzrod/basedctl/internal/transport"
)

const (
	busName      = "org.bluez"
	rootPath     = "/org/bluez"
	adapterIface = "org.bluez.Adapter1"
	deviceIface  = "org.bluez.Device1"
	propsIface   = "org.freedesktop.DBus.Properties"
)

// Bus is the part of the system bus the pre-flight uses.
type Bus interface {
	ListNames() ([]string, error)
	Property(path dbus.ObjectPath, iface, prop string) (dbus.Variant, error)
	Close() error
}

// AdapterPath is "/org/bluez/hci0" for adapter "hci0".
func AdapterPath(adapter string) dbus.ObjectPath {
	return dbus.ObjectPath(rootPath + "/" + adapter)
}

// DevicePath converts "AA:BB:CC:DD:EE:FF" on hci0 to
// "/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF".
func DevicePath(adapter string, addr transport.Address) dbus.ObjectPath {
	escaped := strings.ReplaceAll(addr.String(), ":", "_")
	return dbus.ObjectPath(string(AdapterPath(adapter)) + "/dev_" + escaped)
}

// systemBus wraps a private system D-Bus connection.
type systemBus struct {
	conn *dbus.Conn
}

// Connect opens a private connection to the system bus.
func Connect() (Bus, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}
	return &systemBus{conn: conn}, nil
}

func (b *systemBus) ListNames() ([]string, error) {
	var names []string
	err := b.conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	return names, err
}

func (b *systemBus) Property(path dbus.ObjectPath, iface, prop string) (dbus.Variant, error) {
	obj := b.conn.Object(busName, path)
	var v dbus.Variant
	err := obj.Call(propsIface+".Get", 0, iface, prop).Store(&v)
	return v, err
}

func (b *systemBus) Close() error {
	return b.conn.Close()
}

// Preflight checks that bluetoothd runs, the adapter is powered and the
// headset is paired, so a dead setup fails with a clear message instead of
// a bare connect error. Every failure is a connection fault.
func Preflight(bus Bus, adapter string, addr transport.Address) error {
	const op = "bluez preflight"

	names, err := bus.ListNames()
	if err != nil {
		return fault.Wrap(fault.KindConnection, op, fmt.Errorf("list bus names: %w", err))
	}
	if !contains(names, busName) {
		return fault.Connectionf(op, "%s not found on system bus, is bluetooth.service running?", busName)
	}

	powered, err := getBool(bus, AdapterPath(adapter), adapterIface, "Powered")
	if err != nil {
		return fault.Wrap(fault.KindConnection, op, fmt.Errorf("adapter %s: %w", adapter, err))
	}
	if !powered {
		return fault.Connectionf(op, "adapter %s is powered off", adapter)
	}

	paired, err := getBool(bus, DevicePath(adapter, addr), deviceIface, "Paired")
	if err != nil {
		return fault.Wrap(fault.KindConnection, op, fmt.Errorf("device %s unknown to %s: %w", addr, adapter, err))
	}
	if !paired {
		return fault.Connectionf(op, "device %s is not paired with %s", addr, adapter)
	}
	return nil
}

func getBool(bus Bus, path dbus.ObjectPath, iface, prop string) (bool, error) {
	v, err := bus.Property(path, iface, prop)
	if err != nil {
		return false, err
	}
	val, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("property %s is not bool", prop)
	}
	return val, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
