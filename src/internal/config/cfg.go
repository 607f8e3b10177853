// Package config loads and validates the daapd configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
)

// ValueKey represents value keys for contexts
type ValueKey string

const (
	// KeyCfg is the key for the daapd configuration
	KeyCfg ValueKey = "cfg"
	// KeyVersion is the key for the daapd version
	KeyVersion ValueKey = "version"
)

const (
	// CfgDir is the directory where the daapd configuration is stored
	CfgDir = "/etc/daapd"
	// path of daapd configuration file
	cfgFilepath = CfgDir + "/config.json"
)

// AuthMethod represents the authentication scheme required at /login
type AuthMethod string

// possible values of AuthMethod
const (
	AuthNone            AuthMethod = "none"
	AuthPassword        AuthMethod = "password"
	AuthUserAndPassword AuthMethod = "user_and_password"
)

// IsValid checks if the auth method has a valid value
func (me AuthMethod) IsValid() bool {
	return me == AuthNone || me == AuthPassword || me == AuthUserAndPassword
}

// Credential is a (user, password) pair accepted at /login
type Credential struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// Cfg stores the data from the daapd configuration file
type Cfg struct {
	Daap     daap   `json:"daap"`
	MDNS     mdns   `json:"mdns"`
	LogDir   string `json:"log_dir"`
	LogLevel string `json:"log_level"`
}

type daap struct {
	Name           string        `json:"name"`
	Port           int           `json:"port"`
	AuthMethod     AuthMethod    `json:"auth_method"`
	Credentials    []Credential  `json:"credentials"`
	MaxUsers       int           `json:"max_users"`
	SessionTimeout time.Duration `json:"session_timeout"`
}

type mdns struct {
	Publish   bool   `json:"publish"`
	MachineID string `json:"machine_id"`
}

// Name returns the server's display name (also the auth realm and the
// mDNS instance name)
func (me *Cfg) Name() string { return me.Daap.Name }

// Port returns the preferred TCP port; 0 means "let the OS pick"
func (me *Cfg) Port() int { return me.Daap.Port }

// AuthMethod returns the configured authentication method
func (me *Cfg) AuthMethod() AuthMethod { return me.Daap.AuthMethod }

// Credentials returns the configured (user, password) pairs
func (me *Cfg) Credentials() []Credential { return me.Daap.Credentials }

// MaxUsers returns the configured concurrent session cap (0 = unlimited)
func (me *Cfg) MaxUsers() int { return me.Daap.MaxUsers }

// SessionTimeout returns the configured idle-session timeout, defaulting
// to 30 minutes if unset
func (me *Cfg) SessionTimeout() time.Duration {
	if me.Daap.SessionTimeout <= 0 {
		return 30 * time.Minute
	}
	return me.Daap.SessionTimeout
}

// Publish returns whether the server should advertise itself via mDNS
func (me *Cfg) Publish() bool { return me.MDNS.Publish }

// MachineID returns the optional mDNS TXT machine id
func (me *Cfg) MachineID() string { return me.MDNS.MachineID }

// Load reads the configuration file and returns the daapd config as
// structure
func Load() (cfg Cfg, err error) {
	cfgFile, err := os.ReadFile(cfgFilepath)
	if err != nil {
		return Cfg{}, errors.Wrapf(err, "config file '%s' couldn't be read", cfgFilepath)
	}

	if err = json.Unmarshal(cfgFile, &cfg); err != nil {
		return Cfg{}, errors.Wrapf(err, "config file '%s' couldn't be marshalled", cfgFilepath)
	}

	return
}

// Validate checks if the configuration is complete and correct. If it's
// not, an error is returned
func (me *Cfg) Validate() (err error) {
	if err = me.Daap.validate(); err != nil {
		return
	}
	if err = me.MDNS.validate(); err != nil {
		return
	}
	return
}

func (me *daap) validate() (err error) {
	if len(me.Name) == 0 {
		err = fmt.Errorf("the server must have a name, but daap.name is empty")
		return
	}
	if me.Port < 0 {
		err = fmt.Errorf("daap.port must be >= 0")
		return
	}
	if !me.AuthMethod.IsValid() {
		err = fmt.Errorf("unknown daap.auth_method '%s'", me.AuthMethod)
		return
	}
	if me.MaxUsers < 0 {
		err = fmt.Errorf("daap.max_users must be >= 0")
		return
	}
	if me.AuthMethod != AuthNone && len(me.Credentials) == 0 {
		err = fmt.Errorf("daap.auth_method '%s' requires at least one entry in daap.credentials", me.AuthMethod)
		return
	}
	return
}

func (me *mdns) validate() (err error) {
	return
}

// Test reads the configuration file and checks the configuration for
// completeness and consistency
func Test() (err error) {
	var cfg Cfg

	if cfg, err = Load(); err != nil {
		err = errors.Wrapf(err, "the daapd configuration file '%s' couldn't be read", cfgFilepath)
		return
	}

	if err = cfg.Validate(); err != nil {
		return
	}

	fmt.Println("Congrats: The daapd configuration is complete and consistent :)")
	return
}
