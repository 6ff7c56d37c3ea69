package ircd

import (
	"time"

	horghconfig "github.com/horgh/config"
)

// Config holds a server's tunables, per spec.md §6 and §9.
type Config struct {
	ListenHost string
	ListenPort string

	ServerName  string
	ServerInfo  string
	Version     string
	CreatedDate string
	MOTD        string

	Password string

	MaxNickLength int

	// PingTime is how long a client may be idle before we send it a PING.
	PingTime time.Duration

	// DeadTime is how long a client may be idle before we consider it dead
	// and disconnect it.
	DeadTime time.Duration

	// Opers maps an operator name to its password, per the OPER command.
	Opers map[string]string

	// MetricsAddr, if non-empty, is the address the Prometheus exposition
	// endpoint listens on. Empty disables metrics serving.
	MetricsAddr string
}

// DefaultConfig returns the configuration a bare `catboxd` invocation with
// no extra flags runs with.
func DefaultConfig() Config {
	return Config{
		ListenHost:    "",
		ListenPort:    "6667",
		ServerName:    "catboxd",
		ServerInfo:    "a catboxd IRC server",
		Version:       "catboxd-1.0",
		CreatedDate:   time.Now().Format("2006-01-02"),
		MOTD:          "Welcome to catboxd.",
		MaxNickLength: 9,
		PingTime:      2 * time.Minute,
		DeadTime:      4 * time.Minute,
		Opers:         make(map[string]string),
	}
}

// extraConfig holds the fields an extended config file can set. Every
// field must be present in the file (PopulateStruct rejects a struct with
// a missing key), and only string/int32/int64/uint64 kinds are supported,
// so durations are expressed in plain seconds rather than time.Duration.
type extraConfig struct {
	ServerName    string
	ServerInfo    string
	MOTD          string
	MaxNickLength int64
	PingTime      int64 // seconds
	DeadTime      int64 // seconds
}

// LoadExtra reads path as a horgh/config key=value file and replaces cfg's
// server-identity and timing fields with it wholesale. A missing path
// argument (the caller passes "") is not an error — extended configuration
// is optional and DefaultConfig's values stand on their own.
func (c *Config) LoadExtra(path string) error {
	if path == "" {
		return nil
	}

	raw, err := horghconfig.ReadStringMap(path)
	if err != nil {
		return err
	}

	var extra extraConfig
	if err := horghconfig.PopulateStruct(&extra, raw); err != nil {
		return err
	}

	c.ServerName = extra.ServerName
	c.ServerInfo = extra.ServerInfo
	c.MOTD = extra.MOTD
	c.MaxNickLength = int(extra.MaxNickLength)
	c.PingTime = time.Duration(extra.PingTime) * time.Second
	c.DeadTime = time.Duration(extra.DeadTime) * time.Second

	return nil
}
