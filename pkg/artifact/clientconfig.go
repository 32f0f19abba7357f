package artifact

// Client-importable configuration shapes. These mirror the client side of
// the proxy schema, which differs from the server document (vnext outbounds,
// per-outbound reality fingerprint, a single shortId).

// ClientConfig is a self-contained client configuration.
type ClientConfig struct {
	Log       ClientLog        `json:"log"`
	Routing   Routing          `json:"routing"`
	Inbounds  []ClientInbound  `json:"inbounds"`
	Outbounds []ClientOutbound `json:"outbounds"`
}

// ClientLog holds the client log settings.
type ClientLog struct {
	LogLevel string `json:"loglevel"`
}

// Routing sends private-range traffic direct; everything else follows the
// default (first) outbound.
type Routing struct {
	Rules []RoutingRule `json:"rules"`
}

// RoutingRule is one routing decision.
type RoutingRule struct {
	IP          []string `json:"ip,omitempty"`
	OutboundTag string   `json:"outboundTag"`
}

// ClientInbound is a local loopback listener.
type ClientInbound struct {
	Listen   string `json:"listen"`
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
}

// ClientOutbound is a client egress entry.
type ClientOutbound struct {
	Protocol       string                `json:"protocol"`
	Settings       *OutboundSettings     `json:"settings,omitempty"`
	StreamSettings *ClientStreamSettings `json:"streamSettings,omitempty"`
	Tag            string                `json:"tag"`
}

// OutboundSettings holds the vnext server list.
type OutboundSettings struct {
	Vnext []Vnext `json:"vnext"`
}

// Vnext is one remote server endpoint.
type Vnext struct {
	Address string      `json:"address"`
	Port    int         `json:"port"`
	Users   []VnextUser `json:"users"`
}

// VnextUser is the credential presented to the remote server.
type VnextUser struct {
	ID         string `json:"id"`
	Encryption string `json:"encryption"`
	Flow       string `json:"flow"`
}

// ClientStreamSettings selects the client transport and reality parameters.
type ClientStreamSettings struct {
	Network         string                 `json:"network"`
	Security        string                 `json:"security"`
	RealitySettings *ClientRealitySettings `json:"realitySettings"`
}

// ClientRealitySettings are the client-side reality handshake values.
type ClientRealitySettings struct {
	Fingerprint string `json:"fingerprint"`
	ServerName  string `json:"serverName"`
	PublicKey   string `json:"publicKey"`
	ShortID     string `json:"shortId"`
}
