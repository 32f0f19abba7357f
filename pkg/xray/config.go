// Package xray defines the Xray-native JSON documents managed by realityctl:
// the server configuration consumed by the proxy process and the companion
// metadata document holding the user directory and cached public values.
package xray

// Flow is the capability tag written into every client entry.
const Flow = "xtls-rprx-vision"

// Protocol and transport discriminators used by the managed inbound.
const (
	ProtocolVLESS   = "vless"
	NetworkTCP      = "tcp"
	SecurityReality = "reality"
)

// ServerConfig is the proxy-native configuration document.
type ServerConfig struct {
	Log       LogConfig  `json:"log"`
	Inbounds  []Inbound  `json:"inbounds"`
	Outbounds []Outbound `json:"outbounds"`
}

// LogConfig holds the proxy log settings.
type LogConfig struct {
	LogLevel string `json:"loglevel"`
}

// Inbound is a single proxy listener.
type Inbound struct {
	Listen         string          `json:"listen"`
	Port           int             `json:"port,omitempty"`
	Protocol       string          `json:"protocol"`
	Settings       InboundSettings `json:"settings"`
	StreamSettings StreamSettings  `json:"streamSettings"`
	Sniffing       *Sniffing       `json:"sniffing,omitempty"`
}

// InboundSettings holds the live client list consumed by the proxy.
type InboundSettings struct {
	Clients    []Client `json:"clients"`
	Decryption string   `json:"decryption"`
}

// Client is one authorized client entry.
type Client struct {
	ID   string `json:"id"`
	Flow string `json:"flow"`
}

// StreamSettings selects the transport and its security layer.
type StreamSettings struct {
	Network         string           `json:"network"`
	Security        string           `json:"security"`
	RealitySettings *RealitySettings `json:"realitySettings,omitempty"`
}

// RealitySettings are the TLS-masquerading handshake parameters.
type RealitySettings struct {
	Dest        string   `json:"dest,omitempty"`
	ServerNames []string `json:"serverNames,omitempty"`
	PrivateKey  string   `json:"privateKey,omitempty"`
	ShortIDs    []string `json:"shortIds,omitempty"`
}

// Sniffing configures protocol detection on the inbound.
type Sniffing struct {
	Enabled      bool     `json:"enabled"`
	DestOverride []string `json:"destOverride"`
}

// Outbound is a server-side egress entry.
type Outbound struct {
	Protocol string `json:"protocol"`
	Tag      string `json:"tag"`
}

// NewServerConfig returns the default document skeleton: one VLESS inbound
// with an empty client list and reality transport, plus direct and blackhole
// outbounds.
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Log: LogConfig{LogLevel: "warning"},
		Inbounds: []Inbound{
			{
				Listen:   "0.0.0.0",
				Protocol: ProtocolVLESS,
				Settings: InboundSettings{
					Clients:    []Client{},
					Decryption: "none",
				},
				StreamSettings: StreamSettings{
					Network:         NetworkTCP,
					Security:        SecurityReality,
					RealitySettings: &RealitySettings{},
				},
				Sniffing: &Sniffing{
					Enabled:      true,
					DestOverride: []string{"http", "tls", "quic"},
				},
			},
		},
		Outbounds: []Outbound{
			{Protocol: "freedom", Tag: "direct"},
			{Protocol: "blackhole", Tag: "block"},
		},
	}
}

// Inbound returns the managed listener, creating it if the document was
// loaded without one.
func (c *ServerConfig) Inbound() *Inbound {
	if len(c.Inbounds) == 0 {
		c.Inbounds = NewServerConfig().Inbounds
	}
	return &c.Inbounds[0]
}

// Reality returns the reality settings of the managed listener, creating the
// block if absent.
func (c *ServerConfig) Reality() *RealitySettings {
	in := c.Inbound()
	if in.StreamSettings.RealitySettings == nil {
		in.StreamSettings.RealitySettings = &RealitySettings{}
	}
	return in.StreamSettings.RealitySettings
}

// Clients returns the live client list of the managed listener.
func (c *ServerConfig) Clients() []Client {
	return c.Inbound().Settings.Clients
}

// IsConfigured reports whether the reality parameters are fully populated.
// Partial population never counts as configured.
func (c *ServerConfig) IsConfigured() bool {
	r := c.Reality()
	return r.PrivateKey != "" && r.Dest != "" && len(r.ServerNames) > 0
}
