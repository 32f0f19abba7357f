// Package artifact derives client-facing connection artifacts (importable
// JSON configs, vless:// links, QR payloads) from stored server and user
// state. The builder is strictly read-only: all randomness happens in the
// store's mutation paths, so artifacts are byte-reproducible from the same
// persisted state.
package artifact

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/realityops/realityctl/pkg/store"
	"github.com/realityops/realityctl/pkg/xray"
)

// Local loopback listener ports embedded in generated client configs.
const (
	SocksPort = 10808
	HTTPPort  = 10809
)

// QRMode selects what a QR payload encodes.
type QRMode string

const (
	// QRModeConfig encodes the JSON-serialized client configuration.
	QRModeConfig QRMode = "config"
	// QRModeLink encodes the vless:// connection URI.
	QRModeLink QRMode = "link"
)

// Builder derives artifacts from a loaded store. It never mutates it.
type Builder struct {
	store *store.Store
}

// NewBuilder returns a Builder over the given store.
func NewBuilder(s *store.Store) *Builder {
	return &Builder{store: s}
}

// lookup resolves a user and the server cache, reporting absent when the
// name is unknown, the cache is incomplete, or no short id is available.
// The per-user short id takes precedence over the primary one.
func (b *Builder) lookup(name string) (id string, info xray.ServerInfo, shortID string, ok bool) {
	id, rec, ok := b.store.LookupByName(name)
	if !ok {
		return "", xray.ServerInfo{}, "", false
	}
	info = b.store.Meta.Server
	if !info.Complete() {
		return "", xray.ServerInfo{}, "", false
	}
	shortID = rec.ShortID
	if shortID == "" {
		shortID = info.PrimaryShortID()
	}
	if shortID == "" {
		return "", xray.ServerInfo{}, "", false
	}
	return id, info, shortID, true
}

// BuildClientConfig produces a self-contained client configuration for the
// named user. serverAddress is embedded verbatim as the outbound's remote
// address; reachability is not validated here. Returns ok false when the
// user is unknown or the server cache is incomplete.
func (b *Builder) BuildClientConfig(name, serverAddress string) (*ClientConfig, bool) {
	id, info, shortID, ok := b.lookup(name)
	if !ok {
		return nil, false
	}

	return &ClientConfig{
		Log: ClientLog{LogLevel: "warning"},
		Routing: Routing{
			Rules: []RoutingRule{
				{IP: []string{"geoip:private"}, OutboundTag: "direct"},
			},
		},
		Inbounds: []ClientInbound{
			{Listen: "127.0.0.1", Port: SocksPort, Protocol: "socks"},
			{Listen: "127.0.0.1", Port: HTTPPort, Protocol: "http"},
		},
		Outbounds: []ClientOutbound{
			{
				Protocol: xray.ProtocolVLESS,
				Settings: &OutboundSettings{
					Vnext: []Vnext{
						{
							Address: serverAddress,
							Port:    info.Port,
							Users: []VnextUser{
								{ID: id, Encryption: "none", Flow: xray.Flow},
							},
						},
					},
				},
				StreamSettings: &ClientStreamSettings{
					Network:  xray.NetworkTCP,
					Security: xray.SecurityReality,
					RealitySettings: &ClientRealitySettings{
						Fingerprint: "chrome",
						ServerName:  info.ServerName,
						PublicKey:   info.PublicKey,
						ShortID:     shortID,
					},
				},
				Tag: "proxy",
			},
			{Protocol: "freedom", Tag: "direct"},
		},
	}, true
}

// BuildConnectionURI builds the shareable vless:// link for the named user.
// Parameter order is fixed for reproducibility; every value is escaped per
// query-component rules and the display name is escaped into the fragment.
func (b *Builder) BuildConnectionURI(name, serverAddress string) (string, bool) {
	id, info, shortID, ok := b.lookup(name)
	if !ok {
		return "", false
	}

	params := []struct{ key, value string }{
		{"flow", xray.Flow},
		{"type", xray.NetworkTCP},
		{"security", xray.SecurityReality},
		{"sni", info.ServerName},
		{"pbk", info.PublicKey},
		{"sid", shortID},
		{"spx", "/"},
	}

	query := ""
	for i, p := range params {
		if i > 0 {
			query += "&"
		}
		query += p.key + "=" + url.QueryEscape(p.value)
	}

	return fmt.Sprintf("vless://%s@%s:%d?%s#%s",
		id, serverAddress, info.Port, query, url.PathEscape(name)), true
}

// BuildQRPayload returns the exact string to encode into a QR symbol: either
// the JSON client config or the connection URI, depending on mode.
func (b *Builder) BuildQRPayload(name, serverAddress string, mode QRMode) (string, bool) {
	switch mode {
	case QRModeLink:
		return b.BuildConnectionURI(name, serverAddress)
	default:
		cfg, ok := b.BuildClientConfig(name, serverAddress)
		if !ok {
			return "", false
		}
		data, err := json.Marshal(cfg)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}
