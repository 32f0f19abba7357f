package artifact

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/realityops/realityctl/pkg/keygen"
	"github.com/realityops/realityctl/pkg/store"
	"github.com/realityops/realityctl/pkg/xray"
)

// fixedStateBuilder returns a builder over hand-placed state matching the
// deterministic link expected in TestConnectionURIDeterminism.
func fixedStateBuilder() *Builder {
	s := store.New(keygen.Fixed())
	s.Meta.Server = xray.ServerInfo{
		PublicKey:  "PK",
		ServerName: "example.com",
		Dest:       "example.com:443",
		Port:       443,
		ShortIDs:   []string{"abcd1234"},
	}
	s.Meta.Users = map[string]xray.UserRecord{
		"u1": {Name: "alice", Data: xray.Client{ID: "u1", Flow: xray.Flow}},
	}
	return NewBuilder(s)
}

func TestConnectionURIDeterminism(t *testing.T) {
	b := fixedStateBuilder()

	link, ok := b.BuildConnectionURI("alice", "1.2.3.4")
	if !ok {
		t.Fatal("expected link to be built")
	}

	want := "vless://u1@1.2.3.4:443?flow=xtls-rprx-vision&type=tcp&security=reality&sni=example.com&pbk=PK&sid=abcd1234&spx=%2F#alice"
	if link != want {
		t.Errorf("link mismatch:\n got %s\nwant %s", link, want)
	}

	// Same state, same link.
	again, _ := b.BuildConnectionURI("alice", "1.2.3.4")
	if again != link {
		t.Error("link is not reproducible from identical state")
	}
}

func TestConnectionURIEscaping(t *testing.T) {
	s := store.New(keygen.Fixed())
	s.Meta.Server = xray.ServerInfo{
		PublicKey:  "a+b/c=",
		ServerName: "example.com",
		Port:       443,
		ShortIDs:   []string{"abcd"},
	}
	s.Meta.Users = map[string]xray.UserRecord{
		"u1": {Name: "alice smith", Data: xray.Client{ID: "u1", Flow: xray.Flow}},
	}

	link, ok := NewBuilder(s).BuildConnectionURI("alice smith", "1.2.3.4")
	if !ok {
		t.Fatal("expected link to be built")
	}
	if !strings.Contains(link, "pbk=a%2Bb%2Fc%3D") {
		t.Errorf("public key not query-escaped: %s", link)
	}
	if !strings.HasSuffix(link, "#alice%20smith") {
		t.Errorf("name not escaped in fragment: %s", link)
	}
}

func TestUnknownUserIsAbsent(t *testing.T) {
	b := fixedStateBuilder()

	if _, ok := b.BuildConnectionURI("nobody", "1.2.3.4"); ok {
		t.Error("expected absent link for unknown user")
	}
	if _, ok := b.BuildClientConfig("nobody", "1.2.3.4"); ok {
		t.Error("expected absent config for unknown user")
	}
	if _, ok := b.BuildQRPayload("nobody", "1.2.3.4", QRModeLink); ok {
		t.Error("expected absent QR payload for unknown user")
	}
}

func TestIncompleteServerInfoIsAbsent(t *testing.T) {
	s := store.New(keygen.Fixed())
	s.Meta.Users = map[string]xray.UserRecord{
		"u1": {Name: "alice", Data: xray.Client{ID: "u1", Flow: xray.Flow}},
	}

	// No server cache at all.
	if _, ok := NewBuilder(s).BuildClientConfig("alice", "1.2.3.4"); ok {
		t.Error("expected absent config without server info")
	}

	// Complete cache but no short id anywhere.
	s.Meta.Server = xray.ServerInfo{PublicKey: "PK", ServerName: "example.com", Port: 443}
	if _, ok := NewBuilder(s).BuildConnectionURI("alice", "1.2.3.4"); ok {
		t.Error("expected absent link without any short id")
	}
}

func TestPerUserShortIDOverridesPrimary(t *testing.T) {
	b := fixedStateBuilder()
	b.store.Meta.Users["u2"] = xray.UserRecord{
		Name:    "bob",
		Data:    xray.Client{ID: "u2", Flow: xray.Flow},
		ShortID: "ffff0000",
	}

	link, ok := b.BuildConnectionURI("bob", "1.2.3.4")
	if !ok {
		t.Fatal("expected link to be built")
	}
	if !strings.Contains(link, "sid=ffff0000") {
		t.Errorf("expected per-user short id in link, got %s", link)
	}
}

func TestBuildClientConfigEndToEnd(t *testing.T) {
	s := store.New(keygen.Fixed())
	if err := s.Initialize(context.Background(), "a.com:443", []string{"a.com"}, 443); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	bobID, _, err := s.AddUser("bob")
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	cfg, ok := NewBuilder(s).BuildClientConfig("bob", "9.9.9.9")
	if !ok {
		t.Fatal("expected client config to be built")
	}

	if len(cfg.Outbounds) != 2 {
		t.Fatalf("expected proxy and direct outbounds, got %d", len(cfg.Outbounds))
	}
	proxy := cfg.Outbounds[0]
	if proxy.Protocol != "vless" || proxy.Tag != "proxy" {
		t.Errorf("unexpected proxy outbound: %+v", proxy)
	}

	vnext := proxy.Settings.Vnext[0]
	if vnext.Address != "9.9.9.9" {
		t.Errorf("expected server address 9.9.9.9, got %s", vnext.Address)
	}
	if vnext.Port != 443 {
		t.Errorf("expected port 443, got %d", vnext.Port)
	}
	if vnext.Users[0].ID != bobID {
		t.Errorf("expected outbound user id %s, got %s", bobID, vnext.Users[0].ID)
	}
	if vnext.Users[0].Flow != "xtls-rprx-vision" {
		t.Errorf("unexpected flow %s", vnext.Users[0].Flow)
	}

	reality := proxy.StreamSettings.RealitySettings
	if reality.PublicKey != s.Meta.Server.PublicKey {
		t.Errorf("expected public key %s, got %s", s.Meta.Server.PublicKey, reality.PublicKey)
	}
	if reality.ServerName != "a.com" {
		t.Errorf("expected server name a.com, got %s", reality.ServerName)
	}
	if reality.Fingerprint != "chrome" {
		t.Errorf("expected chrome fingerprint, got %s", reality.Fingerprint)
	}

	// Local listeners and routing are fixed.
	if cfg.Inbounds[0].Port != SocksPort || cfg.Inbounds[1].Port != HTTPPort {
		t.Errorf("unexpected local inbound ports: %+v", cfg.Inbounds)
	}
	if cfg.Routing.Rules[0].IP[0] != "geoip:private" {
		t.Errorf("unexpected routing rule: %+v", cfg.Routing.Rules[0])
	}
}

func TestBuilderDoesNotMutateState(t *testing.T) {
	b := fixedStateBuilder()
	before, err := json.Marshal(b.store.Meta)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	b.BuildClientConfig("alice", "1.2.3.4")
	b.BuildConnectionURI("alice", "1.2.3.4")
	b.BuildQRPayload("alice", "1.2.3.4", QRModeConfig)

	after, err := json.Marshal(b.store.Meta)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(before) != string(after) {
		t.Error("builder mutated the stored state")
	}
}

func TestQRPayloadModes(t *testing.T) {
	b := fixedStateBuilder()

	link, ok := b.BuildQRPayload("alice", "1.2.3.4", QRModeLink)
	if !ok {
		t.Fatal("expected link payload")
	}
	if !strings.HasPrefix(link, "vless://") {
		t.Errorf("link payload does not look like a link: %s", link)
	}

	payload, ok := b.BuildQRPayload("alice", "1.2.3.4", QRModeConfig)
	if !ok {
		t.Fatal("expected config payload")
	}
	var cfg ClientConfig
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		t.Fatalf("config payload is not valid JSON: %v", err)
	}
	if cfg.Outbounds[0].Settings.Vnext[0].Users[0].ID != "u1" {
		t.Error("config payload does not embed the user id")
	}
}
