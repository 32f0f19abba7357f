package xray

// Metadata is the side-car document paired with a ServerConfig. It carries
// the human-readable user directory and the public-facing server values that
// client artifacts are built from. The private key is deliberately never
// mirrored here.
type Metadata struct {
	Server ServerInfo            `json:"server"`
	Users  map[string]UserRecord `json:"users,omitempty"`
}

// ServerInfo caches the public-facing reality values. It mirrors, but is not
// the source of truth for, the realitySettings in the server document.
type ServerInfo struct {
	PublicKey  string   `json:"publicKey,omitempty"`
	ServerName string   `json:"serverName,omitempty"`
	Dest       string   `json:"dest,omitempty"`
	Port       int      `json:"port,omitempty"`
	ShortIDs   []string `json:"shortIds,omitempty"`
}

// UserRecord is one directory entry: the display name, the exact client
// record stored in the server document, and an optional per-user short id.
type UserRecord struct {
	Name    string `json:"name"`
	Data    Client `json:"data"`
	ShortID string `json:"shortId,omitempty"`
}

// NewMetadata returns an empty metadata document.
func NewMetadata() *Metadata {
	return &Metadata{Users: map[string]UserRecord{}}
}

// PrimaryShortID returns the first short id of the cached set, or empty when
// none are known.
func (s ServerInfo) PrimaryShortID() string {
	if len(s.ShortIDs) == 0 {
		return ""
	}
	return s.ShortIDs[0]
}

// Complete reports whether the cache holds everything a client artifact
// needs.
func (s ServerInfo) Complete() bool {
	return s.PublicKey != "" && s.ServerName != "" && s.Port != 0
}
