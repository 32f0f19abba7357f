// Package store owns the paired configuration state: the Xray server
// document and its side-car metadata document. All mutations go through the
// Store so the two documents can never drift apart; persistence is an
// explicit Load/Save boundary.
package store

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/realityops/realityctl/pkg/keygen"
	"github.com/realityops/realityctl/pkg/xray"
)

// DefaultPort is the listener port used when none is given.
const DefaultPort = 443

// Store holds one server document and its metadata document, mutated
// together in memory and persisted together. A Store serves one logical
// operation per process invocation; concurrent use of the same file pair is
// not supported.
type Store struct {
	Config *xray.ServerConfig
	Meta   *xray.Metadata

	gens keygen.Generators
}

// New returns a Store with fresh default documents and the given generator
// suite.
func New(gens keygen.Generators) *Store {
	return &Store{
		Config: xray.NewServerConfig(),
		Meta:   xray.NewMetadata(),
		gens:   gens,
	}
}

// Initialize builds a fresh reality configuration: a newly generated key
// pair, one generated short id seeded into the allow-set, and the given
// destination, server names and port. The metadata cache is populated in the
// same step.
func (s *Store) Initialize(ctx context.Context, dest string, serverNames []string, port int) error {
	if dest == "" {
		return fmt.Errorf("%w: destination is required", ErrValidation)
	}
	if len(serverNames) == 0 {
		return fmt.Errorf("%w: at least one server name is required", ErrValidation)
	}
	if err := validatePort(port); err != nil {
		return err
	}

	priv, pub, err := s.gens.Keys.Generate(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate key pair: %w", err)
	}
	shortID, err := s.gens.ShortIDs.Generate(keygen.DefaultShortIDLength)
	if err != nil {
		return fmt.Errorf("failed to generate short id: %w", err)
	}

	s.Config.Inbound().Port = port
	r := s.Config.Reality()
	r.Dest = dest
	r.ServerNames = slices.Clone(serverNames)
	r.PrivateKey = priv
	r.ShortIDs = []string{shortID}

	s.Meta.Server = xray.ServerInfo{
		PublicKey:  pub,
		ServerName: serverNames[0],
		Dest:       dest,
		Port:       port,
		ShortIDs:   []string{shortID},
	}
	return nil
}

// IsConfigured reports whether the reality parameters are fully populated.
func (s *Store) IsConfigured() bool {
	return s.Config.IsConfigured()
}

// SetDestination updates the masqueraded destination in both documents.
func (s *Store) SetDestination(dest string) error {
	if dest == "" {
		return fmt.Errorf("%w: destination is required", ErrValidation)
	}
	s.Config.Reality().Dest = dest
	s.Meta.Server.Dest = dest
	return nil
}

// SetServerNames replaces the server-name list; the first entry becomes the
// primary name cached for clients.
func (s *Store) SetServerNames(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one server name is required", ErrValidation)
	}
	s.Config.Reality().ServerNames = slices.Clone(names)
	s.Meta.Server.ServerName = names[0]
	return nil
}

// SetPort updates the listener port in both documents.
func (s *Store) SetPort(port int) error {
	if err := validatePort(port); err != nil {
		return err
	}
	s.Config.Inbound().Port = port
	s.Meta.Server.Port = port
	return nil
}

// RotateKeys replaces the private key and the primary short id. When the
// allow-set is empty the short id is appended; otherwise the first entry is
// replaced so rotation never accumulates stale primaries. The public key and
// short id set are mirrored into the metadata cache.
func (s *Store) RotateKeys(privateKey, publicKey, shortID string) error {
	if privateKey == "" || publicKey == "" {
		return fmt.Errorf("%w: both private and public key are required", ErrValidation)
	}
	r := s.Config.Reality()
	r.PrivateKey = privateKey
	if shortID != "" {
		if len(r.ShortIDs) == 0 {
			r.ShortIDs = []string{shortID}
		} else {
			r.ShortIDs[0] = shortID
		}
	}
	s.Meta.Server.PublicKey = publicKey
	s.Meta.Server.ShortIDs = slices.Clone(r.ShortIDs)
	return nil
}

// AddShortID appends a short id to the allow-set. Adding an id that is
// already present is a no-op.
func (s *Store) AddShortID(id string) {
	if id == "" {
		return
	}
	r := s.Config.Reality()
	if slices.Contains(r.ShortIDs, id) {
		return
	}
	r.ShortIDs = append(r.ShortIDs, id)
	s.Meta.Server.ShortIDs = slices.Clone(r.ShortIDs)
}

// AddUser registers a user. A duplicate name is idempotent: the existing
// identifier is returned and created is false. Otherwise a fresh UUID client
// entry is appended to the server document and the directory entry inserted
// in the same step, so neither document can hold the user without the other.
func (s *Store) AddUser(name string) (id string, created bool, err error) {
	if name == "" {
		return "", false, fmt.Errorf("%w: user name is required", ErrValidation)
	}
	if existing, _, ok := s.LookupByName(name); ok {
		return existing, false, nil
	}

	id, err = s.gens.UUIDs.Generate()
	if err != nil {
		return "", false, fmt.Errorf("failed to generate user id: %w", err)
	}

	client := xray.Client{ID: id, Flow: xray.Flow}
	in := s.Config.Inbound()
	in.Settings.Clients = append(in.Settings.Clients, client)

	if s.Meta.Users == nil {
		s.Meta.Users = map[string]xray.UserRecord{}
	}
	s.Meta.Users[id] = xray.UserRecord{Name: name, Data: client}
	return id, true, nil
}

// RemoveUser deletes a user by name from both documents. A missing name is a
// normal outcome reported as false, not an error.
func (s *Store) RemoveUser(name string) (bool, error) {
	id, _, ok := s.LookupByName(name)
	if !ok {
		return false, nil
	}

	in := s.Config.Inbound()
	in.Settings.Clients = slices.DeleteFunc(in.Settings.Clients, func(c xray.Client) bool {
		return c.ID == id
	})
	delete(s.Meta.Users, id)
	return true, nil
}

// LookupByName finds a user by display name. Names are unique by
// construction, so a linear scan cannot tie.
func (s *Store) LookupByName(name string) (string, xray.UserRecord, bool) {
	for id, rec := range s.Meta.Users {
		if rec.Name == name {
			return id, rec, true
		}
	}
	return "", xray.UserRecord{}, false
}

// UserSummary is one row of the user listing.
type UserSummary struct {
	ID   string
	Name string
}

// ListUsers returns all users sorted by name. The persisted directory is a
// JSON object, which cannot round-trip insertion order, so name order is the
// stable choice for display.
func (s *Store) ListUsers() []UserSummary {
	users := make([]UserSummary, 0, len(s.Meta.Users))
	for id, rec := range s.Meta.Users {
		users = append(users, UserSummary{ID: id, Name: rec.Name})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users
}

// CheckIntegrity verifies the bidirectional correspondence between the
// client list and the user directory.
func (s *Store) CheckIntegrity() error {
	clients := s.Config.Clients()
	seen := make(map[string]bool, len(clients))
	for _, c := range clients {
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate client id %s", ErrIntegrity, c.ID)
		}
		seen[c.ID] = true
		if _, ok := s.Meta.Users[c.ID]; !ok {
			return fmt.Errorf("%w: client %s has no metadata entry", ErrIntegrity, c.ID)
		}
	}
	for id := range s.Meta.Users {
		if !seen[id] {
			return fmt.Errorf("%w: user %s has no client entry", ErrIntegrity, id)
		}
	}
	return nil
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%w: port must be between 1 and 65535, got %d", ErrValidation, port)
	}
	return nil
}
