package store

import (
	"context"
	"errors"
	"testing"

	"github.com/realityops/realityctl/pkg/keygen"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(keygen.Fixed())
	if err := s.Initialize(context.Background(), "a.com:443", []string{"a.com"}, 443); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return s
}

func TestInitialize(t *testing.T) {
	s := newTestStore(t)

	r := s.Config.Reality()
	if r.Dest != "a.com:443" {
		t.Errorf("expected dest a.com:443, got %s", r.Dest)
	}
	if r.PrivateKey != "priv-1" {
		t.Errorf("expected private key priv-1, got %s", r.PrivateKey)
	}
	if len(r.ShortIDs) != 1 {
		t.Fatalf("expected one seeded short id, got %d", len(r.ShortIDs))
	}
	if s.Config.Inbound().Port != 443 {
		t.Errorf("expected port 443, got %d", s.Config.Inbound().Port)
	}

	// The metadata cache is populated in the same step, without the
	// private key.
	if s.Meta.Server.PublicKey != "pub-1" {
		t.Errorf("expected cached public key pub-1, got %s", s.Meta.Server.PublicKey)
	}
	if s.Meta.Server.ServerName != "a.com" {
		t.Errorf("expected cached server name a.com, got %s", s.Meta.Server.ServerName)
	}
	if s.Meta.Server.PrimaryShortID() != r.ShortIDs[0] {
		t.Errorf("cached short id %s does not match config %s", s.Meta.Server.PrimaryShortID(), r.ShortIDs[0])
	}
}

func TestInitializeValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		dest        string
		serverNames []string
		port        int
	}{
		{"empty dest", "", []string{"a.com"}, 443},
		{"empty server names", "a.com:443", nil, 443},
		{"zero port", "a.com:443", []string{"a.com"}, 0},
		{"port too large", "a.com:443", []string{"a.com"}, 70000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(keygen.Fixed())
			err := s.Initialize(ctx, tt.dest, tt.serverNames, tt.port)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if s.IsConfigured() {
				t.Error("store must not be configured after a failed initialize")
			}
		})
	}
}

func TestIsConfiguredGate(t *testing.T) {
	s := New(keygen.Fixed())
	if s.IsConfigured() {
		t.Error("fresh store should not be configured")
	}

	// Any single missing field keeps the gate closed.
	r := s.Config.Reality()
	r.PrivateKey = "k"
	r.Dest = "a.com:443"
	if s.IsConfigured() {
		t.Error("should not be configured without server names")
	}
	r.ServerNames = []string{"a.com"}
	if !s.IsConfigured() {
		t.Error("should be configured with all three fields populated")
	}
	r.Dest = ""
	if s.IsConfigured() {
		t.Error("should not be configured without dest")
	}
}

func TestSettersMirrorMetadata(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetDestination("new.example.com:443"); err != nil {
		t.Fatalf("SetDestination failed: %v", err)
	}
	if got := s.Config.Reality().Dest; got != "new.example.com:443" {
		t.Errorf("config dest = %s", got)
	}
	if got := s.Meta.Server.Dest; got != "new.example.com:443" {
		t.Errorf("metadata dest = %s", got)
	}

	if err := s.SetServerNames([]string{"b.com", "c.com"}); err != nil {
		t.Fatalf("SetServerNames failed: %v", err)
	}
	if got := s.Meta.Server.ServerName; got != "b.com" {
		t.Errorf("expected primary server name b.com, got %s", got)
	}

	if err := s.SetPort(8443); err != nil {
		t.Fatalf("SetPort failed: %v", err)
	}
	if got := s.Config.Inbound().Port; got != 8443 {
		t.Errorf("config port = %d", got)
	}
	if got := s.Meta.Server.Port; got != 8443 {
		t.Errorf("metadata port = %d", got)
	}
}

func TestRotateKeysReplacesPrimaryShortID(t *testing.T) {
	s := newTestStore(t)

	if err := s.RotateKeys("priv-a", "pub-a", "aaaa"); err != nil {
		t.Fatalf("RotateKeys failed: %v", err)
	}
	if err := s.RotateKeys("priv-b", "pub-b", "bbbb"); err != nil {
		t.Fatalf("RotateKeys failed: %v", err)
	}

	r := s.Config.Reality()
	if len(r.ShortIDs) != 1 {
		t.Fatalf("expected exactly one short id after two rotations, got %v", r.ShortIDs)
	}
	if r.ShortIDs[0] != "bbbb" {
		t.Errorf("expected primary short id bbbb, got %s", r.ShortIDs[0])
	}
	if r.PrivateKey != "priv-b" {
		t.Errorf("expected private key priv-b, got %s", r.PrivateKey)
	}
	if s.Meta.Server.PublicKey != "pub-b" {
		t.Errorf("expected cached public key pub-b, got %s", s.Meta.Server.PublicKey)
	}
	if s.Meta.Server.PrimaryShortID() != "bbbb" {
		t.Errorf("expected cached short id bbbb, got %s", s.Meta.Server.PrimaryShortID())
	}
}

func TestRotateKeysOnEmptySetAppends(t *testing.T) {
	s := New(keygen.Fixed())
	if err := s.RotateKeys("priv", "pub", "cccc"); err != nil {
		t.Fatalf("RotateKeys failed: %v", err)
	}
	if got := s.Config.Reality().ShortIDs; len(got) != 1 || got[0] != "cccc" {
		t.Errorf("expected short ids [cccc], got %v", got)
	}
}

func TestAddShortIDIdempotent(t *testing.T) {
	s := newTestStore(t)
	before := len(s.Config.Reality().ShortIDs)

	s.AddShortID("dddd")
	s.AddShortID("dddd")

	ids := s.Config.Reality().ShortIDs
	if len(ids) != before+1 {
		t.Errorf("expected %d short ids, got %v", before+1, ids)
	}
}

func TestAddUserIdempotent(t *testing.T) {
	s := newTestStore(t)

	id1, created, err := s.AddUser("alice")
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if !created {
		t.Error("first add should create the user")
	}

	id2, created, err := s.AddUser("alice")
	if err != nil {
		t.Fatalf("second AddUser failed: %v", err)
	}
	if created {
		t.Error("duplicate add should not create a user")
	}
	if id1 != id2 {
		t.Errorf("duplicate add returned a different id: %s vs %s", id1, id2)
	}

	if got := len(s.Config.Clients()); got != 1 {
		t.Errorf("expected exactly one client entry, got %d", got)
	}
	if err := s.CheckIntegrity(); err != nil {
		t.Errorf("integrity violated: %v", err)
	}
}

func TestRemoveUserAtomic(t *testing.T) {
	s := newTestStore(t)
	id, _, err := s.AddUser("alice")
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if _, _, err := s.AddUser("bob"); err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	removed, err := s.RemoveUser("alice")
	if err != nil {
		t.Fatalf("RemoveUser failed: %v", err)
	}
	if !removed {
		t.Fatal("expected alice to be removed")
	}

	for _, c := range s.Config.Clients() {
		if c.ID == id {
			t.Error("removed client id still present in clients")
		}
	}
	if _, ok := s.Meta.Users[id]; ok {
		t.Error("removed user still present in metadata")
	}
	if err := s.CheckIntegrity(); err != nil {
		t.Errorf("integrity violated after remove: %v", err)
	}

	// Removing again is a soft no-op.
	removed, err = s.RemoveUser("alice")
	if err != nil {
		t.Fatalf("second RemoveUser failed: %v", err)
	}
	if removed {
		t.Error("second remove should report false")
	}
}

func TestReferentialIntegrityInvariant(t *testing.T) {
	s := newTestStore(t)

	names := []string{"alice", "bob", "carol", "dave"}
	for _, name := range names {
		if _, _, err := s.AddUser(name); err != nil {
			t.Fatalf("AddUser(%s) failed: %v", name, err)
		}
		if err := s.CheckIntegrity(); err != nil {
			t.Fatalf("integrity violated after adding %s: %v", name, err)
		}
	}
	for _, name := range []string{"bob", "dave"} {
		if _, err := s.RemoveUser(name); err != nil {
			t.Fatalf("RemoveUser(%s) failed: %v", name, err)
		}
		if err := s.CheckIntegrity(); err != nil {
			t.Fatalf("integrity violated after removing %s: %v", name, err)
		}
	}

	if got := len(s.Config.Clients()); got != 2 {
		t.Errorf("expected 2 clients, got %d", got)
	}
	if got := len(s.Meta.Users); got != 2 {
		t.Errorf("expected 2 users, got %d", got)
	}
}

func TestCheckIntegrityDetectsOrphans(t *testing.T) {
	s := newTestStore(t)
	id, _, err := s.AddUser("alice")
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	// Orphaned metadata entry.
	delete(s.Meta.Users, id)
	if err := s.CheckIntegrity(); !errors.Is(err, ErrIntegrity) {
		t.Errorf("expected ErrIntegrity for orphaned client, got %v", err)
	}
}

func TestListUsersStableOrder(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"carol", "alice", "bob"} {
		if _, _, err := s.AddUser(name); err != nil {
			t.Fatalf("AddUser(%s) failed: %v", name, err)
		}
	}

	users := s.ListUsers()
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	want := []string{"alice", "bob", "carol"}
	for i, u := range users {
		if u.Name != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], u.Name)
		}
	}
}

func TestLookupByName(t *testing.T) {
	s := newTestStore(t)
	id, _, err := s.AddUser("alice")
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	gotID, rec, ok := s.LookupByName("alice")
	if !ok {
		t.Fatal("expected to find alice")
	}
	if gotID != id {
		t.Errorf("expected id %s, got %s", id, gotID)
	}
	if rec.Data.ID != id {
		t.Errorf("client record id %s does not match %s", rec.Data.ID, id)
	}

	if _, _, ok := s.LookupByName("nobody"); ok {
		t.Error("lookup of unknown name should report absent")
	}
}
