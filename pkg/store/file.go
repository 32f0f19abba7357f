package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/realityops/realityctl/pkg/xray"
)

// MetadataPath returns the side-car path paired with a server config path:
// the same base name with a `_metadata` suffix before the extension.
func MetadataPath(configPath string) string {
	ext := filepath.Ext(configPath)
	base := strings.TrimSuffix(configPath, ext)
	return base + "_metadata" + ext
}

// Load reads the paired documents from disk. A missing server config is a
// soft not-found: the Store keeps its defaults and found is false. A present
// but malformed document is a fatal parse error. After a successful load the
// two documents are checked for referential integrity.
func (s *Store) Load(configPath string) (found bool, err error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := xray.NewServerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	meta := xray.NewMetadata()

	metaPath := MetadataPath(configPath)
	metaData, err := os.ReadFile(metaPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(metaData, meta); err != nil {
			return false, fmt.Errorf("failed to parse metadata file %s: %w", metaPath, err)
		}
		if meta.Users == nil {
			meta.Users = map[string]xray.UserRecord{}
		}
	case os.IsNotExist(err):
		// Config without metadata is fine only while no clients exist;
		// otherwise CheckIntegrity below reports the orphans.
	default:
		return false, fmt.Errorf("failed to read metadata file: %w", err)
	}

	s.Config = cfg
	s.Meta = meta
	if err := s.CheckIntegrity(); err != nil {
		return true, err
	}
	return true, nil
}

// Save persists both documents. Both are marshaled before anything touches
// the disk, and each file is written through a temp-file-plus-rename swap so
// a crash cannot leave a truncated document behind.
func (s *Store) Save(configPath string) error {
	if err := s.CheckIntegrity(); err != nil {
		return err
	}

	cfgData, err := json.MarshalIndent(s.Config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	metaData, err := json.MarshalIndent(s.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := writeFileAtomic(configPath, cfgData, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := writeFileAtomic(MetadataPath(configPath), metaData, 0o600); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
