package repo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func tempAdminFile(t *testing.T) *AdminFile {
	t.Helper()
	return NewAdminFile(filepath.Join(t.TempDir(), "admin_users.json"))
}

func TestAdminFileEnsureExists(t *testing.T) {
	f := tempAdminFile(t)
	if err := f.EnsureExists(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		t.Fatal(err)
	}
	var data adminFileData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatal(err)
	}
	if len(data.AdminUserIDs) != 0 || len(data.AdminUsernames) != 0 {
		t.Errorf("seed file is not empty: %+v", data)
	}

	// Seeding again must not clobber grown state.
	if err := f.Add(1, "root"); err != nil {
		t.Fatal(err)
	}
	if err := f.EnsureExists(); err != nil {
		t.Fatal(err)
	}
	if !f.IsAdmin(1, "") {
		t.Errorf("EnsureExists reset the allow-list")
	}
}

func TestAdminFileMembership(t *testing.T) {
	f := tempAdminFile(t)

	if f.IsAdmin(1, "boss") {
		t.Errorf("empty list granted admin")
	}

	if err := f.Add(1, "Boss"); err != nil {
		t.Fatal(err)
	}
	if !f.IsAdmin(1, "") {
		t.Errorf("lookup by ID failed")
	}
	if !f.IsAdmin(99, "boss") {
		t.Errorf("username match should be case-insensitive")
	}
	if f.IsAdmin(99, "intruder") {
		t.Errorf("unknown user granted admin")
	}
}

func TestAdminFileAddIsIdempotent(t *testing.T) {
	f := tempAdminFile(t)

	if err := f.Add(1, "boss"); err != nil {
		t.Fatal(err)
	}
	if err := f.Add(1, "BOSS"); err != nil {
		t.Fatal(err)
	}
	if err := f.Add(2, ""); err != nil {
		t.Fatal(err)
	}

	data := f.load()
	if len(data.AdminUserIDs) != 2 {
		t.Errorf("ids = %v, want exactly 2", data.AdminUserIDs)
	}
	if len(data.AdminUsernames) != 1 {
		t.Errorf("usernames = %v, want exactly 1", data.AdminUsernames)
	}
}

func TestAdminFileMissingFileReadsEmpty(t *testing.T) {
	f := NewAdminFile(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if f.IsAdmin(1, "anyone") {
		t.Errorf("missing file granted admin")
	}
}
