package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

type adminFileData struct {
	AdminUsernames []string `json:"admin_usernames"`
	AdminUserIDs   []int64  `json:"admin_user_ids"`
}

// AdminFile is the local allow-list of admin users, persisted as JSON. It is
// read from disk on every check so a running process always sees the latest
// persisted state. Membership only ever grows.
type AdminFile struct {
	path string
	mu   sync.Mutex
}

func NewAdminFile(path string) *AdminFile {
	return &AdminFile{path: path}
}

// EnsureExists seeds an empty allow-list file when none is present.
func (f *AdminFile) EnsureExists() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := os.Stat(f.path); err == nil {
		return nil
	}
	return f.write(adminFileData{
		AdminUsernames: []string{},
		AdminUserIDs:   []int64{},
	})
}

// IsAdmin reports whether the user is allow-listed, by ID or by
// case-insensitive username. A load failure is logged and treated as an
// empty list.
func (f *AdminFile) IsAdmin(userID int64, username string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := f.load()
	for _, id := range data.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	if username == "" {
		return false
	}
	for _, name := range data.AdminUsernames {
		if strings.EqualFold(name, username) {
			return true
		}
	}
	return false
}

// Add records a newly authenticated admin. Adding an existing entry is a
// no-op; nothing is ever removed.
func (f *AdminFile) Add(userID int64, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := f.load()

	hasID := false
	for _, id := range data.AdminUserIDs {
		if id == userID {
			hasID = true
			break
		}
	}
	if !hasID {
		data.AdminUserIDs = append(data.AdminUserIDs, userID)
	}

	if username != "" {
		hasName := false
		for _, name := range data.AdminUsernames {
			if strings.EqualFold(name, username) {
				hasName = true
				break
			}
		}
		if !hasName {
			data.AdminUsernames = append(data.AdminUsernames, username)
		}
	}

	return f.write(data)
}

func (f *AdminFile) load() adminFileData {
	data := adminFileData{
		AdminUsernames: []string{},
		AdminUserIDs:   []int64{},
	}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error().Err(err).Str("path", f.path).Msg("error loading admin users")
		}
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Error().Err(err).Str("path", f.path).Msg("error parsing admin users")
	}
	return data
}

func (f *AdminFile) write(data adminFileData) error {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("error encoding admin users: %w", err)
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		return fmt.Errorf("error saving admin users: %w", err)
	}
	return nil
}
