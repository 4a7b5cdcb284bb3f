// Package credentials holds the read-only user directory loaded at startup.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
)

var _ ports.CredentialStore = (*MemoryStore)(nil)

type usersFile struct {
	Users []struct {
		ID           string   `yaml:"id"`
		Username     string   `yaml:"username"`
		Password     string   `yaml:"password"`
		PasswordHash string   `yaml:"password_hash"`
		Email        string   `yaml:"email"`
		Roles        []string `yaml:"roles"`
	} `yaml:"users"`
}

// MemoryStore is immutable after construction and safe for concurrent reads.
type MemoryStore struct {
	byID       map[string]domain.User
	byUsername map[string]domain.User
}

// LoadFile reads users from a YAML file. See Load.
func LoadFile(path, fallbackHash string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("credentials: read %s: %w", path, err)
	}
	return Load(bytes.NewReader(data), fallbackHash)
}

// Load parses the users document. A plain password is hashed with bcrypt;
// users with neither password nor hash get fallbackHash.
func Load(r io.Reader, fallbackHash string) (*MemoryStore, error) {
	var uf usersFile
	if err := yaml.NewDecoder(r).Decode(&uf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("credentials: decode: %w", err)
	}

	users := make([]domain.User, 0, len(uf.Users))
	for i, u := range uf.Users {
		if u.ID == "" || u.Username == "" {
			return nil, fmt.Errorf("credentials: user #%d needs id and username", i+1)
		}

		hash := u.PasswordHash
		if hash == "" && u.Password != "" {
			h, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("credentials: hash password of %s: %w", u.Username, err)
			}
			hash = string(h)
		}
		if hash == "" {
			hash = fallbackHash
		}
		if hash == "" {
			return nil, fmt.Errorf("credentials: user %s has no password", u.Username)
		}

		users = append(users, domain.User{
			ID:           u.ID,
			Username:     u.Username,
			PasswordHash: hash,
			Email:        u.Email,
			Roles:        append([]string(nil), u.Roles...),
		})
	}
	return NewMemoryStore(users...)
}

// NewMemoryStore builds a store from users. Duplicate ids or usernames are
// rejected.
func NewMemoryStore(users ...domain.User) (*MemoryStore, error) {
	s := &MemoryStore{
		byID:       make(map[string]domain.User, len(users)),
		byUsername: make(map[string]domain.User, len(users)),
	}
	for _, u := range users {
		if _, dup := s.byID[u.ID]; dup {
			return nil, fmt.Errorf("credentials: duplicate user id %s", u.ID)
		}
		if _, dup := s.byUsername[u.Username]; dup {
			return nil, fmt.Errorf("credentials: duplicate username %s", u.Username)
		}
		s.byID[u.ID] = u
		s.byUsername[u.Username] = u
	}
	return s, nil
}

func (s *MemoryStore) FindByUsername(username string) (*domain.User, error) {
	u, ok := s.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(u), nil
}

func (s *MemoryStore) FindByID(id string) (*domain.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(u), nil
}

// Len reports the number of users.
func (s *MemoryStore) Len() int { return len(s.byID) }

func clone(u domain.User) *domain.User {
	u.Roles = append([]string(nil), u.Roles...)
	return &u
}
