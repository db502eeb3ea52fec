// Package macaroons bakes and validates the macaroons binding a REST request to the account it
// acts for.
package macaroons

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/macaroon.v2"
)

const (
	rootKeyFile = "macaroons.key"
	rootKeySize = 32

	accountCaveat    = "account"
	timeBeforeCaveat = "time-before"
)

var (
	ErrMissingAccount = errors.New("macaroon is not bound to an account")
	ErrExpired        = errors.New("macaroon has expired")
)

// Service holds the root key every macaroon is signed with.
type Service struct {
	location string
	rootKey  []byte
	now      func() time.Time
}

// NewService loads the root key from the datadir, generating it on first start.
func NewService(datadir, location string) (*Service, error) {
	rootKey, err := loadRootKey(filepath.Join(datadir, rootKeyFile))
	if err != nil {
		return nil, err
	}
	return NewServiceWithKey(rootKey, location), nil
}

func NewServiceWithKey(rootKey []byte, location string) *Service {
	return &Service{location: location, rootKey: rootKey, now: time.Now}
}

// Bake returns a macaroon bound to the account. A zero ttl never expires.
func (s *Service) Bake(account string, ttl time.Duration) ([]byte, error) {
	if account == "" || strings.ContainsAny(account, " \n") {
		return nil, fmt.Errorf("invalid account %q", account)
	}

	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		return nil, err
	}
	mac, err := macaroon.New(s.rootKey, id, s.location, macaroon.LatestVersion)
	if err != nil {
		return nil, err
	}

	if err := mac.AddFirstPartyCaveat([]byte(accountCaveat + " " + account)); err != nil {
		return nil, err
	}
	if ttl > 0 {
		expiry := s.now().Add(ttl).Unix()
		caveat := fmt.Sprintf("%s %d", timeBeforeCaveat, expiry)
		if err := mac.AddFirstPartyCaveat([]byte(caveat)); err != nil {
			return nil, err
		}
	}
	return mac.MarshalBinary()
}

// Validate checks the signature and the caveats of a hex encoded macaroon and returns the
// account it is bound to.
func (s *Service) Validate(encoded string) (string, error) {
	buf, err := hex.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("malformed macaroon: %w", err)
	}
	mac := &macaroon.Macaroon{}
	if err := mac.UnmarshalBinary(buf); err != nil {
		return "", fmt.Errorf("malformed macaroon: %w", err)
	}

	var account string
	check := func(caveat string) error {
		name, value, _ := strings.Cut(caveat, " ")
		switch name {
		case accountCaveat:
			if account != "" && account != value {
				return fmt.Errorf("macaroon is bound to more than one account")
			}
			account = value
			return nil
		case timeBeforeCaveat:
			expiry, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s caveat: %w", timeBeforeCaveat, err)
			}
			if !s.now().Before(time.Unix(expiry, 0)) {
				return ErrExpired
			}
			return nil
		default:
			return fmt.Errorf("unknown caveat %q", name)
		}
	}
	if err := mac.Verify(s.rootKey, check, nil); err != nil {
		return "", err
	}
	if account == "" {
		return "", ErrMissingAccount
	}
	return account, nil
}

// WriteIfMissing bakes a non expiring macaroon for the account into path unless the file
// already exists. It reports whether the file was written.
func (s *Service) WriteIfMissing(path, account string) (bool, error) {
	if pathExists(path) {
		return false, nil
	}
	if err := makeDirectoryIfNotExists(filepath.Dir(path)); err != nil {
		return false, err
	}
	buf, err := s.Bake(account, 0)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, buf, 0600); err != nil {
		// nolint:all
		os.Remove(path)
		return false, err
	}
	return true, nil
}

// ReadFile returns the hex encoding of the macaroon stored at path, the form sent in the
// X-Macaroon header.
func ReadFile(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read macaroon %s: %s", path, err)
	}
	mac := &macaroon.Macaroon{}
	if err := mac.UnmarshalBinary(buf); err != nil {
		return "", fmt.Errorf("failed to parse macaroon %s: %s", path, err)
	}
	return hex.EncodeToString(buf), nil
}

func loadRootKey(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err == nil {
		if len(buf) != rootKeySize {
			return nil, fmt.Errorf("invalid macaroon root key at %s", path)
		}
		return buf, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := makeDirectoryIfNotExists(filepath.Dir(path)); err != nil {
		return nil, err
	}
	key := make([]byte, rootKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to store macaroon root key: %w", err)
	}
	return key, nil
}

func makeDirectoryIfNotExists(path string) error {
	if pathExists(path) {
		return nil
	}
	return os.MkdirAll(path, os.ModeDir|0755)
}

func pathExists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}
