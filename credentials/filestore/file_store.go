package filestore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-car-rental/credentials"
	"github.com/jrsteele09/go-car-rental/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

var _ credentials.Store = (*Store)(nil)

const (
	fileMode  = 0o600
	dirMode   = 0o700
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	envelopeVersion = 1
)

// scrypt parameters for deriving the secretbox key from the passphrase
var (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// envelope is the on-disk format when a passphrase is configured
type envelope struct {
	Version int    `json:"version"`
	Salt    string `json:"salt"`
	Sealed  string `json:"sealed"` // nonce || secretbox(values)
}

// Store keeps credentials in a single JSON file. Every write replaces the
// file atomically (temp file + rename), so a multi-key Delete is never
// observed half done. With a passphrase the file is sealed with NaCl
// secretbox under a scrypt-derived key.
type Store struct {
	path       string
	passphrase []byte

	mu      sync.Mutex
	keySalt string
	key     *[keySize]byte
}

type Option func(*Store)

// WithPassphrase encrypts the file at rest
func WithPassphrase(passphrase string) Option {
	return func(s *Store) {
		if passphrase != "" {
			s.passphrase = []byte(passphrase)
		}
	}
}

func New(path string, opts ...Option) *Store {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file location
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	values, _, err := s.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", errors.ErrKeyNotFound
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

func (s *Store) SetMany(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, salt, err := s.read()
	if err != nil {
		return err
	}
	for k, v := range values {
		current[k] = v
	}
	return s.write(current, salt)
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, salt, err := s.read()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(current, k)
	}
	if len(current) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove credential file: %w", err)
		}
		return nil
	}
	return s.write(current, salt)
}

// read loads the file. A missing file is an empty store.
func (s *Store) read() (map[string]string, []byte, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Sealed != "" {
		return s.open(env)
	}

	if s.passphrase != nil {
		return nil, nil, errors.Wrapf(errors.ErrCorruptStore, "expected an encrypted credential file")
	}
	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, nil, errors.Wrapf(errors.ErrCorruptStore, "%v", err)
	}
	return values, nil, nil
}

func (s *Store) open(env envelope) (map[string]string, []byte, error) {
	if s.passphrase == nil {
		return nil, nil, errors.Wrapf(errors.ErrInvalidPassphrase, "credential file is encrypted")
	}
	if env.Version != envelopeVersion {
		return nil, nil, errors.Wrapf(errors.ErrCorruptStore, "unsupported version %d", env.Version)
	}
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, nil, errors.Wrapf(errors.ErrCorruptStore, "salt: %v", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(env.Sealed)
	if err != nil || len(sealed) < nonceSize+secretbox.Overhead {
		return nil, nil, errors.Wrapf(errors.ErrCorruptStore, "sealed payload")
	}

	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, nil, err
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, key)
	if !ok {
		return nil, nil, errors.ErrInvalidPassphrase
	}

	values := map[string]string{}
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, nil, errors.Wrapf(errors.ErrCorruptStore, "%v", err)
	}
	return values, salt, nil
}

func (s *Store) write(values map[string]string, salt []byte) error {
	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if s.passphrase != nil {
		if payload, err = s.seal(payload, salt); err != nil {
			return err
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("failed to create credential dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}
	return nil
}

func (s *Store) seal(plain, salt []byte) ([]byte, error) {
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	}
	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, key)

	return json.Marshal(envelope{
		Version: envelopeVersion,
		Salt:    base64.StdEncoding.EncodeToString(salt),
		Sealed:  base64.StdEncoding.EncodeToString(sealed),
	})
}

// deriveKey runs scrypt once per salt; the result is cached for the
// lifetime of the store.
func (s *Store) deriveKey(salt []byte) (*[keySize]byte, error) {
	encoded := base64.StdEncoding.EncodeToString(salt)
	if s.key != nil && s.keySalt == encoded {
		return s.key, nil
	}
	derived, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], derived)
	s.key, s.keySalt = &key, encoded
	return s.key, nil
}
