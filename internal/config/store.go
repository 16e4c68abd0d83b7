package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shaiso/railbot/internal/domain"
)

const (
	plainFile     = "config.json"
	encryptedFile = "config.enc"
)

var (
	// ErrNoKey — шифрование запрошено без ключа.
	ErrNoKey = errors.New("encryption key not set")

	// ErrDecrypt — файл не расшифровывается этим ключом.
	ErrDecrypt = errors.New("failed to decrypt config")
)

// Store — хранилище конфигурации бронирования.
type Store struct {
	dir    string
	key    []byte // 32 байта после деривации; nil — шифрование выключено
	logger *slog.Logger
}

// NewStore создаёт хранилище в каталоге dir.
//
// Непустой passphrase включает шифрование: ключ AES-256 выводится
// как SHA-256 от passphrase.
func NewStore(dir, passphrase string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	s := &Store{dir: dir, logger: logger}
	if passphrase != "" {
		sum := sha256.Sum256([]byte(passphrase))
		s.key = sum[:]
	}
	return s, nil
}

// Save записывает конфигурацию. При encrypt == true файл шифруется.
func (s *Store) Save(req *domain.BookingRequest, encrypt bool) error {
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if encrypt {
		if s.key == nil {
			return ErrNoKey
		}
		sealed, err := s.seal(data)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(s.dir, encryptedFile), sealed, 0o600)
	}
	return os.WriteFile(filepath.Join(s.dir, plainFile), data, 0o600)
}

// Load читает конфигурацию. Зашифрованный файл имеет приоритет,
// когда задан ключ. Отсутствие обоих файлов возвращает (nil, nil).
func (s *Store) Load() (*domain.BookingRequest, error) {
	if s.key != nil {
		data, err := os.ReadFile(filepath.Join(s.dir, encryptedFile))
		if err == nil {
			plain, err := s.open(data)
			if err != nil {
				return nil, err
			}
			return unmarshal(plain)
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read encrypted config: %w", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(s.dir, plainFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return unmarshal(data)
}

// Clear удаляет оба файла конфигурации.
func (s *Store) Clear() error {
	for _, name := range []string{plainFile, encryptedFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func unmarshal(data []byte) (*domain.BookingRequest, error) {
	var req domain.BookingRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &req, nil
}

// seal шифрует data; результат — base64(nonce || ciphertext).
func (s *Store) seal(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nonce, nonce, data, nil)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sealed)))
	base64.StdEncoding.Encode(out, sealed)
	return out, nil
}

func (s *Store) open(data []byte) ([]byte, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(raw, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	raw = raw[:n]

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(raw) < gcm.NonceSize() {
		return nil, ErrDecrypt
	}

	plain, err := gcm.Open(nil, raw[:gcm.NonceSize()], raw[gcm.NonceSize():], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plain, nil
}
