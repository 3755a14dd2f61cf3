package hipaa

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	tokenSeparator = ":"
	keyPadByte     = '0'
)

// FieldEncryptor encrypts and decrypts single string fields. Implementations
// never fail: on error the input is returned unchanged.
type FieldEncryptor interface {
	EncryptField(plaintext string) string
	DecryptField(token string) string
}

// CipherConfig holds the field cipher secret. It is built once at startup and
// passed to NewFieldCipher.
type CipherConfig struct {
	// Key is arbitrary secret material, normalized with NormalizeKey.
	Key string
}

// FieldCipher is AES-256-CBC with a random IV per call. Tokens have the shape
// "<ivHex>:<cipherHex>".
type FieldCipher struct {
	block    cipher.Block
	indexKey []byte
	enabled  bool
	logger   zerolog.Logger
}

// NormalizeKey right-pads secret with '0' or truncates it to KeySize bytes.
func NormalizeKey(secret string) []byte {
	key := make([]byte, KeySize)
	n := copy(key, secret)
	for i := n; i < KeySize; i++ {
		key[i] = keyPadByte
	}
	return key
}

// NewFieldCipher builds the cipher from cfg. An empty key disables encryption
// (development mode) and every call becomes the identity.
func NewFieldCipher(cfg CipherConfig, logger zerolog.Logger) (*FieldCipher, error) {
	logger = logger.With().Str("component", "field_cipher").Logger()
	if cfg.Key == "" {
		logger.Warn().Msg("PII field encryption disabled: ENCRYPTION_KEY is not set")
		return &FieldCipher{logger: logger}, nil
	}

	key := NormalizeKey(cfg.Key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("field cipher: create cipher: %w", err)
	}

	logger.Info().Msg("PII field encryption enabled")
	return &FieldCipher{block: block, indexKey: key, enabled: true, logger: logger}, nil
}

// IsEnabled reports whether a key was configured.
func (c *FieldCipher) IsEnabled() bool {
	return c.enabled
}

// EncryptField returns an "<ivHex>:<cipherHex>" token. Empty input, a
// disabled cipher or an entropy failure return plaintext unchanged.
func (c *FieldCipher) EncryptField(plaintext string) string {
	if !c.enabled || plaintext == "" {
		return plaintext
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		c.logger.Error().Err(err).Msg("field encrypt: generate iv")
		return plaintext
	}

	data := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out, data)

	return hex.EncodeToString(iv) + tokenSeparator + hex.EncodeToString(out)
}

// DecryptField reverses EncryptField. Anything that is not a well-formed
// token (legacy plaintext, garbage, wrong key) is returned unchanged.
func (c *FieldCipher) DecryptField(token string) string {
	if !c.enabled || token == "" {
		return token
	}

	ivHex, dataHex, ok := strings.Cut(token, tokenSeparator)
	if !ok {
		return token
	}

	plaintext, err := c.decrypt(ivHex, dataHex)
	if err != nil {
		c.logger.Warn().Err(err).Msg("field decrypt failed, returning value unchanged")
		return token
	}
	return plaintext
}

func (c *FieldCipher) decrypt(ivHex, dataHex string) (string, error) {
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", fmt.Errorf("decode iv: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}

	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(data))
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(out, data)

	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

var errBadPadding = errors.New("invalid padding")

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errBadPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errBadPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errBadPadding
		}
	}
	return data[:len(data)-n], nil
}
