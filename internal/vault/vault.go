// Package vault protects the mapping between public GitHub logins and
// private Slack user IDs. Values are encrypted independently with AES-GCM
// so single entries can be rotated without re-encrypting the whole store,
// and the decrypted mapping only ever lives in memory for one run.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaskedSentinel is returned by MaskForLogging when no mapping is loaded.
// Returning the original text would risk leaking a user ID we simply do not
// know about, so the whole message is withheld instead.
const MaskedSentinel = "no identity mapping loaded - masking full message"

const keyBytes = 32

// DecryptionError reports a missing/malformed key or a ciphertext that
// failed authentication. Callers degrade to public-profile rendering.
type DecryptionError struct {
	Login string
	Err   error
}

func (e *DecryptionError) Error() string {
	if e.Login != "" {
		return fmt.Sprintf("decrypting entry for %q: %v", e.Login, e.Err)
	}
	return fmt.Sprintf("decryption failed: %v", e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// Entry is one decrypted mapping pair.
type Entry struct {
	Login     string
	PrivateID string
}

// Vault resolves GitHub logins to Slack mentions and masks Slack user IDs
// in log output. Read-only after construction.
type Vault struct {
	entries []Entry
}

// New builds a vault from decrypted entries. A nil or empty slice yields an
// empty vault, which resolves every login to a public profile link.
func New(entries []Entry) *Vault {
	return &Vault{entries: entries}
}

// Empty reports whether any mapping entries are loaded.
func (v *Vault) Empty() bool {
	return v == nil || len(v.entries) == 0
}

// ResolveDisplay returns the Slack mention token for login if a mapping
// entry exists, otherwise a public GitHub profile hyperlink.
func (v *Vault) ResolveDisplay(login string) string {
	if v != nil {
		for _, e := range v.entries {
			if e.Login == login {
				return fmt.Sprintf("<@%s>", e.PrivateID)
			}
		}
	}
	return ProfileLink(login)
}

// MaskForLogging replaces every Slack mention token with its public profile
// link form so private user IDs never reach logs. With no mapping loaded the
// fixed sentinel is returned instead of the original text.
func (v *Vault) MaskForLogging(text string) string {
	if v.Empty() {
		return MaskedSentinel
	}
	ret := text
	for _, e := range v.entries {
		ret = strings.ReplaceAll(ret, fmt.Sprintf("<@%s>", e.PrivateID), ProfileLink(e.Login))
	}
	return ret
}

// ProfileLink renders the public Slack-markup hyperlink for a GitHub login.
func ProfileLink(login string) string {
	return fmt.Sprintf("<https://github.com/%s|@%s>", login, login)
}

// GenerateKey returns a new random key, url-safe base64 encoded.
func GenerateKey() (string, error) {
	raw := make([]byte, keyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

func decodeKey(key string) (cipher.AEAD, error) {
	if key == "" {
		return nil, fmt.Errorf("no key provided")
	}
	raw, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(key, "="))
	if err != nil {
		return nil, fmt.Errorf("key is not valid base64: %w", err)
	}
	if len(raw) != keyBytes {
		return nil, fmt.Errorf("key must be %d bytes, got %d", keyBytes, len(raw))
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt encrypts every value of the mapping independently under key.
// Keys of the mapping (the public logins) stay in the clear.
func Encrypt(mapping map[string]string, key string) (map[string]string, error) {
	aead, err := decodeKey(key)
	if err != nil {
		return nil, &DecryptionError{Err: err}
	}
	encrypted := make(map[string]string, len(mapping))
	for login, privateID := range mapping {
		nonce := make([]byte, aead.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("failed to generate nonce: %w", err)
		}
		sealed := aead.Seal(nonce, nonce, []byte(privateID), nil)
		encrypted[login] = base64.StdEncoding.EncodeToString(sealed)
	}
	return encrypted, nil
}

// Decrypt decrypts an encrypted mapping into an ordered entry list.
// Entries are sorted by login so runs are deterministic regardless of map
// iteration order.
func Decrypt(mapping map[string]string, key string) ([]Entry, error) {
	aead, err := decodeKey(key)
	if err != nil {
		return nil, &DecryptionError{Err: err}
	}
	entries := make([]Entry, 0, len(mapping))
	for login, ciphertext := range mapping {
		sealed, err := base64.StdEncoding.DecodeString(ciphertext)
		if err != nil {
			return nil, &DecryptionError{Login: login, Err: err}
		}
		if len(sealed) < aead.NonceSize() {
			return nil, &DecryptionError{Login: login, Err: fmt.Errorf("ciphertext too short")}
		}
		nonce, sealed := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
		plain, err := aead.Open(nil, nonce, sealed, nil)
		if err != nil {
			return nil, &DecryptionError{Login: login, Err: err}
		}
		entries = append(entries, Entry{Login: login, PrivateID: string(plain)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Login < entries[j].Login })
	return entries, nil
}

// LoadFile reads a YAML file of login -> ciphertext and decrypts it into a
// ready-to-use vault.
func LoadFile(path, key string) (*Vault, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity store: %w", err)
	}
	var mapping map[string]string
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse identity store: %w", err)
	}
	entries, err := Decrypt(mapping, key)
	if err != nil {
		return nil, err
	}
	return New(entries), nil
}

// ReadPlainFile reads a plaintext YAML mapping (login -> private ID).
// Used by the vault encrypt subcommand.
func ReadPlainFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	var mapping map[string]string
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file: %w", err)
	}
	return mapping, nil
}

// WriteMappingFile writes a mapping as YAML with 0600 permissions.
func WriteMappingFile(path string, mapping map[string]string) error {
	data, err := yaml.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
