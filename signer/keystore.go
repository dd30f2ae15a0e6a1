package signer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
)

// KeyMetadata is a local validator key record: name, compressed pubkey,
// derived address, and creation time. The private key material is stored
// alongside it here instead of behind a remote KMS call, since this
// keystore has no KMS to call.
type KeyMetadata struct {
	Name       string    `json:"name"`
	PubKey     []byte    `json:"pub_key"`
	PrivKey    []byte    `json:"priv_key"`
	EthAddress string    `json:"eth_address"`
	CreatedAt  time.Time `json:"created_at"`
}

// KeystoreConfig points a Keystore at its backing file.
type KeystoreConfig struct {
	Path string
}

// storeData is the on-disk shape of a Keystore file.
type storeData struct {
	Version int                     `json:"version"`
	Keys    map[string]*KeyMetadata `json:"keys"`
}

// Keystore is a local, file-backed store of validator secp256k1 keypairs.
// It is not a production secrets manager: it exists so bridgectl and tests
// can generate and use validator keys without a remote signing service.
type Keystore struct {
	path string
	data storeData
}

// OpenKeystore loads (or initializes) the keystore file at cfg.Path.
func OpenKeystore(cfg KeystoreConfig) (*Keystore, error) {
	ks := &Keystore{path: cfg.Path, data: storeData{Version: 1, Keys: map[string]*KeyMetadata{}}}

	raw, err := os.ReadFile(cfg.Path)
	if os.IsNotExist(err) {
		return ks, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}
	if err := json.Unmarshal(raw, &ks.data); err != nil {
		return nil, fmt.Errorf("parse keystore: %w", err)
	}
	return ks, nil
}

func (ks *Keystore) save() error {
	raw, err := json.MarshalIndent(ks.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keystore: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(ks.path), 0o700); err != nil {
		return fmt.Errorf("create keystore dir: %w", err)
	}
	return os.WriteFile(ks.path, raw, 0o600)
}

// Generate creates a new keypair under name, persisting it to disk.
func (ks *Keystore) Generate(name string) (*KeyMetadata, error) {
	if _, exists := ks.data.Keys[name]; exists {
		return nil, fmt.Errorf("key %q already exists", name)
	}

	priv, pub, err := GenerateKey()
	if err != nil {
		return nil, err
	}

	meta := &KeyMetadata{
		Name:       name,
		PubKey:     SerializePublicKey(pub),
		PrivKey:    SerializePrivateKey(priv),
		EthAddress: EthAddress(pub).Hex(),
		CreatedAt:  time.Now(),
	}
	ks.data.Keys[name] = meta
	if err := ks.save(); err != nil {
		return nil, err
	}
	return meta, nil
}

// Get returns the metadata for a named key.
func (ks *Keystore) Get(name string) (*KeyMetadata, error) {
	meta, ok := ks.data.Keys[name]
	if !ok {
		return nil, fmt.Errorf("key %q not found", name)
	}
	return meta, nil
}

// List returns every key's metadata, in no particular order.
func (ks *Keystore) List() []*KeyMetadata {
	out := make([]*KeyMetadata, 0, len(ks.data.Keys))
	for _, meta := range ks.data.Keys {
		out = append(out, meta)
	}
	return out
}

// PrivateKey parses a named key's private key scalar for signing.
func (ks *Keystore) PrivateKey(name string) (*btcec.PrivateKey, error) {
	meta, err := ks.Get(name)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKey(meta.PrivKey)
}
