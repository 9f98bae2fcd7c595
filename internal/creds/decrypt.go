package creds

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"fmt"

	syncerrors "github.com/virtualxperience/n8nsync/internal/errors"
	"github.com/virtualxperience/n8nsync/internal/record"
)

// n8n encrypts credential data CryptoJS-style: base64 of the OpenSSL salted
// container ("Salted__" + 8-byte salt + AES-256-CBC ciphertext), with key and
// IV derived from the instance's encryption key via EVP_BytesToKey over MD5.
const (
	opensslMagic = "Salted__"
	keyLen       = 32
	ivLen        = 16
)

// PlainCredential is a credential with its data blob decrypted, in the shape
// the public API accepts for import.
type PlainCredential struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	IsManaged bool            `json:"isManaged"`
	CreatedAt string          `json:"createdAt,omitempty"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
}

// DecryptBlob decrypts one encrypted credential data blob using the
// instance's encryption key.
func DecryptBlob(blob, encryptionKey string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", syncerrors.ErrInvalidBlob, err)
	}
	if len(raw) < len(opensslMagic)+8 || !bytes.HasPrefix(raw, []byte(opensslMagic)) {
		return nil, fmt.Errorf("%w: missing OpenSSL magic", syncerrors.ErrInvalidBlob)
	}

	salt := raw[8:16]
	ciphertext := raw[16:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a whole number of blocks",
			syncerrors.ErrInvalidBlob, len(ciphertext))
	}

	key, iv := evpBytesToKey([]byte(encryptionKey), salt, keyLen, ivLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", syncerrors.ErrDecryptFailed, err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext)
}

// DecryptRecord decrypts a credential record's data field. A data field that
// is already a JSON object is passed through unchanged, so re-running decrypt
// on its own output is harmless.
func DecryptRecord(rec record.Record, encryptionKey string) (PlainCredential, error) {
	var body struct {
		Name      string          `json:"name"`
		Type      string          `json:"type"`
		Data      json.RawMessage `json:"data"`
		IsManaged bool            `json:"isManaged"`
		CreatedAt string          `json:"createdAt"`
		UpdatedAt string          `json:"updatedAt"`
	}
	if err := json.Unmarshal(rec.Payload, &body); err != nil {
		return PlainCredential{}, fmt.Errorf("%w: %v", syncerrors.ErrMalformedRecord, err)
	}

	out := PlainCredential{
		ID:        rec.ID,
		Name:      body.Name,
		Type:      body.Type,
		IsManaged: body.IsManaged,
		CreatedAt: body.CreatedAt,
		UpdatedAt: body.UpdatedAt,
	}

	var blob string
	if err := json.Unmarshal(body.Data, &blob); err != nil {
		// Already an object: nothing to decrypt.
		out.Data = body.Data
		return out, nil
	}

	plaintext, err := DecryptBlob(blob, encryptionKey)
	if err != nil {
		return PlainCredential{}, err
	}
	if !json.Valid(plaintext) {
		return PlainCredential{}, fmt.Errorf("%w: decrypted data is not valid JSON (wrong encryption key?)",
			syncerrors.ErrDecryptFailed)
	}
	out.Data = plaintext
	return out, nil
}

// evpBytesToKey derives the key and IV the way OpenSSL's EVP_BytesToKey does
// with MD5 and one iteration: chained digests of (previous || password ||
// salt) until enough bytes accumulate.
func evpBytesToKey(password, salt []byte, keyLen, ivLen int) (key, iv []byte) {
	var derived, d []byte
	for len(derived) < keyLen+ivLen {
		h := md5.New()
		h.Write(d)
		h.Write(password)
		h.Write(salt)
		d = h.Sum(nil)
		derived = append(derived, d...)
	}
	return derived[:keyLen], derived[keyLen : keyLen+ivLen]
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", syncerrors.ErrDecryptFailed)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", syncerrors.ErrDecryptFailed)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", syncerrors.ErrDecryptFailed)
		}
	}
	return data[:len(data)-n], nil
}
