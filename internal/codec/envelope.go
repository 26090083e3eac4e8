package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

const (
	ivLength         = 16
	separator        = ':'
	pbkdf2Iterations = 10000
	keyLength        = 32
)

var errBadPadding = errors.New("invalid padding")

// Encrypt seals plain under passphrase with a fresh random IV.
func Encrypt(plain []byte, passphrase string) ([]byte, error) {
	iv := make([]byte, ivLength)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to generate initialization vector: %w", err)
	}
	return seal(plain, passphrase, iv, iv)
}

// Decrypt opens an envelope produced by Encrypt or by the legacy textual-salt
// scheme. Input that opens under neither is returned unchanged.
func Decrypt(data []byte, passphrase string) []byte {
	if len(data) <= ivLength+1 {
		return data
	}
	iv := data[:ivLength]
	body := data[ivLength+1:]
	if len(body)%aes.BlockSize != 0 {
		return data
	}

	for _, salt := range [][]byte{iv, legacySalt(iv)} {
		if plain, err := open(body, passphrase, iv, salt); err == nil {
			return plain
		}
	}
	return data
}

func seal(plain []byte, passphrase string, iv, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	padded := pad(plain)
	out := make([]byte, ivLength+1+len(padded))
	copy(out, iv)
	out[ivLength] = separator
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[ivLength+1:], padded)
	return out, nil
}

func open(body []byte, passphrase string, iv, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)
	return unpad(plain)
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keyLength, sha512.New)
}

// pad applies PKCS#7 padding.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%aes.BlockSize != 0 {
		return nil, errBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize {
		return nil, errBadPadding
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errBadPadding
		}
	}
	return b[:len(b)-n], nil
}

// legacySalt reproduces the textual salt of the old scheme: the IV decoded
// as UTF-8 with each maximal invalid subsequence replaced by U+FFFD.
func legacySalt(iv []byte) []byte {
	out := make([]byte, 0, len(iv)*3)
	for i := 0; i < len(iv); {
		r, size := utf8.DecodeRune(iv[i:])
		if r != utf8.RuneError || size > 1 {
			out = append(out, iv[i:i+size]...)
			i += size
			continue
		}
		out = append(out, "\uFFFD"...)
		i += invalidRun(iv[i:])
	}
	return out
}

// invalidRun returns the length of the maximal subpart of an ill-formed
// sequence starting at b[0]. It is at least 1.
func invalidRun(b []byte) int {
	lead := b[0]
	var need int
	lo, hi := byte(0x80), byte(0xBF)
	switch {
	case lead >= 0xC2 && lead <= 0xDF:
		need = 1
	case lead == 0xE0:
		need, lo = 2, 0xA0
	case lead == 0xED:
		need, hi = 2, 0x9F
	case lead >= 0xE1 && lead <= 0xEF:
		need = 2
	case lead == 0xF0:
		need, lo = 3, 0x90
	case lead == 0xF4:
		need, hi = 3, 0x8F
	case lead >= 0xF1 && lead <= 0xF3:
		need = 3
	default:
		return 1
	}

	n := 1
	for ; n <= need && n < len(b); n++ {
		c := b[n]
		if n == 1 {
			if c < lo || c > hi {
				break
			}
			continue
		}
		if c < 0x80 || c > 0xBF {
			break
		}
	}
	return n
}
