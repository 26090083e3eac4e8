// Package codec turns documents into bytes and back.
//
// A Serializer handles the text format (JSON by default, YAML and TOML
// available). The envelope functions wrap serialized bytes with AES-256-CBC
// when the store has an encryption key:
//
//	iv (16 bytes) || ':' || ciphertext
//
// The cipher key is PBKDF2-HMAC-SHA512(passphrase, salt, 10000 rounds, 32
// bytes). Current files use the raw IV as salt; files written by older
// releases used the IV decoded as UTF-8 text, which Decrypt still accepts.
// Decrypt never fails: when neither derivation works it hands back its input
// so the serializer reports a parse error the user can act on.
package codec
