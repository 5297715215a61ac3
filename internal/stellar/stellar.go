package stellar

import (
	"crypto/ed25519"
	"encoding/base32"
	"errors"
	"regexp"
)

// accountVersionByte is the strkey version byte for account IDs ('G' prefix).
const accountVersionByte byte = 6 << 3

var (
	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

	addressPattern = regexp.MustCompile(`^G[A-Z2-7]{55}$`)

	// ErrInvalidAddress is returned for any address that is not a well-formed
	// Stellar account strkey.
	ErrInvalidAddress = errors.New("invalid stellar address")
)

// IsValidAddress reports whether addr is a well-formed Stellar account address.
func IsValidAddress(addr string) bool {
	_, err := ParseAddress(addr)
	return err == nil
}

// ParseAddress decodes a Stellar account address (G + 55 base32 chars) into
// the Ed25519 public key it encodes. The strkey layout is a version byte,
// the 32 key bytes and a little-endian CRC16-XMODEM checksum.
func ParseAddress(addr string) (ed25519.PublicKey, error) {
	if !addressPattern.MatchString(addr) {
		return nil, ErrInvalidAddress
	}
	raw, err := b32.DecodeString(addr)
	if err != nil || len(raw) != 35 {
		return nil, ErrInvalidAddress
	}
	if raw[0] != accountVersionByte {
		return nil, ErrInvalidAddress
	}
	want := uint16(raw[33]) | uint16(raw[34])<<8
	if crc16(raw[:33]) != want {
		return nil, ErrInvalidAddress
	}
	return ed25519.PublicKey(raw[1:33]), nil
}

// EncodeAddress renders an Ed25519 public key as a Stellar account address.
func EncodeAddress(pub ed25519.PublicKey) string {
	raw := make([]byte, 0, 35)
	raw = append(raw, accountVersionByte)
	raw = append(raw, pub...)
	sum := crc16(raw)
	raw = append(raw, byte(sum), byte(sum>>8))
	return b32.EncodeToString(raw)
}

// Verify reports whether sig is a valid Ed25519 signature of message by the
// key encoded in addr. A malformed address, a signature of the wrong length
// and a cryptographic mismatch are all reported uniformly as false so callers
// cannot leak which check failed.
func Verify(addr string, message, sig []byte) bool {
	pub, err := ParseAddress(addr)
	if err != nil {
		return false
	}
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, message, sig)
}

// crc16 computes the CRC16-XMODEM checksum strkey uses (poly 0x1021, init 0).
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
