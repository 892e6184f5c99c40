// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package auth

import (
	"crypto/sha512"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashAlgorithm is one link in a password hash chain.
type HashAlgorithm func([]byte) []byte

// DefaultHashChain is the chain applied to passwords at seed time and at
// login. The two call sites must always use the same ordered chain or
// every login fails, so both take it from here.
var DefaultHashChain = []HashAlgorithm{SHA512, SHA3512, BLAKE2b512}

// RotateHash applies the ordered hash chain to secret, terminating with a
// byte-normalizing step. Pure and deterministic: equal inputs with equal
// chains always produce equal output.
func RotateHash(secret []byte, algorithms ...HashAlgorithm) []byte {
	algorithms = append(algorithms, normalizeBytes)
	for _, algorithm := range algorithms {
		secret = algorithm(secret)
	}
	return secret
}

// SHA512 hashes with SHA-512.
func SHA512(b []byte) []byte {
	sum := sha512.Sum512(b)
	return sum[:]
}

// SHA3512 hashes with SHA3-512.
func SHA3512(b []byte) []byte {
	sum := sha3.Sum512(b)
	return sum[:]
}

// BLAKE2b512 hashes with BLAKE2b-512.
func BLAKE2b512(b []byte) []byte {
	sum := blake2b.Sum512(b)
	return sum[:]
}

// normalizeBytes is the terminal chain step. It returns a defensive copy
// so later chain links cannot alias the caller's secret buffer.
func normalizeBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
