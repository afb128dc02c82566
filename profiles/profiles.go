// Package profiles provides embedded token signing profile templates.
//
// These profiles define token issuance policies and are embedded in the
// binary for convenience. Users can also copy and customize them.
package profiles

import "embed"

// FS contains all embedded profile YAML files.
// Profiles are organized by algorithm family:
//   - rsa/    - RSASSA-PKCS1-v1_5 profiles
//   - ecdsa/  - ECDSA profiles
//   - eddsa/  - EdDSA profiles
//   - hmac/   - HMAC profiles
//
//go:embed all:rsa all:ecdsa all:eddsa all:hmac
var FS embed.FS
