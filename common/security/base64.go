package security

import "encoding/base64"

// EncodeToken URL-safe Base64 encodes b with padding stripped, the
// canonical encoding for every variable-length token on the wire.
// RawURLEncoding directly gives "+"→"-", "/"→"_" and no padding in one
// call — no bespoke alphabet table needed.
func EncodeToken(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeToken reverses EncodeToken. It also accepts padded input so tokens
// produced by strict URL encoders elsewhere still decode.
func DecodeToken(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}
