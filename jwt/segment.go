package jwt

import (
	"fmt"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var (
	segmentEncoder = &gjwt.Token{}
	segmentDecoder = gjwt.NewParser(gjwt.WithPaddingAllowed())
)

// EncodeSegment encodes b as base64url with the trailing '=' padding removed.
func EncodeSegment(b []byte) string {
	return segmentEncoder.EncodeSegment(b)
}

// DecodeSegment reverses EncodeSegment. Padding is restored to a multiple of
// four before decoding, so both padded and unpadded input are accepted.
func DecodeSegment(seg string) ([]byte, error) {
	b, err := segmentDecoder.DecodeSegment(seg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	return b, nil
}
