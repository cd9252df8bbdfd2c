package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DownloadTTL is how long a report download link stays valid.
const DownloadTTL = time.Hour

var ErrInvalidToken = errors.New("storage: invalid or expired download token")

type downloadClaims struct {
	Key      string `json:"key"`
	FileName string `json:"file_name"`
	jwt.RegisteredClaims
}

// Signer mints and verifies the capability tokens embedded in signed
// URLs. Possession of the URL is the only credential for a download.
type Signer struct {
	secret  []byte
	baseURL string
}

func NewSigner(secret []byte, baseURL string) *Signer {
	return &Signer{secret: secret, baseURL: baseURL}
}

// Sign returns a full download URL whose token expires after ttl.
func (s *Signer) Sign(key, fileName string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, downloadClaims{
		Key:      key,
		FileName: fileName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/files/%s", s.baseURL, signed), nil
}

// Verify checks the token and returns the blob key and download filename.
func (s *Signer) Verify(tokenString string) (key, fileName string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &downloadClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*downloadClaims)
	if !ok || claims.Key == "" {
		return "", "", ErrInvalidToken
	}
	return claims.Key, claims.FileName, nil
}
