package snowflake

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	gosnowflake "github.com/snowflakedb/gosnowflake"
)

// buildJWTDSN re-serializes dsn with the JWT authenticator and the private
// key read from keyPath.
func buildJWTDSN(dsn, keyPath string) (string, error) {
	cfg, err := gosnowflake.ParseDSN(dsn)
	// ParseDSN insists on a password; key-pair DSNs ("user@account/db") have
	// none, so parse again with a placeholder that is cleared below.
	if err != nil && strings.Contains(err.Error(), "password is empty") {
		if user, rest, ok := strings.Cut(dsn, "@"); ok && user != "" && !strings.Contains(user, ":") {
			cfg, err = gosnowflake.ParseDSN(user + ":_@" + rest)
		}
	}
	if err != nil {
		return "", fmt.Errorf("parse DSN: %w", err)
	}

	key, err := loadPrivateKey(keyPath)
	if err != nil {
		return "", err
	}

	cfg.Password = ""
	cfg.Authenticator = gosnowflake.AuthTypeJwt
	cfg.PrivateKey = key

	out, err := gosnowflake.DSN(cfg)
	if err != nil {
		return "", fmt.Errorf("rebuild DSN: %w", err)
	}
	return out, nil
}

// loadPrivateKey reads an unencrypted PEM RSA key in PKCS#1 or PKCS#8 form.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key file %q: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %q", path)
	}

	var key any
	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("unsupported PEM block type %q (expected RSA PRIVATE KEY or PRIVATE KEY)", block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA (got %T)", key)
	}
	return rsaKey, nil
}
