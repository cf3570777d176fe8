package auth

import (
	"github.com/matthewhartstonge/argon2"
)

// HashPIN gera o hash argon2 codificado do PIN de transação
func HashPIN(pin string) (string, error) {
	cfg := argon2.DefaultConfig()
	encoded, err := cfg.HashEncoded([]byte(pin))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// VerifyPIN compara o PIN informado com o hash salvo em users.transaction_pin_hash
func VerifyPIN(pin, encodedHash string) bool {
	if pin == "" || encodedHash == "" {
		return false
	}
	raw, err := argon2.Decode([]byte(encodedHash))
	if err != nil {
		return false
	}
	ok, err := raw.Verify([]byte(pin))
	if err != nil {
		return false
	}
	return ok
}
