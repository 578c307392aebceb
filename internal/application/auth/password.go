package auth

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// Iteraciones que usa werkzeug cuando el método no las indica.
const defaultPBKDF2Iterations = 260000

// HashPassword genera el hash bcrypt que se guarda en la hoja de usuarios.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword compara la contraseña ingresada con el valor de la hoja.
// Soporta bcrypt, hashes de werkzeug (pbkdf2 y scrypt) y texto plano; en texto
// plano se tolera espacio sobrante en los extremos.
func VerifyPassword(stored, given string) bool {
	switch {
	case stored == "":
		return false
	case strings.HasPrefix(stored, "$2a$"), strings.HasPrefix(stored, "$2b$"), strings.HasPrefix(stored, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	case strings.HasPrefix(stored, "pbkdf2:"), strings.HasPrefix(stored, "scrypt:"):
		return verifyWerkzeug(stored, given)
	}
	if stored == given {
		return true
	}
	if strings.TrimSpace(stored) == strings.TrimSpace(given) {
		return true
	}
	return strings.TrimRight(stored, " \t\r\n") == strings.TrimRight(given, " \t\r\n")
}

// verifyWerkzeug valida "método$sal$hexhash".
func verifyWerkzeug(stored, given string) bool {
	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method, salt, want := parts[0], parts[1], parts[2]
	expected, err := hex.DecodeString(want)
	if err != nil || len(expected) == 0 {
		return false
	}
	args := strings.Split(method, ":")

	var got []byte
	switch args[0] {
	case "pbkdf2":
		name := "sha256"
		if len(args) > 1 {
			name = args[1]
		}
		iterations := defaultPBKDF2Iterations
		if len(args) > 2 {
			if iterations, err = strconv.Atoi(args[2]); err != nil || iterations <= 0 {
				return false
			}
		}
		h, ok := hashByName(name)
		if !ok {
			return false
		}
		got = pbkdf2.Key([]byte(given), []byte(salt), iterations, h().Size(), h)
	case "scrypt":
		n, r, p := 1<<15, 8, 1
		if len(args) == 4 {
			var e1, e2, e3 error
			n, e1 = strconv.Atoi(args[1])
			r, e2 = strconv.Atoi(args[2])
			p, e3 = strconv.Atoi(args[3])
			if e1 != nil || e2 != nil || e3 != nil {
				return false
			}
		}
		if got, err = scrypt.Key([]byte(given), []byte(salt), n, r, p, len(expected)); err != nil {
			return false
		}
	default:
		return false
	}
	return subtle.ConstantTimeCompare(got, expected) == 1
}

func hashByName(name string) (func() hash.Hash, bool) {
	switch name {
	case "sha256":
		return sha256.New, true
	case "sha512":
		return sha512.New, true
	case "sha1":
		return sha1.New, true
	}
	return nil, false
}
