package entity

// User usuario leído de la hoja de usuarios. PasswordHash puede ser un hash
// (bcrypt, pbkdf2, scrypt) o texto plano heredado de la hoja.
type User struct {
	Username     string
	PasswordHash string
}
