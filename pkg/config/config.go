package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
// Se construye una sola vez al arrancar y se pasa por referencia; nadie la muta después.
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	JWT     JWTConfig
	Sheets  SheetsConfig
	Google  GoogleConfig
	QR      QRConfig
	History HistoryConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	BaseURL  string // base de los enlaces profundos de los QR
	Timezone string
	LogLevel string
}

// IsProduction indica si se corre en producción (cookies Secure, logs JSON).
func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// Location resuelve la zona horaria de las marcas de tiempo del histórico.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// SheetsConfig ubicación de las hojas y de los endpoints de Google Sheets.
type SheetsConfig struct {
	InventoryURL   string
	HistoryURL     string
	UsersURL       string
	UsernameColumn string
	PasswordColumn string
	CodePrefix     string
	ReadTimeout    time.Duration
	ExportBaseURL  string
	APIBaseURL     string
}

// GoogleConfig origen del token OAuth (JSON en env o archivos locales).
type GoogleConfig struct {
	TokenJSON  string
	TokenFiles []string
}

// QRConfig destino de las imágenes QR.
type QRConfig struct {
	Driver         string // drive | s3 | none
	ParentFolderID string
	FolderName     string
	DriveBaseURL   string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3PathStyle    bool
}

// HistoryConfig destino del histórico de movimientos.
type HistoryConfig struct {
	Driver      string // sheet | postgres | sqlite
	DatabaseURL string
	SQLitePath  string
}

const defaultTokenFiles = "app/static/Credenciales/token.json,app/templates/llavesAcceso/token.json,token.json"

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, JWT_SECRET, INVENTORY_SHEET_URL, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "inventario-sheets"),
			BaseURL:  strings.TrimRight(getString(v, "BASE_URL", "http://localhost:8080"), "/"),
			Timezone: getString(v, "APP_TIMEZONE", "America/Bogota"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 1440),
			Issuer:     getString(v, "JWT_ISSUER", "inventario-sheets"),
		},
		Sheets: SheetsConfig{
			InventoryURL:   getString(v, "INVENTORY_SHEET_URL", ""),
			HistoryURL:     getString(v, "HISTORY_SHEET_URL", ""),
			UsersURL:       getString(v, "USERS_SHEET_URL", ""),
			UsernameColumn: getString(v, "USERS_COLUMN_USERNAME", "User"),
			PasswordColumn: getString(v, "USERS_COLUMN_PASSWORD", "pass"),
			CodePrefix:     getString(v, "INVENTORY_CODE_PREFIX", "RMEC"),
			ReadTimeout:    time.Duration(getInt(v, "SHEETS_READ_TIMEOUT_SECONDS", 10)) * time.Second,
			ExportBaseURL:  strings.TrimRight(getString(v, "SHEETS_EXPORT_BASE_URL", "https://docs.google.com"), "/"),
			APIBaseURL:     strings.TrimRight(getString(v, "SHEETS_API_BASE_URL", "https://sheets.googleapis.com"), "/"),
		},
		Google: GoogleConfig{
			TokenJSON:  getString(v, "GOOGLE_TOKEN_JSON", ""),
			TokenFiles: splitList(getString(v, "GOOGLE_TOKEN_FILES", defaultTokenFiles)),
		},
		QR: QRConfig{
			Driver:         strings.ToLower(getString(v, "QR_DRIVER", "drive")),
			ParentFolderID: getString(v, "QR_PARENT_FOLDER_ID", ""),
			FolderName:     getString(v, "QR_FOLDER_NAME", "QR"),
			DriveBaseURL:   strings.TrimRight(getString(v, "DRIVE_API_BASE_URL", "https://www.googleapis.com"), "/"),
			S3Bucket:       getString(v, "QR_S3_BUCKET", ""),
			S3Region:       getString(v, "QR_S3_REGION", "us-east-1"),
			S3Endpoint:     getString(v, "QR_S3_ENDPOINT", ""),
			S3PathStyle:    getBool(v, "QR_S3_PATH_STYLE", false),
		},
		History: HistoryConfig{
			Driver:      strings.ToLower(getString(v, "HISTORY_DRIVER", "sheet")),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			SQLitePath:  getString(v, "SQLITE_PATH", "inventario-history.db"),
		},
	}

	return cfg, nil
}

// Validate reporta las claves obligatorias para el servidor y drivers desconocidos.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET es obligatorio"))
	}
	if c.Sheets.InventoryURL == "" {
		errs = append(errs, errors.New("INVENTORY_SHEET_URL es obligatorio"))
	}
	switch c.QR.Driver {
	case "drive", "none":
	case "s3":
		if c.QR.S3Bucket == "" {
			errs = append(errs, errors.New("QR_S3_BUCKET es obligatorio con QR_DRIVER=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("QR_DRIVER desconocido: %q", c.QR.Driver))
	}
	switch c.History.Driver {
	case "sheet":
	case "postgres":
		if c.History.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL es obligatorio con HISTORY_DRIVER=postgres"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("HISTORY_DRIVER desconocido: %q", c.History.Driver))
	}
	return errors.Join(errs...)
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
