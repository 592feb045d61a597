package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"caltrack/internal/adapter/sheets"
)

// Config is read from flags, the environment and an optional .env file.
type Config struct {
	Port           int           `env:"PORT" default:"3000" help:"HTTP listen port."`
	Addr           string        `env:"ADDR" help:"Listen address; overrides --port when set."`
	WebDir         string        `env:"WEB_DIR" default:"web" help:"Directory holding the static client."`
	Users          string        `env:"USERS" default:"${default_roster}" help:"Roster as id=zone:goal[:unit],..."`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" default:"90s" help:"Per-request deadline."`

	LogLevel  string `env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level."`
	LogFormat string `env:"LOG_FORMAT" default:"text" enum:"text,json,logfmt" help:"Log output format."`
	LogFile   string `env:"LOG_FILE" help:"Also write logs to this rotating file."`

	VisionProvider string        `env:"VISION_PROVIDER" default:"gemini" enum:"gemini,openai" help:"Vision model provider."`
	VisionModel    string        `env:"VISION_MODEL" help:"Model name; provider default when empty."`
	GeminiAPIKey   string        `env:"GEMINI_API_KEY" help:"Gemini API key."`
	OpenAIAPIKey   string        `env:"OPENAI_API_KEY" help:"OpenAI API key."`
	AITimeout      time.Duration `env:"AI_TIMEOUT" default:"60s" help:"Vision request timeout."`
	MaxImageEdge   int           `env:"MAX_IMAGE_EDGE" default:"600" help:"Longest photo edge sent to the model, in pixels."`
	JPEGQuality    int           `env:"JPEG_QUALITY" default:"50" help:"JPEG quality of the downscaled photo."`

	Ledger       string        `env:"LEDGER" default:"auto" enum:"auto,sheets,postgres,sqlite,none" help:"Durable store behind the in-memory log."`
	WriteTimeout time.Duration `env:"LEDGER_WRITE_TIMEOUT" default:"10s" help:"Timeout for one ledger write."`

	SpreadsheetID         string        `env:"SPREADSHEET_ID,GOOGLE_SHEET_ID" help:"Google spreadsheet id."`
	LogSheet              string        `env:"LOG_SHEET" default:"Sheet1" help:"Sheet holding meal rows."`
	WeightSheet           string        `env:"WEIGHT_SHEET" default:"Sheet2" help:"Sheet holding weight rows."`
	GoogleCredentialsJSON string        `env:"GOOGLE_CREDENTIALS_JSON" help:"Service account key JSON."`
	GoogleCredentialsFile string        `env:"GOOGLE_APPLICATION_CREDENTIALS" help:"Path to a service account key file."`
	GoogleClientEmail     string        `env:"GOOGLE_SERVICE_ACCOUNT_EMAIL" help:"Service account email."`
	GooglePrivateKey      string        `env:"GOOGLE_PRIVATE_KEY" help:"Service account private key (PEM)."`
	MatchTolerance        time.Duration `env:"SHEET_MATCH_TOLERANCE" default:"2m" help:"Timestamp tolerance when deleting legacy rows."`

	DatabaseURL string `env:"DATABASE_URL" help:"PostgreSQL connection string."`
	SQLitePath  string `env:"SQLITE_PATH" help:"SQLite database file."`
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// GoogleCredentials gathers the service account settings. A key file is read
// only when no inline JSON is given.
func (c *Config) GoogleCredentials() (sheets.Credentials, error) {
	creds := sheets.Credentials{
		JSON:       []byte(strings.TrimSpace(c.GoogleCredentialsJSON)),
		Email:      strings.TrimSpace(c.GoogleClientEmail),
		PrivateKey: c.GooglePrivateKey,
	}
	if len(creds.JSON) == 0 && c.GoogleCredentialsFile != "" {
		b, err := os.ReadFile(c.GoogleCredentialsFile)
		if err != nil {
			return sheets.Credentials{}, fmt.Errorf("read credentials file: %w", err)
		}
		creds.JSON = b
	}
	return creds, nil
}
