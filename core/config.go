package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Conf holds the app configuration; set once by LoadConfig at startup.
var Conf *Config

type (
	serverConfig struct {
		Host               string
		Port               string
		JWTExpirationDelta time.Duration
	}

	githubConfig struct {
		Owner          string
		Repo           string
		Branch         string
		Token          string
		LessonsPath    string
		RecordingsPath string
	}

	adminConfig struct {
		// Emails allowed to log in; admin auth is an allow-list plus a
		// single shared password hash, no user database.
		Emails       []string
		PasswordHash string
	}

	Config struct {
		Env      string
		AppName  string
		Build    string
		Debug    bool
		TestMode bool
		// WorkDir anchors relative asset/config paths at the module root.
		WorkDir string

		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		// DataDir hosts the local cache, the legacy flat slots and the
		// delete-all sentinel.
		DataDir string
		// StaticSnapshotURL serves the bundled lessons.json fallback.
		StaticSnapshotURL string
		CacheTTL          time.Duration

		DefaultReminderTimes []int

		Server serverConfig
		GitHub githubConfig
		Admin  adminConfig
	}
)

func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// GitHubEnabled reports whether a remote authoritative store is configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHub.Token != "" && c.GitHub.Owner != "" && c.GitHub.Repo != ""
}

// LoadConfig reads configuration from defaults, an optional .env file and
// ENV-prefixed environment variables, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Mirpeset")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "y2bo$+57=dz&u0xh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("dataDir", "data")
	v.SetDefault("staticSnapshotURL", "")
	v.SetDefault("cacheTTL", 5*time.Minute)
	v.SetDefault("defaultReminderTimes", []int{30, 10})
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("github.branch", "main")
	v.SetDefault("github.token", "")
	v.SetDefault("github.lessonsPath", "public/data/lessons.json")
	v.SetDefault("github.recordingsPath", "public/data/recordings.json")
	v.SetDefault("admin.emails", []string{"admin@mirpeset.com"})
	v.SetDefault("admin.passwordHash", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	var testMode bool
	switch strings.ToUpper(env) {
	case "":
		env = "DEV"
	case "TEST":
		env = "TEST"
		testMode = true
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	workDir := FindWorkDir()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing defaultFromEmail")
	}

	conf := &Config{
		Env:                  env,
		WorkDir:              workDir,
		AppName:              v.GetString("appName"),
		Build:                v.GetString("build"),
		Debug:                v.GetBool("debug"),
		TestMode:             testMode,
		SecretKey:            v.GetString("secretKey"),
		FrontendBaseURL:      v.GetString("frontendBaseURL"),
		DefaultFromEmail:     *from,
		SendgridApiKey:       v.GetString("sendgridApiKey"),
		RollbarToken:         v.GetString("rollbarToken"),
		DataDir:              v.GetString("dataDir"),
		StaticSnapshotURL:    v.GetString("staticSnapshotURL"),
		CacheTTL:             v.GetDuration("cacheTTL"),
		DefaultReminderTimes: v.GetIntSlice("defaultReminderTimes"),
		Server: serverConfig{
			Host:               v.GetString("server.host"),
			Port:               v.GetString("server.port"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		GitHub: githubConfig{
			Owner:          v.GetString("github.owner"),
			Repo:           v.GetString("github.repo"),
			Branch:         v.GetString("github.branch"),
			Token:          v.GetString("github.token"),
			LessonsPath:    v.GetString("github.lessonsPath"),
			RecordingsPath: v.GetString("github.recordingsPath"),
		},
		Admin: adminConfig{
			Emails:       v.GetStringSlice("admin.emails"),
			PasswordHash: v.GetString("admin.passwordHash"),
		},
	}
	Conf = conf
	return conf, nil
}
