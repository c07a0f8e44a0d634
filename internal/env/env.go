package env

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var v = newViper()

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()
	return vp
}

// LoadEnv loads the given dotenv files into the process environment. A
// missing file is not an error, real deployments inject env vars directly.
func LoadEnv(filenames ...string) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	for _, f := range filenames {
		if err := godotenv.Load(f); err != nil {
			log.Printf("env: skip loading %s: %v", f, err)
		}
	}
}

func GetString(key, fallback string) string {
	if !v.IsSet(key) {
		return fallback
	}

	val := strings.TrimSpace(v.GetString(key))
	if val == "" {
		return fallback
	}
	return val
}

func GetInt(key string, fallback int) int {
	if !v.IsSet(key) || strings.TrimSpace(v.GetString(key)) == "" {
		return fallback
	}
	return v.GetInt(key)
}

func GetBool(key string, fallback bool) bool {
	if !v.IsSet(key) || strings.TrimSpace(v.GetString(key)) == "" {
		return fallback
	}
	return v.GetBool(key)
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	raw := GetString(key, "")
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// GetStrings splits a comma separated value, dropping blanks.
func GetStrings(key string, fallback []string) []string {
	raw := GetString(key, "")
	if raw == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
