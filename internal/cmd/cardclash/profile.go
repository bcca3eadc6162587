package cardclash

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/louisbranch/cardclash/internal/platform/discovery"
)

// Community source kinds.
const (
	SourceStatic = "static"
	SourceGitHub = "github"
	SourceRemote = "remote"
)

const profileName = ".cardclash"

// Profile is the CLI configuration read from ~/.cardclash.yaml and
// CARDCLASH_* environment overrides.
type Profile struct {
	DatastoreAddr string `mapstructure:"datastore_addr"`
	// Insecure sends session tokens over plaintext connections.
	Insecure bool   `mapstructure:"insecure"`
	Locale   string `mapstructure:"locale"`
	Session  struct {
		UserID string `mapstructure:"user_id"`
		Email  string `mapstructure:"email"`
		Token  string `mapstructure:"token"`
	} `mapstructure:"session"`
	Community struct {
		Source string `mapstructure:"source"`
		GitHub struct {
			Owner        string `mapstructure:"owner"`
			Repo         string `mapstructure:"repo"`
			Token        string `mapstructure:"token"`
			HotThreshold int    `mapstructure:"hot_threshold"`
			BaseURL      string `mapstructure:"base_url"`
		} `mapstructure:"github"`
	} `mapstructure:"community"`
}

func setProfileDefaults(v *viper.Viper) {
	v.SetDefault("datastore_addr", discovery.LocalGRPCAddr(discovery.ServiceDatastore))
	v.SetDefault("insecure", true)
	v.SetDefault("locale", "en-US")
	v.SetDefault("session.user_id", "")
	v.SetDefault("session.email", "")
	v.SetDefault("session.token", "")
	v.SetDefault("community.source", SourceStatic)
	v.SetDefault("community.github.owner", "")
	v.SetDefault("community.github.repo", "")
	v.SetDefault("community.github.token", "")
	v.SetDefault("community.github.hot_threshold", 10)
	v.SetDefault("community.github.base_url", "")
}

// LoadProfile reads the profile at path, or ~/.cardclash.yaml when path is
// empty. A missing default profile is not an error.
func LoadProfile(v *viper.Viper, path string) (Profile, error) {
	if v == nil {
		v = viper.New()
	}
	setProfileDefaults(v)
	v.SetEnvPrefix("CARDCLASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(profileName)
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Profile{}, fmt.Errorf("read profile: %w", err)
		}
	}

	var profile Profile
	if err := v.Unmarshal(&profile); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	profile.Community.Source = strings.ToLower(strings.TrimSpace(profile.Community.Source))
	switch profile.Community.Source {
	case SourceStatic, SourceGitHub, SourceRemote:
	default:
		return Profile{}, fmt.Errorf("unknown community source %q", profile.Community.Source)
	}
	return profile, nil
}

// DefaultProfilePath is where the CLI looks for its profile.
func DefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return profileName + ".yaml"
	}
	return filepath.Join(home, profileName+".yaml")
}
