package emu

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"beeb/emu/log"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"
)

type Config struct {
	ROM     ROMConfig     `toml:"rom"`
	General GeneralConfig `toml:"general"`

	TraceOut io.WriteCloser `toml:"-"`
}

type ROMConfig struct {
	// Paths of the default ROM images, used when the command line does
	// not name any.
	OS    string `toml:"os"`
	Paged string `toml:"paged"`
}

type GeneralConfig struct {
	ShowDisclaimer bool `toml:"show_disclaimer"`
}

var ConfigDir string = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("beeb")
	if err := configdir.MakePath(dir); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})()

const cfgFilename = "config.toml"

// LoadConfigOrDefault loads the configuration from the beeb config
// directory, or provide a default one.
func LoadConfigOrDefault() Config {
	var cfg Config
	_, err := toml.DecodeFile(filepath.Join(ConfigDir, cfgFilename), &cfg)
	if err != nil {
		return Config{
			General: GeneralConfig{ShowDisclaimer: true},
		}
	}
	return cfg
}

// SaveConfig into beeb config directory.
func SaveConfig(cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(ConfigDir, cfgFilename), buf, 0644)
}
