package config

import (
	"fmt"
	"os"

	"github.com/raystack/salt/config"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	DefaultFilename      = "skiff"
	DefaultFileExtension = "yaml"
	DefaultEnvPrefix     = "SKIFF"
	EmptyPath            = ""
)

var (
	FS       = afero.NewReadOnlyFs(afero.NewOsFs())
	currPath string
)

func init() {
	p, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	currPath = p
}

// LoadPipelineConfig loads the pipeline config from these locations:
// 1. filepath. ./skiff <command> -c "path/to/skiff.yaml"
// 2. current dir. skiff will look at current directory if there's skiff.yaml there, use it
// Values can be overridden with SKIFF_* environment variables.
func LoadPipelineConfig(filePath string) (*Pipeline, error) {
	cfg := &Pipeline{}

	v := viper.New()
	v.SetFs(FS)

	opts := []config.LoaderOption{
		config.WithViper(v),
		config.WithName(DefaultFilename),
		config.WithType(DefaultFileExtension),
		config.WithEnvPrefix(DefaultEnvPrefix),
		config.WithEnvKeyReplacer(".", "_"),
	}

	// load opt from filepath if exist
	if filePath != EmptyPath {
		if err := validateFilepath(FS, filePath); err != nil {
			return nil, err // if filepath not valid, returns err
		}
		opts = append(opts, config.WithFile(filePath))
	} else {
		// load opt from current directory
		opts = append(opts, config.WithPath(currPath))
	}

	// load the config
	l := config.NewLoader(opts...)
	if err := l.Load(cfg); err != nil {
		return nil, err
	}

	// the host is a deploy-time secret pair with the token, the env wins
	// over whatever the file carries
	if hostFromEnv := os.Getenv(HostEnvName); hostFromEnv != "" {
		cfg.Host = hostFromEnv
	}

	return cfg, nil
}

func validateFilepath(fs afero.Fs, fpath string) error {
	f, err := fs.Stat(fpath)
	if err != nil {
		return err
	}
	if !f.Mode().IsRegular() {
		return fmt.Errorf("%s not a file", fpath)
	}
	return nil
}
