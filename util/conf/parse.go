package conf

import (
	"path/filepath"
	"strings"

	"github.com/ghostpeony/sidecar/util/cliflags"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

type ParseOptions struct {
	// Cli is the cli.Context from urfave/cli
	Cli *cli.Context

	// CliMap is a map of cli flag names to config keys
	CliMap map[string]string

	// Defaults is a map of default values
	Defaults DefaultConfig

	// EnvPrefix is the prefix for env vars
	EnvPrefix string

	// FileName is the name of the configuration file to load
	FileName string

	// Schema is the json schema json config files are validated against
	Schema []byte

	// Log is the logger to use
	Log *zap.Logger
}

func Parse[C any](opt ParseOptions) (C, error) {
	var config C

	var log *zap.Logger
	if opt.Log != nil {
		log = opt.Log
	} else {
		log = zap.NewNop()
	}

	k := koanf.New(".")

	if opt.Defaults != nil {
		if err := k.Load(confmap.Provider(opt.Defaults, "."), nil); err != nil {
			log.Error("error loading defaults", zap.Error(err))
			return config, err
		}
	}

	transformPrefixedEnv := func(s string) string {
		return transformEnv(s, opt.EnvPrefix)
	}

	if opt.FileName != "" {
		if err := loadFile(k, opt, transformPrefixedEnv); err != nil {
			log.Error("error parsing file",
				zap.Error(err),
				zap.String("file", opt.FileName),
			)
			return config, err
		}
	}

	// unprefixed env vars are not loaded, they would pick up
	// unrelated vars such as HOST
	if opt.EnvPrefix != "" {
		if err := k.Load(env.Provider(opt.EnvPrefix, ".", transformPrefixedEnv), nil); err != nil {
			log.Error("error parsing env vars", zap.Error(err))
			return config, err
		}
	}

	if opt.Cli != nil {
		transformFlag := func(s string) string {
			if opt.CliMap != nil {
				if name, ok := opt.CliMap[s]; ok {
					return name
				}
			}

			// replace - with _
			return strings.ReplaceAll(strings.ToLower(s), "-", "_")
		}

		if err := k.Load(cliflags.Provider(opt.Cli, ".", transformFlag), nil); err != nil {
			log.Error("error parsing cli flags", zap.Error(err))
			return config, err
		}
	}

	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{Tag: "conf"}); err != nil {
		log.Error("error unmarshalling config", zap.Error(err))
		return config, err
	}

	return config, nil
}

func loadFile(k *koanf.Koanf, opt ParseOptions, transform func(string) string) error {
	provider := file.Provider(opt.FileName)

	if isDotEnv(opt.FileName) {
		return k.Load(provider, dotenv.ParserEnv(opt.EnvPrefix, ".", transform))
	}

	if opt.Schema != nil {
		data, err := provider.ReadBytes()
		if err != nil {
			return err
		}

		if err := validate(opt.FileName, opt.Schema, data); err != nil {
			return err
		}
	}

	return k.Load(provider, json.Parser())
}

func isDotEnv(name string) bool {
	return filepath.Ext(name) == ".env"
}

func transformEnv(s, prefix string) string {
	// strip the prefix, it is not part of the key
	s = strings.TrimPrefix(s, prefix)
	// allow specifying nested env vars w/ __
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}
