package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("unknown config format")

// NewDriver picks a driver by the file extension of filePath.
func NewDriver(filePath string) (Driver, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return NewYAML(filePath), nil
	case ".json":
		return NewJSON(filePath), nil
	case ".toml":
		return NewTOML(filePath), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filePath)
	}
}

type decodeFunc func(r io.Reader, cfg *Config) error

type encodeFunc func(w io.Writer, cfg Config) error

// fileDriver reads and atomically writes a config file in one format.
type fileDriver struct {
	filePath string
	decode   decodeFunc
	encode   encodeFunc
}

// Exists implements Driver.
func (f fileDriver) Exists() (bool, error) {
	return core.FileExists(f.filePath)
}

// Path implements Driver.
func (f fileDriver) Path() string {
	return f.filePath
}

// Read implements Driver. Keys missing from the file keep their defaults.
func (f fileDriver) Read() (Config, error) {
	file, err := os.Open(f.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	defer file.Close()

	cfg := DefaultConfig()
	if err := f.decode(file, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode %s: %w", f.filePath, err)
	}

	return Normalize(cfg), nil
}

// Write implements Driver.
func (f fileDriver) Write(cfg Config) error {
	filePathTmp := f.filePath + ".tmp"
	file, err := os.OpenFile(filePathTmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err := f.encode(file, cfg); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	return os.Rename(filePathTmp, f.filePath)
}

func NewYAML(filePath string) Driver {
	return fileDriver{
		filePath: filePath,
		decode: func(r io.Reader, cfg *Config) error {
			err := yaml.NewDecoder(r).Decode(cfg)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		},
		encode: func(w io.Writer, cfg Config) error {
			enc := yaml.NewEncoder(w)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func NewJSON(filePath string) Driver {
	return fileDriver{
		filePath: filePath,
		decode: func(r io.Reader, cfg *Config) error {
			return json.NewDecoder(r).Decode(cfg)
		},
		encode: func(w io.Writer, cfg Config) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}

func NewTOML(filePath string) Driver {
	return fileDriver{
		filePath: filePath,
		decode: func(r io.Reader, cfg *Config) error {
			_, err := toml.NewDecoder(r).Decode(cfg)
			return err
		},
		encode: func(w io.Writer, cfg Config) error {
			return toml.NewEncoder(w).Encode(cfg)
		},
	}
}
