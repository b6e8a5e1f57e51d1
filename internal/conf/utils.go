package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"

	"github.com/tphakala/go-audiofilters/internal/errors"
)

// ConfigFileName is the settings file name looked up in the default paths.
const ConfigFileName = "AudioFilters.yaml"

const appDirName = "audiofilters"

// GetDefaultConfigPaths returns the directories searched for the settings
// file. When one of them already holds the file only that directory is
// returned.
func GetDefaultConfigPaths(fs afero.Fs) ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("configuration").
			Category(errors.CategorySystem).
			Context("operation", "get_home_directory").
			Build()
	}

	var configPaths []string
	switch runtime.GOOS {
	case "windows":
		exePath, err := os.Executable()
		if err != nil {
			return nil, errors.New(err).
				Component("configuration").
				Category(errors.CategorySystem).
				Context("operation", "get_executable_path").
				Build()
		}
		configPaths = []string{
			filepath.Dir(exePath),
			filepath.Join(homeDir, "AppData", "Roaming", appDirName),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", appDirName),
			"/etc/" + appDirName,
		}
	}

	for _, path := range configPaths {
		if ok, _ := afero.Exists(fs, filepath.Join(path, ConfigFileName)); ok {
			return []string{path}, nil
		}
	}
	return configPaths, nil
}

// DefaultConfigFile returns the settings file to use when none is given:
// an existing file in the default paths, otherwise the first default path.
func DefaultConfigFile(fs afero.Fs) (string, error) {
	paths, err := GetDefaultConfigPaths(fs)
	if err != nil {
		return "", err
	}
	return filepath.Join(paths[0], ConfigFileName), nil
}
