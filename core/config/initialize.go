package config

import (
	"fmt"
	"log"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration into the directory and
// prepares the session log directory. An existing config file is left
// untouched.
func Initialize(path string, logger *log.Logger) (*Configuration, error) {
	configFs := afero.NewBasePathFs(afero.NewOsFs(), path)

	exists, err := afero.Exists(configFs, ConfigurationName)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Printf("%s already exists, leaving it as-is", ConfigurationName)
	} else {
		if err := afero.WriteFile(configFs, ConfigurationName, defaultConfigData, 0644); err != nil {
			return nil, fmt.Errorf("couldn't write %s: %w", ConfigurationName, err)
		}
		logger.Printf("created %s", ConfigurationName)
	}

	if err := configFs.MkdirAll(LogsDirName, 0700); err != nil {
		return nil, fmt.Errorf("couldn't create %s: %w", LogsDirName, err)
	}
	logger.Printf("created %s/", LogsDirName)

	return Load(path)
}
