package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	LogsDirName       = "session_logs"
	AppLogName        = "app.log"
)

type Configuration struct {
	configFs afero.Fs

	// Prompt is the text appended to the working directory in the prompt.
	Prompt string `json:"prompt" validate:"required"`

	// TimeoutSeconds is the wall-clock limit on one foreground command.
	TimeoutSeconds int `json:"timeout_seconds" validate:"gt=0"`

	// MaxTokens bounds the number of tokens accepted on one command line.
	MaxTokens int `json:"max_tokens" validate:"gt=0"`

	// MaxStages bounds the number of stages in one pipeline.
	MaxStages int `json:"max_stages" validate:"gt=0"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Timeout returns the foreground timeout as a duration.
func (c *Configuration) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// CreateSessionLog creates a session log with the given name.
func (c *Configuration) CreateSessionLog(name string) (afero.File, error) {
	if err := c.fs().MkdirAll(LogsDirName, 0700); err != nil {
		return nil, err
	}
	return c.fs().Create(filepath.Join(LogsDirName, name))
}

// SessionLogNames lists the recorded session logs, oldest first.
func (c *Configuration) SessionLogNames() ([]string, error) {
	infos, err := afero.ReadDir(c.fs(), LogsDirName)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, fi := range infos {
		if !fi.IsDir() {
			out = append(out, fi.Name())
		}
	}
	return out, nil
}

// OpenSessionLog opens a recorded session log for reading.
func (c *Configuration) OpenSessionLog(name string) (afero.File, error) {
	return c.fs().Open(filepath.Join(LogsDirName, name))
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
