package config

import (
	"os"
	"strings"
)

type Environment struct {
	Name          string
	IsDevelopment bool
}

// LoadEnvironment reads APP_ENV. Anything other than "production"/"prod" is development.
func LoadEnvironment() Environment {
	name := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	if name == "" {
		name = "development"
	}
	isDev := name != "production" && name != "prod"
	return Environment{
		Name:          name,
		IsDevelopment: isDev,
	}
}

// LoggerMode is the mode string handed to logger.New.
func (e Environment) LoggerMode() string {
	if e.IsDevelopment {
		return "development"
	}
	return "production"
}
