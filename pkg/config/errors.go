package config

import "fmt"

func errMissing(key string) error {
	return fmt.Errorf("config: %s is required", key)
}

func errInvalid(key, value string) error {
	return fmt.Errorf("config: invalid %s %q", key, value)
}
