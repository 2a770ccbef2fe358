package common

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides: SMSHOOK_WEBHOOK_SECRET overrides
// webhook.secret.
const EnvPrefix = "SMSHOOK"

// LoadWithIncludes reads base config and merges includes in order. ${VAR}
// references are expanded from the environment before parsing, matching the
// service loader.
func LoadWithIncludes(base string, includes []string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if base != "" {
		if err := readExpanded(v, base, false); err != nil {
			return nil, err
		}
	}
	for _, inc := range includes {
		if err := readExpanded(v, inc, true); err != nil {
			return nil, fmt.Errorf("include %s: %w", inc, err)
		}
	}
	return v, nil
}

func readExpanded(v *viper.Viper, path string, merge bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		ext = "yaml"
	}
	v.SetConfigType(ext)
	expanded := bytes.NewBufferString(os.ExpandEnv(string(raw)))
	if merge {
		return v.MergeConfig(expanded)
	}
	return v.ReadConfig(expanded)
}

// mergeMaps recursively merges b into a.
func mergeMaps(a, b map[string]any) map[string]any {
	for k, vb := range b {
		if ma, ok := a[k].(map[string]any); ok {
			if mb, ok2 := vb.(map[string]any); ok2 {
				a[k] = mergeMaps(ma, mb)
				continue
			}
		}
		a[k] = vb
	}
	return a
}

// ApplyProfile overlays profiles.<name> onto the config if a profile is named.
func ApplyProfile(v *viper.Viper, profile string) (*viper.Viper, error) {
	if profile == "" {
		return v, nil
	}
	prof := v.Sub("profiles")
	if prof == nil {
		return nil, fmt.Errorf("profiles not found in config")
	}
	p := prof.Sub(profile)
	if p == nil {
		return nil, fmt.Errorf("profile %s not found", profile)
	}
	merged := mergeMaps(v.AllSettings(), p.AllSettings())
	nv := viper.New()
	nv.SetEnvPrefix(EnvPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	nv.AutomaticEnv()
	if err := nv.MergeConfigMap(merged); err != nil {
		return nil, err
	}
	return nv, nil
}
