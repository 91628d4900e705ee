// Package config resolves Ayoo settings from, lowest precedence first:
// built-in defaults, config/app.json, .env and the process environment.
// Keys are upper-cased; blank values count as unset.
package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaults()
)

// Load reads config/app.json and .env once. Every accessor calls it, so
// explicit calls only matter for surfacing a malformed file at startup.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func loadFromFiles(jsonPath, envPath string) error {
	merged := defaults()
	for _, layer := range []func(map[string]string) error{
		optional(jsonPath, readJSON),
		optional(envPath, readDotEnv),
		readProcessEnv,
	} {
		if err := layer(merged); err != nil {
			return err
		}
	}

	mu.Lock()
	values = merged
	mu.Unlock()
	return nil
}

// optional adapts a file reader into a layer that skips a missing file.
func optional(path string, read func(*os.File, map[string]string) error) func(map[string]string) error {
	return func(into map[string]string) error {
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		defer f.Close()
		if err := read(f, into); err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
		return nil
	}
}

// readJSON takes a flat object; strings, booleans and numbers are kept,
// nested values are ignored.
func readJSON(f *os.File, into map[string]string) error {
	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}
	for key, val := range raw {
		k := normKey(key)
		if k == "" {
			continue
		}
		switch v := val.(type) {
		case string:
			into[k] = strings.TrimSpace(v)
		case bool:
			into[k] = strconv.FormatBool(v)
		case float64:
			into[k] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return nil
}

// readDotEnv accepts KEY=value lines, an optional "export " prefix, quoted
// values and trailing " #" comments on unquoted values.
func readDotEnv(f *os.File, into map[string]string) error {
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, val, ok := strings.Cut(line, "=")
		if k := normKey(key); ok && k != "" {
			into[k] = dotEnvValue(strings.TrimSpace(val))
			continue
		}
		return fmt.Errorf("line %d: want KEY=value", n)
	}
	return sc.Err()
}

func dotEnvValue(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}

func readProcessEnv(into map[string]string) error {
	for _, kv := range os.Environ() {
		if key, val, ok := strings.Cut(kv, "="); ok && key != "" {
			into[normKey(key)] = val
		}
	}
	return nil
}

func normKey(k string) string { return strings.ToUpper(strings.TrimSpace(k)) }

func get(key, fallback string) string {
	mu.RLock()
	v := strings.TrimSpace(values[key])
	mu.RUnlock()
	if v == "" {
		return fallback
	}
	return v
}

// Get reads any key, returning fallback when it is unset.
func Get(key, fallback string) string {
	_ = Load()
	return get(normKey(key), fallback)
}

// Int reads an integer key, returning fallback when absent or malformed.
func Int(key string, fallback int) int {
	n, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

// Bool reads a boolean key ("true", "1", "false", "0"...).
func Bool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(Get(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

// Duration reads a Go duration such as "5s" or "1m30s". Non-positive
// values fall back.
func Duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(Get(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// List splits a comma separated key, dropping blank entries. An unset key
// yields nil.
func List(key string) []string {
	var out []string
	for _, s := range strings.Split(Get(key, ""), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Set overrides a key at runtime; an empty value restores the default.
// Tests use it to flip switches.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[normKey(key)] = value
	mu.Unlock()
}
