package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// setDefaults assigns every field its default tag
func setDefaults(cfg *Config) error {
	return eachTag(cfg, "default", func(tag string) (string, bool) {
		return tag, tag != ""
	})
}

// setFromEnv overrides fields whose env variable is set and not empty
func setFromEnv(cfg *Config) error {
	return eachTag(cfg, "env", func(tag string) (string, bool) {
		if tag == "" {
			return "", false
		}
		v := os.Getenv(tag)
		return v, v != ""
	})
}

// eachTag walks the leaf fields of cfg and parses into each one the value
// that resolve returns for its tag
func eachTag(cfg *Config, tag string, resolve func(string) (string, bool)) error {
	var walk func(v reflect.Value, prefix string) error
	walk = func(v reflect.Value, prefix string) error {
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f, sf := v.Field(i), t.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := prefix + sf.Name
			if f.Kind() == reflect.Struct {
				if err := walk(f, name+"."); err != nil {
					return err
				}
				continue
			}
			raw, ok := resolve(sf.Tag.Get(tag))
			if !ok {
				continue
			}
			if err := parseInto(f, raw); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		return nil
	}
	return walk(reflect.ValueOf(cfg).Elem(), "")
}

// parseInto converts raw into f. Slices are comma separated.
func parseInto(f reflect.Value, raw string) error {
	if f.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		f.SetInt(int64(d))
		return nil
	}

	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Slice:
		if f.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("cannot parse into %s", f.Type())
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		f.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("cannot parse into %s", f.Type())
	}
	return nil
}
