package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// lookupEnv is swapped in tests
var lookupEnv = os.LookupEnv

// applyEnv overrides every field tagged `env:"NAME"` whose variable is set.
// Nested sections are walked recursively and all parse failures are reported together.
func applyEnv(target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("env target must be a pointer to a struct, got %T", target)
	}
	return applyEnvStruct(v.Elem(), "")
}

func applyEnvStruct(v reflect.Value, path string) error {
	var errs []error
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)
		name := sf.Name
		if path != "" {
			name = path + "." + sf.Name
		}

		if sf.Type.Kind() == reflect.Struct {
			if err := applyEnvStruct(fv, name); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		key := sf.Tag.Get("env")
		if key == "" {
			continue
		}
		raw, ok := lookupEnv(key)
		if !ok {
			continue
		}
		if err := setFromString(fv, raw); err != nil {
			errs = append(errs, fmt.Errorf("%s (%s): %w", name, key, err))
		}
	}
	return errors.Join(errs...)
}

func setFromString(fv reflect.Value, raw string) error {
	raw = strings.TrimSpace(raw)

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("expected a boolean, got %q", raw)
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", raw)
		}
		fv.SetInt(n)
	default:
		return fmt.Errorf("unsupported kind %s", fv.Kind())
	}
	return nil
}
