package configparser

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

// LoadAndParseYaml loads the YAML file into the environment and then fills
// dst (a pointer to a struct) from env vars using `env` and `default` tags.
// A missing file is not fatal: the environment alone may configure the app.
func LoadAndParseYaml(filepath string, dst any) error {
	if filepath != "" {
		if err := LoadYamlFile(filepath); err != nil && !os.IsNotExist(err) {
			if _, statErr := os.Stat(filepath); statErr == nil {
				return err
			}
		}
	}
	return ParseEnv(dst)
}

// ParseEnv fills dst from environment variables. Struct fields are resolved
// recursively; fields without an `env` tag are skipped unless they are
// nested structs.
func ParseEnv(dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("configparser: destination must be a pointer to struct, got %T", dst)
	}
	return parseStruct(v.Elem())
}

func parseStruct(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Duration(0)) {
			if _, tagged := t.Field(i).Tag.Lookup("env"); !tagged {
				if err := parseStruct(field); err != nil {
					return err
				}
				continue
			}
		}

		envName, ok := t.Field(i).Tag.Lookup("env")
		if !ok {
			continue
		}

		raw := os.Getenv(envName)
		if raw == "" {
			raw = t.Field(i).Tag.Get("default")
		}
		if raw == "" {
			continue
		}

		if err := setField(field, raw); err != nil {
			return fmt.Errorf("configparser: %s: %w", envName, err)
		}
	}
	return nil
}

func setField(field reflect.Value, raw string) error {
	// time.Duration before the generic int path
	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}
