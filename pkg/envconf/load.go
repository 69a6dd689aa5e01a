package envconf

import (
	"encoding"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

var (
	ErrMissingRequired    = errors.New("missing required environment variable")
	ErrUnsupportedType    = errors.New("unsupported field type")
	ErrInvalidDestination = errors.New("destination must be a non-nil pointer to a struct")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Validator is implemented by config structs that check their own values once
// every field has been loaded. Nested structs are validated before their
// parent.
type Validator interface {
	Validate() error
}

var (
	durationType  = reflect.TypeFor[time.Duration]()
	unmarshalType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Load fills the exported fields of the struct pointed to by dst from the
// environment. A field tagged `env:"NAME"` is read from $NAME, falling back to
// its `default:"..."` tag; a field with neither is ErrMissingRequired.
// Untagged struct and pointer-to-struct fields are loaded recursively, and
// errors name the dotted field path, e.g. "StudyGuide.Timeout".
func Load(dst any) error {
	v := reflect.ValueOf(dst)
	if dst == nil || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrInvalidDestination
	}

	return loadStruct(v.Elem(), "")
}

func loadStruct(v reflect.Value, path string) error {
	t := v.Type()

	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		fieldPath := sf.Name
		if path != "" {
			fieldPath = path + "." + sf.Name
		}

		err := loadField(v.Field(i), sf, fieldPath)
		if err != nil {
			return err
		}
	}

	return validate(v, path)
}

func loadField(fv reflect.Value, sf reflect.StructField, path string) error {
	name := sf.Tag.Get("env")
	if name == "" || name == "-" {
		return loadNested(fv, path)
	}

	raw, ok := os.LookupEnv(name)
	if !ok {
		def, hasDefault := sf.Tag.Lookup("default")
		if !hasDefault {
			return fmt.Errorf("%w: %s (%s)", ErrMissingRequired, name, path)
		}

		// An empty default keeps the zero value.
		if def == "" {
			return nil
		}

		raw = def
	}

	err := setValue(fv, raw)
	if err != nil {
		return fmt.Errorf("%s from %s=%q: %w", path, name, raw, err)
	}

	return nil
}

// loadNested recurses into untagged structs. Other untagged fields are left
// alone.
func loadNested(fv reflect.Value, path string) error {
	switch {
	case fv.Kind() == reflect.Struct && fv.Type() != durationType:
		return loadStruct(fv, path)
	case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.Struct:
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}

		return loadStruct(fv.Elem(), path)
	default:
		return nil
	}
}

func validate(v reflect.Value, path string) error {
	if !v.CanAddr() {
		return nil
	}

	val, ok := v.Addr().Interface().(Validator)
	if !ok {
		return nil
	}

	err := val.Validate()
	if err == nil {
		return nil
	}

	if path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
}

//nolint:cyclop
func setValue(fv reflect.Value, raw string) error {
	if !fv.CanSet() {
		return fmt.Errorf("field not settable: %w", ErrUnsupportedType)
	}

	if reflect.PointerTo(fv.Type()).Implements(unmarshalType) {
		u, _ := fv.Addr().Interface().(encoding.TextUnmarshaler)

		err := u.UnmarshalText([]byte(raw))
		if err != nil {
			return fmt.Errorf("unmarshal text: %w", err)
		}

		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse bool: %w", err)
		}

		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setInt(fv, raw)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("parse uint: %w", err)
		}

		fv.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("parse float: %w", err)
		}

		fv.SetFloat(f)
	case reflect.Pointer:
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}

		return setValue(fv.Elem(), raw)
	default:
		return fmt.Errorf("%s: %w", fv.Type(), ErrUnsupportedType)
	}

	return nil
}

// setInt parses raw into an integer field; time.Duration fields take Go
// duration syntax ("250ms", "5m").
func setInt(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("parse duration: %w", err)
		}

		fv.SetInt(int64(d))

		return nil
	}

	i, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
	if err != nil {
		return fmt.Errorf("parse int: %w", err)
	}

	fv.SetInt(i)

	return nil
}
