package arbor

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/schema"
)

// Parameter structs bridge typed properties and the flat string->string
// query map. Fields declare their wire name with a `schema` tag, an
// optional default with a `default` tag, and mandatory-ness with
// `validate:"required"`:
//
//	type ListParams struct {
//		Archived bool   `schema:"archived" default:"false"`
//		Cursor   *string `schema:"cursor,omitempty"`
//		Limit    int32  `schema:"limit" validate:"required"`
//	}
//
// Optional properties are pointers (nil when absent); a default whose value
// differs from the Go zero value should also use a pointer field, since a
// zero value is indistinguishable from "unset" on the encode side.
//
// Supported field types are string, bool, the signed and unsigned 8/16/32/64
// bit integers (plus int/uint), float32 and float64, and pointers to these.
// Declaring any other field type is a configuration error and panics when
// the endpoint is declared.

var (
	paramDecoder = schema.NewDecoder()
	paramEncoder = schema.NewEncoder()
)

func init() {
	paramDecoder.IgnoreUnknownKeys(true)

	// The stock bool converter accepts 1/t/T/TRUE and friends; the wire
	// format is strict "true"/"false".
	paramDecoder.RegisterConverter(false, func(s string) reflect.Value {
		switch s {
		case "true":
			return reflect.ValueOf(true)
		case "false":
			return reflect.ValueOf(false)
		}
		return reflect.Value{}
	})

	// Floats always render with a fractional part so client and server
	// round-trip the same text regardless of the value being integral.
	paramEncoder.RegisterEncoder(float64(0), func(v reflect.Value) string {
		return canonicalFloat(v.Float(), 64)
	})
	paramEncoder.RegisterEncoder(float32(0), func(v reflect.Value) string {
		return canonicalFloat(v.Float(), 32)
	})
}

// canonicalFloat formats f with a guaranteed fractional part: 9 -> "9.0".
func canonicalFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eEnI") { // exponents, NaN and Inf keep their form
		s += ".0"
	}
	return s
}

// paramField is the resolved declaration of one parameter struct field.
type paramField struct {
	index      int
	name       string
	defaultVal string
	hasDefault bool
	required   bool
}

var paramFieldCache sync.Map // reflect.Type -> []paramField

var supportedParamKinds = map[reflect.Kind]bool{
	reflect.String: true, reflect.Bool: true,
	reflect.Int: true, reflect.Int8: true, reflect.Int16: true, reflect.Int32: true, reflect.Int64: true,
	reflect.Uint: true, reflect.Uint8: true, reflect.Uint16: true, reflect.Uint32: true, reflect.Uint64: true,
	reflect.Float32: true, reflect.Float64: true,
}

// checkParamStruct validates a parameter type at endpoint declaration time.
// Unsupported declarations are configuration errors, surfaced immediately.
func checkParamStruct(t reflect.Type) {
	if t == nil || t.Kind() != reflect.Struct {
		panic("arbor: parameter type must be a struct (use None for no parameters)")
	}
	fields := make([]paramField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := fieldWireName(f)
		if name == "-" {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if !supportedParamKinds[ft.Kind()] {
			panic("arbor: unsupported parameter type " + f.Type.String() + " for field " + f.Name)
		}
		defaultVal, hasDefault := f.Tag.Lookup("default")
		fields = append(fields, paramField{
			index:      i,
			name:       name,
			defaultVal: defaultVal,
			hasDefault: hasDefault,
			required:   hasValidateToken(f, "required"),
		})
	}
	paramFieldCache.Store(t, fields)
}

func fieldWireName(f reflect.StructField) string {
	tag := f.Tag.Get("schema")
	if tag == "" {
		return f.Name
	}
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "" {
		return f.Name
	}
	return tag
}

func hasValidateToken(f reflect.StructField, token string) bool {
	for _, part := range strings.Split(f.Tag.Get("validate"), ",") {
		if part == token {
			return true
		}
	}
	return false
}

func paramFields(t reflect.Type) []paramField {
	if cached, ok := paramFieldCache.Load(t); ok {
		return cached.([]paramField)
	}
	// Types reach here without declaration only in direct codec use.
	checkParamStruct(t)
	cached, _ := paramFieldCache.Load(t)
	return cached.([]paramField)
}

// decodeParams reconstructs a typed parameter struct from query values.
// A mandatory field with no value and no default yields a
// missing_parameter error; a value that fails to parse yields
// invalid_argument. The two are distinct conditions.
func decodeParams(dst any, values url.Values) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		panic("arbor: decodeParams requires a pointer to a parameter struct")
	}
	t := v.Elem().Type()

	// Materialize defaults and check requiredness before handing the map
	// to the decoder, so "missing" is never misreported as "malformed".
	filled := values
	copied := false
	for _, f := range paramFields(t) {
		if values.Has(f.name) {
			continue
		}
		if f.hasDefault {
			if !copied {
				filled = cloneValues(values)
				copied = true
			}
			filled.Set(f.name, f.defaultVal)
			continue
		}
		if f.required {
			return Errorf(CodeMissingParameter, "missing mandatory parameter %q", f.name)
		}
	}

	if err := paramDecoder.Decode(dst, filled); err != nil {
		return Errorf(CodeInvalidArgument, "malformed query parameters: %v", err)
	}
	return nil
}

// encodeParams flattens a typed parameter struct into query values.
// Unset fields with a default are sent as that default; nil optional
// fields tagged omitempty are left out entirely.
func encodeParams(src any) (url.Values, error) {
	v := reflect.ValueOf(src)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return url.Values{}, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		panic("arbor: encodeParams requires a parameter struct")
	}

	values := url.Values{}
	if err := paramEncoder.Encode(v.Interface(), values); err != nil {
		return nil, Errorf(CodeInvalidArgument, "failed to encode parameters: %v", err)
	}

	for _, f := range paramFields(v.Type()) {
		fv := v.Field(f.index)
		if fv.Kind() != reflect.Pointer || !fv.IsNil() {
			continue
		}
		// A nil optional is "absent", never a literal null on the wire.
		if f.hasDefault {
			values.Set(f.name, f.defaultVal)
		} else {
			values.Del(f.name)
		}
	}
	return values, nil
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, vs := range values {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
