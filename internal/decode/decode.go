package decode

import (
	"context"
	"fmt"
	"math/big"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

var (
	ctyValueType = reflect.TypeOf(cty.Value{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// field is one tagged struct field of an input struct.
type field struct {
	name     string
	optional bool
	index    int
}

// Decode populates the struct pointed to by target from the attributes of
// args. A null args value is treated as an empty object.
func Decode(ctx context.Context, args cty.Value, target any) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting argument decoding.", "target", fmt.Sprintf("%T", target))

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	if rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode target must point to a struct, got %T", target)
	}

	if err := decodeStruct(args, rv.Elem(), ""); err != nil {
		return err
	}
	logger.Debug("Finished argument decoding successfully.")
	return nil
}

// Fields returns the argument names declared by an input struct, in field
// order. It is used to describe runners.
func Fields(input any) []string {
	t := reflect.TypeOf(input)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	fields := structFields(t)
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.name)
	}
	return names
}

func structFields(t reflect.Type) []field {
	var fields []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("cty")
		if tag == "" || tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		fields = append(fields, field{
			name:     parts[0],
			optional: slices.Contains(parts[1:], "optional"),
			index:    i,
		})
	}
	return fields
}

func decodeStruct(val cty.Value, rv reflect.Value, path string) error {
	attrs, err := attributes(val, path)
	if err != nil {
		return err
	}

	fields := structFields(rv.Type())
	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f.name] = struct{}{}
		attrPath := join(path, f.name)

		attr, ok := attrs[f.name]
		if !ok || attr.IsNull() {
			if !f.optional {
				return fmt.Errorf("missing required argument %q", attrPath)
			}
			continue
		}
		if err := decodeValue(attr, rv.Field(f.index), attrPath); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		if _, ok := known[name]; !ok {
			names = append(names, name)
		}
	}
	if len(names) > 0 {
		slices.Sort(names)
		return fmt.Errorf("unsupported argument %q", join(path, names[0]))
	}
	return nil
}

// attributes flattens an object or map value into its attributes.
func attributes(val cty.Value, path string) (map[string]cty.Value, error) {
	if val.IsNull() {
		return map[string]cty.Value{}, nil
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("argument %q: expected an object, got %s", displayPath(path), ty.FriendlyName())
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("argument %q: value is not known", displayPath(path))
	}
	attrs := make(map[string]cty.Value, val.LengthInt())
	it := val.ElementIterator()
	for it.Next() {
		k, v := it.Element()
		attrs[k.AsString()] = v
	}
	return attrs, nil
}

func decodeValue(val cty.Value, rv reflect.Value, path string) error {
	if rv.Type() == ctyValueType {
		rv.Set(reflect.ValueOf(val))
		return nil
	}
	if !val.IsWhollyKnown() {
		return fmt.Errorf("argument %q: value is not known", path)
	}
	if val.IsNull() {
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}
	if rv.Type() == durationType {
		return decodeDuration(val, rv, path)
	}

	switch rv.Kind() {
	case reflect.Ptr:
		elem := reflect.New(rv.Type().Elem())
		if err := decodeValue(val, elem.Elem(), path); err != nil {
			return err
		}
		rv.Set(elem)
		return nil

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return fmt.Errorf("argument %q: unsupported interface type %s", path, rv.Type())
		}
		native, err := ToNative(val)
		if err != nil {
			return fmt.Errorf("argument %q: %w", path, err)
		}
		rv.Set(reflect.ValueOf(native))
		return nil

	case reflect.String:
		conv, err := convertTo(val, cty.String, path)
		if err != nil {
			return err
		}
		rv.SetString(conv.AsString())
		return nil

	case reflect.Bool:
		conv, err := convertTo(val, cty.Bool, path)
		if err != nil {
			return err
		}
		rv.SetBool(conv.True())
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bf, err := number(val, path)
		if err != nil {
			return err
		}
		i, acc := bf.Int64()
		if !bf.IsInt() || acc != big.Exact || rv.OverflowInt(i) {
			return fmt.Errorf("argument %q: %s is not a valid %s", path, bf.Text('f', -1), rv.Type())
		}
		rv.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		bf, err := number(val, path)
		if err != nil {
			return err
		}
		u, acc := bf.Uint64()
		if !bf.IsInt() || acc != big.Exact || rv.OverflowUint(u) {
			return fmt.Errorf("argument %q: %s is not a valid %s", path, bf.Text('f', -1), rv.Type())
		}
		rv.SetUint(u)
		return nil

	case reflect.Float32, reflect.Float64:
		bf, err := number(val, path)
		if err != nil {
			return err
		}
		f, _ := bf.Float64()
		if rv.OverflowFloat(f) {
			return fmt.Errorf("argument %q: %s overflows %s", path, bf.Text('g', -1), rv.Type())
		}
		rv.SetFloat(f)
		return nil

	case reflect.Slice:
		ty := val.Type()
		if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
			return fmt.Errorf("argument %q: expected a list, got %s", path, ty.FriendlyName())
		}
		out := reflect.MakeSlice(rv.Type(), 0, val.LengthInt())
		it := val.ElementIterator()
		for i := 0; it.Next(); i++ {
			_, el := it.Element()
			item := reflect.New(rv.Type().Elem()).Elem()
			if err := decodeValue(el, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
			out = reflect.Append(out, item)
		}
		rv.Set(out)
		return nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("argument %q: map keys must be strings, got %s", path, rv.Type().Key())
		}
		attrs, err := attributes(val, path)
		if err != nil {
			return err
		}
		out := reflect.MakeMapWithSize(rv.Type(), len(attrs))
		for k, el := range attrs {
			item := reflect.New(rv.Type().Elem()).Elem()
			if err := decodeValue(el, item, join(path, k)); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()), item)
		}
		rv.Set(out)
		return nil

	case reflect.Struct:
		return decodeStruct(val, rv, path)

	default:
		return fmt.Errorf("argument %q: unsupported target type %s", path, rv.Type())
	}
}

// decodeDuration accepts Go duration strings ("1.5s") or a number of
// seconds.
func decodeDuration(val cty.Value, rv reflect.Value, path string) error {
	if val.Type() == cty.Number {
		f, _ := val.AsBigFloat().Float64()
		rv.SetInt(int64(f * float64(time.Second)))
		return nil
	}
	conv, err := convertTo(val, cty.String, path)
	if err != nil {
		return err
	}
	d, err := time.ParseDuration(conv.AsString())
	if err != nil {
		return fmt.Errorf("argument %q: %w", path, err)
	}
	rv.SetInt(int64(d))
	return nil
}

func number(val cty.Value, path string) (*big.Float, error) {
	conv, err := convertTo(val, cty.Number, path)
	if err != nil {
		return nil, err
	}
	return conv.AsBigFloat(), nil
}

func convertTo(val cty.Value, ty cty.Type, path string) (cty.Value, error) {
	conv, err := convert.Convert(val, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("argument %q: cannot convert %s to %s: %w",
			path, val.Type().FriendlyName(), ty.FriendlyName(), err)
	}
	return conv, nil
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func displayPath(path string) string {
	if path == "" {
		return "arguments"
	}
	return path
}
