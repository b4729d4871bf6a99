package configuration

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cast"
	flag "github.com/spf13/pflag"

	"github.com/iotaledger/liveevent.go/ierrors"
)

// BoundParameter stores the pointer to a value that was bound using the BindParameters function.
type BoundParameter struct {
	boundPointer interface{}
}

// BindParameters is a utility function that allows to define and bind a set of parameters in a single step by using a
// struct as the registry and definition for the created configuration parameters. It parses the relevant information
// from the struct using reflection and optionally provided information in the tags of its fields.
//
// The parameter names are determined by the names of the fields in the struct but they can be overridden by providing a
// name tag.
// The default value is determined by the value of the field in the struct but it can be overridden by
// providing a default tag.
// The usage information are determined by the usage tag of the field.
//
// The method supports nested structs which get translated to parameter names in the following way:
// --namespace.level1.level2.parameterName
func (c *Configuration) BindParameters(flagSet *flag.FlagSet, namespace string, pointerToStruct interface{}) {
	val := reflect.ValueOf(pointerToStruct).Elem()
	for i := 0; i < val.NumField(); i++ {
		valueField := val.Field(i)
		typeField := val.Type().Field(i)

		if !typeField.IsExported() || typeField.Tag.Get("name") == "-" {
			continue
		}

		name := namespace + "."
		if tagName, exists := typeField.Tag.Lookup("name"); exists {
			name += tagName
		} else {
			name += lowerCamelCase(typeField.Name)
		}

		shortHand := typeField.Tag.Get("shorthand")
		usage := typeField.Tag.Get("usage")
		tagDefaultValue, hasDefault := typeField.Tag.Lookup("default")

		switch defaultValue := valueField.Interface().(type) {
		case bool:
			if hasDefault {
				defaultValue = mustCast(name, tagDefaultValue, cast.ToBoolE)
			}

			flagSet.BoolVarP(valueField.Addr().Interface().(*bool), name, shortHand, defaultValue, usage)
		case time.Duration:
			if hasDefault {
				defaultValue = mustCast(name, tagDefaultValue, cast.ToDurationE)
			}

			flagSet.DurationVarP(valueField.Addr().Interface().(*time.Duration), name, shortHand, defaultValue, usage)
		case float64:
			if hasDefault {
				defaultValue = mustCast(name, tagDefaultValue, cast.ToFloat64E)
			}

			flagSet.Float64VarP(valueField.Addr().Interface().(*float64), name, shortHand, defaultValue, usage)
		case int:
			if hasDefault {
				defaultValue = mustCast(name, tagDefaultValue, cast.ToIntE)
			}

			flagSet.IntVarP(valueField.Addr().Interface().(*int), name, shortHand, defaultValue, usage)
		case int64:
			if hasDefault {
				defaultValue = mustCast(name, tagDefaultValue, cast.ToInt64E)
			}

			flagSet.Int64VarP(valueField.Addr().Interface().(*int64), name, shortHand, defaultValue, usage)
		case uint:
			if hasDefault {
				defaultValue = mustCast(name, tagDefaultValue, cast.ToUintE)
			}

			flagSet.UintVarP(valueField.Addr().Interface().(*uint), name, shortHand, defaultValue, usage)
		case string:
			if hasDefault {
				defaultValue = tagDefaultValue
			}

			flagSet.StringVarP(valueField.Addr().Interface().(*string), name, shortHand, defaultValue, usage)
		case []string:
			if hasDefault {
				defaultValue = strings.Split(tagDefaultValue, ",")
			}

			flagSet.StringSliceVarP(valueField.Addr().Interface().(*[]string), name, shortHand, defaultValue, usage)
		default:
			if valueField.Kind() != reflect.Struct {
				panic(ierrors.Errorf("unsupported type %s of parameter %s", valueField.Type(), name))
			}

			c.BindParameters(flagSet, name, valueField.Addr().Interface())

			continue
		}

		c.boundParameters[name] = &BoundParameter{
			boundPointer: valueField.Addr().Interface(),
		}
	}
}

// UpdateBoundParameters updates parameters that were bound using the BindParameters method with the current values in
// the configuration.
func (c *Configuration) UpdateBoundParameters() {
	for parameterName, boundParameter := range c.boundParameters {
		if !c.Exists(parameterName) {
			continue
		}

		switch boundPointer := boundParameter.boundPointer.(type) {
		case *bool:
			*boundPointer = c.Bool(parameterName)
		case *time.Duration:
			*boundPointer = c.Duration(parameterName)
		case *float64:
			*boundPointer = c.Float64(parameterName)
		case *int:
			*boundPointer = c.Int(parameterName)
		case *int64:
			*boundPointer = c.Int64(parameterName)
		case *uint:
			*boundPointer = uint(c.Int64(parameterName))
		case *string:
			*boundPointer = c.String(parameterName)
		case *[]string:
			*boundPointer = c.Strings(parameterName)
		}
	}
}

func mustCast[T any](name string, value string, castFunc func(interface{}) (T, error)) T {
	result, err := castFunc(value)
	if err != nil {
		panic(ierrors.Wrapf(err, "invalid default value of parameter %s", name))
	}

	return result
}

func lowerCamelCase(str string) string {
	runes := []rune(str)
	runeCount := len(runes)

	if runeCount == 0 || unicode.IsLower(runes[0]) {
		return str
	}

	runes[0] = unicode.ToLower(runes[0])
	if runeCount == 1 || unicode.IsLower(runes[1]) {
		return string(runes)
	}

	for i := 1; i < runeCount; i++ {
		if i+1 < runeCount && unicode.IsLower(runes[i+1]) {
			break
		}

		runes[i] = unicode.ToLower(runes[i])
	}

	return string(runes)
}
