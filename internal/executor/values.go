package executor

import (
	"fmt"
	"math"

	language "github.com/Monica18narayan/GraphQL/internal/language"
	schema "github.com/Monica18narayan/GraphQL/internal/schema"
)

// coerceVariables returns the provided or defaulted variables of op. A
// variable that is neither provided nor defaulted has no key.
func coerceVariables(op *language.OperationDefinition, provided map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(op.VariableDefinitions))
	for _, def := range op.VariableDefinitions {
		typ := schema.RefOf(def.Type)
		v, ok := provided[def.Variable]
		if !ok && def.DefaultValue != nil {
			d, err := def.DefaultValue.Value(nil)
			if err != nil {
				return nil, requestErrorf("variable $%s has an invalid default: %v", def.Variable, err)
			}
			v, ok = d, true
		}
		if !ok {
			if typ.NonNull {
				return nil, requestErrorf("variable $%s of required type %s was not provided", def.Variable, typ)
			}
			continue
		}
		cv, err := coerceInput(v, typ)
		if err != nil {
			return nil, requestErrorf("variable $%s of type %s cannot be coerced: %v", def.Variable, typ, err)
		}
		out[def.Variable] = cv
	}
	return out, nil
}

// coerceArguments builds the args map of a field. Only present arguments get
// a key: given as a literal, through a provided variable, or by default.
func (x *execution) coerceArguments(def *schema.Field, given language.ArgumentList) (map[string]any, error) {
	args := make(map[string]any, len(def.Arguments))
	for _, in := range def.Arguments {
		v, ok, err := x.argumentValue(given.ForName(in.Name))
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", in.Name, err)
		}
		if !ok && in.DefaultValue != nil {
			v, ok = in.DefaultValue, true
		}
		if !ok {
			if in.Type.NonNull {
				return nil, fmt.Errorf("argument %q of type %s is required", in.Name, in.Type)
			}
			continue
		}
		cv, err := coerceInput(v, in.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %q cannot be coerced: %w", in.Name, err)
		}
		args[in.Name] = cv
	}
	return args, nil
}

func (x *execution) argumentValue(arg *language.Argument) (any, bool, error) {
	if arg == nil || arg.Value == nil {
		return nil, false, nil
	}
	if arg.Value.Kind == language.Variable {
		v, ok := x.vars[arg.Value.Raw]
		return v, ok, nil
	}
	v, err := arg.Value.Value(nil)
	return v, true, err
}

// coerceInput converts a literal, variable or default value to the Go value
// resolvers receive: int for Int, string for String, bool for Boolean.
func coerceInput(value any, typ *schema.TypeRef) (any, error) {
	if value == nil {
		if typ.NonNull {
			return nil, fmt.Errorf("null is not allowed for %s", typ)
		}
		return nil, nil
	}
	if typ.IsList() {
		return nil, fmt.Errorf("list input %s is not supported", typ)
	}
	switch typ.Name {
	case "Int":
		return coerceInt(value)
	case "String":
		if s, ok := value.(string); ok {
			return s, nil
		}
	case "Boolean":
		if b, ok := value.(bool); ok {
			return b, nil
		}
	default:
		return nil, fmt.Errorf("input type %s is not supported", typ.Name)
	}
	return nil, fmt.Errorf("cannot use %v (%T) as %s", value, value, typ.Name)
}

// coerceInt accepts whole numbers within 32 bits. JSON numbers arrive as
// float64.
func coerceInt(value any) (any, error) {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%v is not a whole number", v)
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("%v is out of 32-bit range", v)
		}
		n = int64(v)
	default:
		return nil, fmt.Errorf("cannot use %v (%T) as Int", value, value)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("%d is out of 32-bit range", n)
	}
	return int(n), nil
}
