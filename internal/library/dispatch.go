package library

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/luispater/seleniumKeywordAPI/internal/utils"
)

var (
	contextType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	durationType = reflect.TypeOf(time.Duration(0))
)

type param struct {
	name       string
	def        string
	hasDefault bool
	varargs    bool
}

type keyword struct {
	Name   string
	Args   []string
	Doc    string
	method string
	params []param
}

// KeywordInfo describes a keyword for introspection.
type KeywordInfo struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
	Doc  string   `json:"doc"`
}

// KeywordNames returns the keyword names, sorted.
func (l *Library) KeywordNames() []string {
	names := make([]string, 0, len(l.keywords))
	for _, kw := range l.keywords {
		names = append(names, kw.Name)
	}
	sort.Strings(names)
	return names
}

// KeywordInfo returns the argument spec and documentation of a keyword.
func (l *Library) KeywordInfo(name string) (KeywordInfo, bool) {
	kw, ok := l.keywords[normalizeName(name)]
	if !ok {
		return KeywordInfo{}, false
	}
	return KeywordInfo{Name: kw.Name, Args: kw.Args, Doc: kw.Doc}, true
}

// Keywords returns every keyword, sorted by name.
func (l *Library) Keywords() []KeywordInfo {
	infos := make([]KeywordInfo, 0, len(l.keywords))
	for _, name := range l.KeywordNames() {
		info, _ := l.KeywordInfo(name)
		infos = append(infos, info)
	}
	return infos
}

// buildKeywordTable reflects over the exported methods of k. Every method
// must be described in keywordSpecs and take a context.Context first.
func buildKeywordTable(k *Keywords) (map[string]*keyword, error) {
	table := make(map[string]*keyword)
	t := reflect.TypeOf(k)
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		spec, ok := keywordSpecs[m.Name]
		if !ok {
			return nil, fmt.Errorf("keyword method %s has no spec", m.Name)
		}
		kw := &keyword{
			Name:   spec.name,
			Args:   spec.args,
			Doc:    spec.doc,
			method: m.Name,
		}
		if kw.Name == "" {
			kw.Name = splitCamelCase(m.Name)
		}
		for _, arg := range spec.args {
			kw.params = append(kw.params, parseParam(arg))
		}

		// receiver and context are not keyword arguments
		if m.Type.NumIn() < 2 || m.Type.In(1) != contextType {
			return nil, fmt.Errorf("keyword method %s must take a context.Context first", m.Name)
		}
		if m.Type.NumIn()-2 != len(kw.params) {
			return nil, fmt.Errorf("keyword method %s takes %d arguments but its spec lists %d", m.Name, m.Type.NumIn()-2, len(kw.params))
		}
		if m.Type.IsVariadic() != (len(kw.params) > 0 && kw.params[len(kw.params)-1].varargs) {
			return nil, fmt.Errorf("keyword method %s variadic mismatch", m.Name)
		}
		if m.Type.NumOut() == 0 || m.Type.Out(m.Type.NumOut()-1) != errorType || m.Type.NumOut() > 2 {
			return nil, fmt.Errorf("keyword method %s must return an error last", m.Name)
		}
		table[normalizeName(kw.Name)] = kw
	}
	return table, nil
}

func (kw *keyword) call(ctx context.Context, receiver *Keywords, input []string) (any, error) {
	methodValue := reflect.ValueOf(receiver).MethodByName(kw.method)
	methodType := methodValue.Type()

	values, varargs, err := kw.bind(input)
	if err != nil {
		return nil, err
	}

	args := make([]reflect.Value, 0, methodType.NumIn()+len(varargs))
	args = append(args, reflect.ValueOf(ctx))
	for i, value := range values {
		v, errConvert := convertToType(value, methodType.In(i+1))
		if errConvert != nil {
			return nil, fmt.Errorf("argument '%s' got value '%s': %v", kw.params[i].name, value, errConvert)
		}
		args = append(args, v)
	}
	if methodType.IsVariadic() {
		elemType := methodType.In(methodType.NumIn() - 1).Elem()
		for _, value := range varargs {
			v, errConvert := convertToType(value, elemType)
			if errConvert != nil {
				return nil, fmt.Errorf("argument '%s' got value '%s': %v", kw.params[len(kw.params)-1].name, value, errConvert)
			}
			args = append(args, v)
		}
	}

	results := methodValue.Call(args)
	if errValue := results[len(results)-1]; !errValue.IsNil() {
		return nil, errValue.Interface().(error)
	}
	if len(results) == 2 {
		return results[0].Interface(), nil
	}
	return nil, nil
}

// bind maps positional and name=value arguments onto the parameters and
// fills in defaults. Variadic values are returned separately.
func (kw *keyword) bind(input []string) ([]string, []string, error) {
	fixed := kw.params
	variadic := false
	if len(fixed) > 0 && fixed[len(fixed)-1].varargs {
		fixed = fixed[:len(fixed)-1]
		variadic = true
	}

	values := make([]string, len(fixed))
	set := make([]bool, len(fixed))
	varargs := make([]string, 0)
	position := 0
	named := false

	for _, arg := range input {
		if i := kw.namedIndex(arg, fixed); i >= 0 && !variadic {
			if set[i] {
				return nil, nil, fmt.Errorf("keyword '%s' got multiple values for argument '%s'", kw.Name, fixed[i].name)
			}
			values[i] = arg[len(fixed[i].name)+1:]
			set[i] = true
			named = true
			continue
		}
		if named {
			return nil, nil, fmt.Errorf("keyword '%s' got positional argument after named arguments", kw.Name)
		}
		if position < len(fixed) {
			values[position] = strings.ReplaceAll(arg, `\=`, "=")
			set[position] = true
			position++
			continue
		}
		if variadic {
			varargs = append(varargs, arg)
			continue
		}
		return nil, nil, kw.countError(len(input))
	}

	for i := range fixed {
		if set[i] {
			continue
		}
		if !fixed[i].hasDefault {
			return nil, nil, kw.countError(len(input))
		}
		values[i] = fixed[i].def
	}
	return values, varargs, nil
}

func (kw *keyword) namedIndex(arg string, params []param) int {
	eq := strings.Index(arg, "=")
	if eq <= 0 || arg[eq-1] == '\\' {
		return -1
	}
	for i, p := range params {
		if p.name == arg[:eq] {
			return i
		}
	}
	return -1
}

func (kw *keyword) countError(got int) error {
	required := 0
	variadic := false
	for _, p := range kw.params {
		switch {
		case p.varargs:
			variadic = true
		case !p.hasDefault:
			required++
		}
	}
	fixed := len(kw.params)
	if variadic {
		fixed--
	}
	var expected string
	switch {
	case variadic:
		expected = fmt.Sprintf("at least %d", required)
	case required == fixed:
		expected = strconv.Itoa(required)
	default:
		expected = fmt.Sprintf("%d to %d", required, fixed)
	}
	return fmt.Errorf("keyword '%s' expected %s arguments, got %d", kw.Name, expected, got)
}

// convertToType converts string input to the specified type
func convertToType(input string, targetType reflect.Type) (reflect.Value, error) {
	if targetType == durationType {
		d, err := utils.ParseTimeString(input)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	}

	switch targetType.Kind() {
	case reflect.String:
		if utils.IsNoneValue(input) {
			return reflect.ValueOf("").Convert(targetType), nil
		}
		return reflect.ValueOf(input).Convert(targetType), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert to integer: %v", err)
		}
		return reflect.ValueOf(val).Convert(targetType), nil

	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert to float: %v", err)
		}
		return reflect.ValueOf(val).Convert(targetType), nil

	case reflect.Bool:
		return reflect.ValueOf(utils.IsTruthy(input)), nil

	default:
		return reflect.Value{}, fmt.Errorf("unsupported parameter type: %s", targetType.String())
	}
}

func parseParam(spec string) param {
	if strings.HasPrefix(spec, "*") {
		return param{name: spec[1:], varargs: true}
	}
	if name, def, ok := strings.Cut(spec, "="); ok {
		return param{name: name, def: def, hasDefault: true}
	}
	return param{name: spec}
}

// normalizeName makes keyword lookup ignore case, spaces and underscores.
func normalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "")
	return strings.ReplaceAll(name, "_", "")
}

// splitCamelCase turns a method name such as GetBrowserIds into the keyword
// name "Get Browser Ids".
func splitCamelCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
