package descriptor

import (
	"fmt"

	"github.com/pkg/errors"
	"go.starlark.net/starlark"
)

// param describes one argument of a builtin. Arguments may be passed
// positionally (in declaration order) or by keyword.
type param struct {
	name     string
	required bool
	parse    func(starlark.Value) error
}

// TypeErr is returned when an argument has the wrong Starlark type.
type TypeErr struct {
	Wanted string
	Got    string
}

func (err TypeErr) Error() string {
	return fmt.Sprintf("TypeError: expected %s, found %s", err.Wanted, err.Got)
}

func NewTypeErr(wanted string, v starlark.Value) TypeErr {
	return TypeErr{Wanted: wanted, Got: v.Type()}
}

type WrongPosArgCountErr struct {
	Fn           string
	TakesPosArgs int
	GivenPosArgs int
}

func (err WrongPosArgCountErr) Error() string {
	if err.TakesPosArgs == 0 {
		return fmt.Sprintf("%s() only takes keyword args", err.Fn)
	}
	return fmt.Sprintf(
		"%s() takes at most %d positional argument(s), but %d were given",
		err.Fn,
		err.TakesPosArgs,
		err.GivenPosArgs,
	)
}

type MissingRequiredArgumentErr struct {
	Fn  string
	Arg string
}

func (err MissingRequiredArgumentErr) Error() string {
	return fmt.Sprintf("%s() missing required argument '%s'", err.Fn, err.Arg)
}

type MultipleValuesForArgErr struct {
	Fn  string
	Arg string
}

func (err MultipleValuesForArgErr) Error() string {
	return fmt.Sprintf(
		"%s() got multiple values for argument '%s'",
		err.Fn,
		err.Arg,
	)
}

type UnexpectedKeywordArgErr struct {
	Fn  string
	Arg string
}

func (err UnexpectedKeywordArgErr) Error() string {
	return fmt.Sprintf(
		"%s() got an unexpected keyword argument '%s'",
		err.Fn,
		err.Arg,
	)
}

func parseArgs(
	fn string,
	args starlark.Tuple,
	kwargs []starlark.Tuple,
	params ...param,
) error {
	if len(args) > len(params) {
		return WrongPosArgCountErr{
			Fn:           fn,
			TakesPosArgs: len(params),
			GivenPosArgs: len(args),
		}
	}

	values := make([]starlark.Value, len(params))
	copy(values, args)

NEXT_KW:
	for _, kwarg := range kwargs {
		keyword := string(kwarg[0].(starlark.String))
		for i, p := range params {
			if p.name != keyword {
				continue
			}
			if values[i] != nil {
				return MultipleValuesForArgErr{Fn: fn, Arg: keyword}
			}
			values[i] = kwarg[1]
			continue NEXT_KW
		}
		return UnexpectedKeywordArgErr{Fn: fn, Arg: keyword}
	}

	for i, p := range params {
		if values[i] == nil {
			if p.required {
				return MissingRequiredArgumentErr{Fn: fn, Arg: p.name}
			}
			continue
		}
		if err := p.parse(values[i]); err != nil {
			return errors.Wrapf(err, "%s(): parsing argument '%s'", fn, p.name)
		}
	}
	return nil
}

func parseString(sptr *string) func(starlark.Value) error {
	return func(v starlark.Value) error {
		if s, ok := v.(starlark.String); ok {
			*sptr = string(s)
			return nil
		}
		return NewTypeErr("str", v)
	}
}

func parseStringList(lptr *[]string) func(starlark.Value) error {
	return func(v starlark.Value) error {
		l, ok := v.(*starlark.List)
		if !ok {
			return NewTypeErr("list", v)
		}
		out := make([]string, l.Len())
		for i := 0; i < l.Len(); i++ {
			s, ok := l.Index(i).(starlark.String)
			if !ok {
				return errors.Wrapf(NewTypeErr("str", l.Index(i)), "Index %d", i)
			}
			out[i] = string(s)
		}
		*lptr = out
		return nil
	}
}

// parseSources accepts either a list of file names or a glob().
func parseSources(sptr *Sources) func(starlark.Value) error {
	return func(v starlark.Value) error {
		if g, ok := v.(Glob); ok {
			*sptr = Sources{Glob: &g}
			return nil
		}
		var files []string
		if err := parseStringList(&files)(v); err != nil {
			return NewTypeErr("list or glob", v)
		}
		*sptr = Sources{Files: files}
		return nil
	}
}
