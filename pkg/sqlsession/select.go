package sqlsession

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

var (
	errSelectDataNotPointer = errors.New("data is not a pointer")
	errSelectUnsupported    = errors.New("unsupported select destination type")
)

// Select runs query with params and binds the rows into data, a pointer to a slice or a struct.
// Struct fields are matched to columns by their `db` tag, or by their name in snake_case.
// Selecting into a struct with no matching row returns an error wrapping sql.ErrNoRows.
//
// Example:
//
//  1. Get multiple rows with only one column
//     ids := make([]int, 0)
//     err := s.Select(ctx, &ids, "select id from users")
//
//  2. Get a single object from database
//     type user struct {
//     Name  string
//     ID    int
//     Image string `db:"image_url"`
//     }
//     u := user{}
//     err := s.Select(ctx, &u, "select * from users where id=?", 1)
//
//  3. Get array of objects from multiple rows
//     users := []user{}
//     err := s.Select(ctx, &users, "select * from users")
func (s *Session) Select(ctx context.Context, data any, query string, params ...any) error {
	if err := ctx.Err(); err != nil {
		return newError(KindExecution, "select", err)
	}

	rvo := reflect.ValueOf(data)
	if !rvo.IsValid() || rvo.Kind() != reflect.Ptr || rvo.IsNil() {
		s.logger.Error("we did not get a pointer. data is not settable.")

		return &Error{Kind: KindBind, Op: "select", Err: errSelectDataNotPointer}
	}

	rv := rvo.Elem()

	//nolint:exhaustive // We only support slice and struct destinations.
	switch rv.Kind() {
	case reflect.Slice:
		return s.selectSlice(ctx, query, params, rvo, rv)
	case reflect.Struct:
		return s.selectStruct(ctx, query, params, rv)
	default:
		s.logger.Debugf("a pointer to %v was not expected.", rv.Kind().String())

		return &Error{Kind: KindBind, Op: "select", Err: fmt.Errorf("%w: %s", errSelectUnsupported, rv.Kind())}
	}
}

func (s *Session) selectSlice(ctx context.Context, query string, params []any, rvo, rv reflect.Value) error {
	res, err := s.Query(ctx, query, params...)
	if err != nil {
		s.logger.Errorf("error running query: %v", err)

		return err
	}

	defer res.Close()

	for res.Next() {
		val := reflect.New(rv.Type().Elem())

		if rv.Type().Elem().Kind() == reflect.Struct {
			if err := rowsToStruct(res, val); err != nil {
				return err
			}
		} else if err := res.Scan(val.Interface()); err != nil {
			return newError(KindExecution, "select", err)
		}

		rv = reflect.Append(rv, val.Elem())
	}

	if err := res.Err(); err != nil {
		s.logger.Errorf("error parsing rows : %v", err)

		return classify(KindExecution, "select", err)
	}

	if rvo.Elem().CanSet() {
		rvo.Elem().Set(rv)
	}

	return nil
}

func (s *Session) selectStruct(ctx context.Context, query string, params []any, rv reflect.Value) error {
	res, err := s.Query(ctx, query, params...)
	if err != nil {
		s.logger.Errorf("error running query: %v", err)

		return err
	}

	defer res.Close()

	rowFound := false

	for res.Next() {
		rowFound = true

		if err := rowsToStruct(res, rv); err != nil {
			return err
		}
	}

	if err := res.Err(); err != nil {
		s.logger.Errorf("error parsing rows : %v", err)

		return classify(KindExecution, "select", err)
	}

	if !rowFound {
		return &Error{Kind: KindExecution, Op: "select", Err: sql.ErrNoRows}
	}

	return nil
}

func rowsToStruct(res Result, vo reflect.Value) error {
	v := vo
	if vo.Kind() == reflect.Ptr {
		v = vo.Elem()
	}

	// Map fields and their indexes by normalized name
	fieldNameIndex := map[string]int{}

	for i := 0; i < v.Type().NumField(); i++ {
		var name string

		f := v.Type().Field(i)
		if !f.IsExported() {
			continue
		}

		tag := f.Tag.Get("db")

		if tag != "" {
			name = tag
		} else {
			name = ToSnakeCase(f.Name)
		}

		fieldNameIndex[name] = i
	}

	columns, err := res.Columns()
	if err != nil {
		return newError(KindDriver, "select", err)
	}

	fields := make([]any, 0, len(columns))

	for _, c := range columns {
		if i, ok := fieldNameIndex[c]; ok {
			fields = append(fields, v.Field(i).Addr().Interface())
		} else {
			var i any

			fields = append(fields, &i)
		}
	}

	if err := res.Scan(fields...); err != nil {
		return newError(KindExecution, "select", err)
	}

	return nil
}

var (
	matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
	matchAllCap   = regexp.MustCompile("([a-z0-9])([A-Z])")
)

// ToSnakeCase converts a Go field name such as UserID to the column name user_id.
func ToSnakeCase(str string) string {
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")

	return strings.ToLower(snake)
}
