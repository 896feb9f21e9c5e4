package table

import (
	"bytes"
	"reflect"

	"github.com/Fantom-foundation/vertexdag/kvdb"
)

// MigrateTables sets target fields to database tables.
// Fields are tagged with the table prefix, e.g. `table:"v"`.
// Panics if one prefix is a prefix of another one.
func MigrateTables(s interface{}, db kvdb.Store) {
	value := reflect.ValueOf(s).Elem()

	var keys uniqKeys

	for i := 0; i < value.NumField(); i++ {
		if prefix := value.Type().Field(i).Tag.Get("table"); prefix != "" && prefix != "-" {

			field := value.Field(i)
			var val reflect.Value
			if db != nil {
				keys.Add(prefix)
				table := New(db, []byte(prefix))
				val = reflect.ValueOf(table)
			} else {
				val = reflect.Zero(field.Type())
			}
			field.Set(val)
		}
	}

	if dup := keys.Check(); dup != "" {
		panic("table prefix " + dup + " overlaps another one")
	}
}

type uniqKeys struct {
	keys [][]byte
}

func (u *uniqKeys) Add(s string) {
	u.keys = append(u.keys, []byte(s))
}

// Check returns the first prefix which overlaps another one, if any.
func (u *uniqKeys) Check() string {
	for i := 0; i < len(u.keys); i++ {
		for j := 0; j < len(u.keys); j++ {
			if i != j && bytes.HasPrefix(u.keys[j], u.keys[i]) {
				return string(u.keys[i])
			}
		}
	}
	return ""
}
