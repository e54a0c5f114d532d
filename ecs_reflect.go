package physlines

import (
	"reflect"
)

// Columns are stored as `any` holding a []T so queries can type-assert them
// back to []T without reflection.

func reflectSliceMake(elem reflect.Type) any {
	return reflect.MakeSlice(reflect.SliceOf(elem), 0, 1).Interface()
}

func reflectSliceGet(slice any, idx int) reflect.Value {
	return reflect.ValueOf(slice).Index(idx)
}

func reflectSliceSet(slice any, idx int, val reflect.Value) {
	reflect.ValueOf(slice).Index(idx).Set(val)
}

func reflectSliceZero(slice any, idx int) {
	elem := reflect.ValueOf(slice).Index(idx)
	elem.Set(reflect.Zero(elem.Type()))
}

func reflectSliceAppend(slice any, val reflect.Value) any {
	return reflect.Append(reflect.ValueOf(slice), val).Interface()
}
