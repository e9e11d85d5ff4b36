// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cbor

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
	"github.com/jinzhu/copier"
)

var (
	ErrEmptyInput           = errors.New("cbor: empty input")
	ErrIndefiniteLength     = errors.New("cbor: indefinite length not supported")
	ErrTruncatedHeader      = errors.New("cbor: truncated header")
	ErrDestinationNotStruct = errors.New("cbor: destination must be a pointer to a struct")
)

// decMode rejects input that Encode never produces: duplicate map keys and
// indefinite lengths
var decMode = func() _cbor.DecMode {
	mode, err := _cbor.DecOptions{
		DupMapKey:         _cbor.DupMapKeyEnforcedAPF,
		IndefLength:       _cbor.IndefLengthForbidden,
		ExtraReturnErrors: _cbor.ExtraDecErrorUnknownField,
		MaxNestedLevels:   32,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor: invalid decode options: %s", err))
	}
	return mode
}()

// Decode decodes the first CBOR item in data into dest and returns the
// number of bytes consumed. Trailing data is left for the caller.
func Decode(data []byte, dest any) (int, error) {
	dec := decMode.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(dest); err != nil {
		return dec.NumBytesRead(), err
	}
	return dec.NumBytesRead(), nil
}

// DecodeStrict decodes data into dest and fails if anything follows the
// first CBOR item
func DecodeStrict(data []byte, dest any) error {
	return decMode.Unmarshal(data, dest)
}

// ListLength returns the element count of a definite-length CBOR array by
// reading only its header
func ListLength(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, ErrEmptyInput
	}
	if data[0]&CborTypeMask != CborTypeArray {
		return 0, fmt.Errorf("cbor: expected array, found major type %d", data[0]>>5)
	}
	info := data[0] &^ CborTypeMask
	switch {
	case info <= CborMaxUintSimple:
		return int(info), nil
	case info <= 27:
		// Additional info 24 to 27 is followed by a 1, 2, 4 or 8 byte length
		size := 1 << (info - 24)
		if len(data) < 1+size {
			return 0, ErrTruncatedHeader
		}
		var length uint64
		for _, b := range data[1 : 1+size] {
			length = length<<8 | uint64(b)
		}
		if length > math.MaxInt32 {
			return 0, fmt.Errorf("cbor: array length %d too large", length)
		}
		return int(length), nil
	case info == 31:
		return 0, ErrIndefiniteLength
	default:
		return 0, fmt.Errorf("cbor: invalid additional info %d", info)
	}
}

// genericTypes caches the exported-field mirror of each destination type
var genericTypes sync.Map

// DecodeGeneric decodes data into dest, which must be a pointer to a struct,
// without calling the destination's own UnmarshalCBOR. Only exported fields
// are populated. Types call it from UnmarshalCBOR to add checks on top of the
// default decoding.
func DecodeGeneric(data []byte, dest any) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Pointer ||
		destValue.Elem().Kind() != reflect.Struct {
		return ErrDestinationNotStruct
	}
	destType := destValue.Elem().Type()
	mirror, ok := genericTypes.Load(destType)
	if !ok {
		fields := make([]reflect.StructField, 0, destType.NumField())
		for i := range destType.NumField() {
			if field := destType.Field(i); field.IsExported() {
				fields = append(fields, field)
			}
		}
		mirror, _ = genericTypes.LoadOrStore(destType, reflect.StructOf(fields))
	}
	tmp := reflect.New(mirror.(reflect.Type))
	if err := DecodeStrict(data, tmp.Interface()); err != nil {
		return err
	}
	return copier.Copy(dest, tmp.Interface())
}
