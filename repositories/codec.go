package repositories

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses Core Deterministic Encoding so the same record always
// produces the same bytes.
var encMode cbor.EncMode

// decMode decodes free-form metadata into map[string]any rather than the
// CBOR default map[interface{}]interface{}, which encoding/json cannot handle.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("repositories: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("repositories: CBOR decoder initialization failed: " + err.Error())
	}
}

func marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Decode turns a stored value into a generic map. Used by the inspection tool.
func Decode(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
