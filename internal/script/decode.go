package script

import (
	"fmt"
	"math"

	"github.com/valter-silva-au/disco/pkg/models"
	lua "github.com/yuin/gopher-lua"
)

// Decode converts a Lua value into the semantic type carried by field.
//
// Accepted shapes:
//
//	Active                 boolean
//	State, Details         string or number
//	Timestamp              number (start) or {start=, _end=} (["end"] also works)
//	Button1, Button2       string (used as label and url) or {label, url=}
//	LargeImage, SmallImage string (asset) or {asset, text=}
func Decode(field models.FieldTag, v lua.LValue) (models.FieldValue, error) {
	switch field {
	case models.FieldActive:
		return decodeFlag(field, v)
	case models.FieldState, models.FieldDetails:
		return decodeText(field, v)
	case models.FieldTimestamp:
		return decodeTimeRange(field, v)
	case models.FieldFirstButton, models.FieldSecondButton:
		return decodeButton(field, v)
	case models.FieldLargeImage, models.FieldSmallImage:
		return decodeImage(field, v)
	}
	return nil, fmt.Errorf("unknown field %q", field)
}

func decodeFlag(field models.FieldTag, v lua.LValue) (models.FieldValue, error) {
	b, ok := v.(lua.LBool)
	if !ok {
		return nil, conversionError(field, "boolean", v)
	}
	return models.Flag(b), nil
}

func decodeText(field models.FieldTag, v lua.LValue) (models.FieldValue, error) {
	switch s := v.(type) {
	case lua.LString:
		return models.Text(s), nil
	case lua.LNumber:
		return models.Text(s.String()), nil
	}
	return nil, conversionError(field, "string", v)
}

func decodeTimeRange(field models.FieldTag, v lua.LValue) (models.FieldValue, error) {
	switch t := v.(type) {
	case lua.LNumber:
		start, ok := integral(t)
		if !ok {
			return nil, conversionError(field, "integer timestamp", v)
		}
		return models.TimeRange{Start: &start}, nil
	case *lua.LTable:
		start, err := optionalInt(field, t.RawGetString("start"))
		if err != nil {
			return nil, err
		}
		endValue := t.RawGetString("_end")
		if endValue == lua.LNil {
			endValue = t.RawGetString("end")
		}
		end, err := optionalInt(field, endValue)
		if err != nil {
			return nil, err
		}
		return models.TimeRange{Start: start, End: end}, nil
	}
	return nil, conversionError(field, "timestamp", v)
}

func decodeButton(field models.FieldTag, v lua.LValue) (models.FieldValue, error) {
	switch b := v.(type) {
	case lua.LString:
		return models.LinkButton{Label: string(b), URL: string(b)}, nil
	case *lua.LTable:
		label, ok := firstString(b, "label")
		if !ok {
			return nil, conversionError(field, "button label", b.RawGetInt(1))
		}
		url, ok := b.RawGetString("url").(lua.LString)
		if !ok {
			return nil, conversionError(field, "button url", b.RawGetString("url"))
		}
		return models.LinkButton{Label: label, URL: string(url)}, nil
	}
	return nil, conversionError(field, "button", v)
}

func decodeImage(field models.FieldTag, v lua.LValue) (models.FieldValue, error) {
	switch img := v.(type) {
	case lua.LString:
		return models.ImageRef{Asset: string(img)}, nil
	case *lua.LTable:
		asset, ok := firstString(img, "asset")
		if !ok {
			return nil, conversionError(field, "image asset", img.RawGetInt(1))
		}
		ref := models.ImageRef{Asset: asset}
		switch text := img.RawGetString("text").(type) {
		case lua.LString:
			caption := string(text)
			ref.Caption = &caption
		case *lua.LNilType:
		default:
			return nil, conversionError(field, "image text", text)
		}
		return ref, nil
	}
	return nil, conversionError(field, "image", v)
}

// firstString returns t[1] when it is a string, else t[key].
func firstString(t *lua.LTable, key string) (string, bool) {
	if s, ok := t.RawGetInt(1).(lua.LString); ok {
		return string(s), true
	}
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s), true
	}
	return "", false
}

func optionalInt(field models.FieldTag, v lua.LValue) (*int64, error) {
	if v == lua.LNil {
		return nil, nil
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		return nil, conversionError(field, "integer timestamp", v)
	}
	i, ok := integral(n)
	if !ok {
		return nil, conversionError(field, "integer timestamp", v)
	}
	return &i, nil
}

// integral returns n as an int64 when it has no fractional part.
func integral(n lua.LNumber) (int64, bool) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func conversionError(field models.FieldTag, expected string, v lua.LValue) error {
	return &models.FieldConversionError{
		Field:    field,
		Expected: expected,
		Got:      v.Type().String(),
	}
}
