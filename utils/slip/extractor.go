package slip

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/Aashish23092/tax-slip-engine/dto"
)

// ExcerptLength bounds the raw text kept on unclassified documents.
const ExcerptLength = 500

// Extract fills the record for docType from raw text and returns it with
// the number of fields found. Every field is looked up on its own; a
// field whose pattern does not match is left nil.
func Extract(docType dto.DocumentType, text string) (dto.SlipData, int) {
	data := dto.NewSlipData(docType)
	if data == nil {
		docType = dto.DocTypeOther
		data = dto.NewSlipData(docType)
	}
	if other, ok := data.(*dto.OtherData); ok {
		other.Excerpt = Excerpt(text, ExcerptLength)
		return other, 0
	}

	cleaned := CleanText(text)
	v := reflect.ValueOf(data).Elem()
	t := v.Type()
	found := 0
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("slip")
		if name == "" {
			continue
		}
		spec, ok := LookupField(name)
		if !ok {
			continue
		}
		raw, ok := spec.Find(cleaned)
		if !ok {
			continue
		}
		if assign(v.Field(i), spec.Shape, raw) {
			found++
		}
	}
	return data, found
}

// assign converts raw into the pointer field f. It reports false, leaving
// f nil, when raw cannot be converted.
func assign(f reflect.Value, shape Shape, raw string) bool {
	if f.Kind() != reflect.Ptr || !f.CanSet() {
		return false
	}

	switch f.Type().Elem().Kind() {
	case reflect.Float64:
		amount, ok := ParseAmount(raw)
		if !ok {
			return false
		}
		f.Set(reflect.ValueOf(&amount))
	case reflect.Int:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return false
		}
		f.Set(reflect.ValueOf(&n))
	case reflect.String:
		s := raw
		if shape == ShapeText {
			s = strings.Join(strings.Fields(raw), " ")
		}
		f.Set(reflect.ValueOf(&s))
	default:
		return false
	}
	return true
}

// CountFields returns how many fields of a record are populated. It is
// used to rescore documents after a staff correction.
func CountFields(data dto.SlipData) int {
	if data == nil {
		return 0
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return 0
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return 0
	}

	n := 0
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("slip") == "" {
			continue
		}
		if f := v.Field(i); f.Kind() == reflect.Ptr && !f.IsNil() {
			n++
		}
	}
	return n
}
