package hipaa

// Record is a typed model that exposes its string fields by JSON key so the
// Boundary can protect it without reflection. Nil pointers are skipped.
type Record interface {
	PIIFields() map[string]*string
}

// Boundary applies a FieldEncryptor to the allow-listed keys of objects
// crossing the API boundary. Nested objects are left alone; only arrays of
// flat objects are walked element by element.
type Boundary struct {
	enc    FieldEncryptor
	fields map[string]bool
}

// NewBoundary creates a Boundary over fields, or DefaultPIIFields when none
// are given.
func NewBoundary(enc FieldEncryptor, fields ...string) *Boundary {
	set := PIIFieldSet()
	if len(fields) > 0 {
		set = make(map[string]bool, len(fields))
		for _, f := range fields {
			set[f] = true
		}
	}
	return &Boundary{enc: enc, fields: set}
}

// ProtectOnWrite returns a shallow copy of obj with allow-listed string
// values encrypted.
func (b *Boundary) ProtectOnWrite(obj map[string]interface{}) map[string]interface{} {
	return b.transform(obj, b.enc.EncryptField)
}

// RevealOnRead decrypts allow-listed string values of an object, or of every
// object in a slice. Other values are returned as-is.
func (b *Boundary) RevealOnRead(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return b.transform(t, b.enc.DecryptField)
	case []map[string]interface{}:
		out := make([]map[string]interface{}, len(t))
		for i, obj := range t {
			out[i] = b.transform(obj, b.enc.DecryptField)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			if obj, ok := item.(map[string]interface{}); ok {
				out[i] = b.transform(obj, b.enc.DecryptField)
			} else {
				out[i] = item
			}
		}
		return out
	default:
		return v
	}
}

// ProtectRecord encrypts r's allow-listed fields in place. Callers that must
// keep the plaintext pass a copy.
func (b *Boundary) ProtectRecord(r Record) {
	b.applyRecord(r, b.ProtectOnWrite)
}

// RevealRecord decrypts r's allow-listed fields in place.
func (b *Boundary) RevealRecord(r Record) {
	b.applyRecord(r, func(obj map[string]interface{}) map[string]interface{} {
		out, _ := b.RevealOnRead(obj).(map[string]interface{})
		return out
	})
}

// ProtectValue encrypts one value that is not addressed by a JSON key, such
// as a derived message quoting an allow-listed field.
func (b *Boundary) ProtectValue(s string) string {
	return b.enc.EncryptField(s)
}

// RevealValue reverses ProtectValue. Plaintext passes through.
func (b *Boundary) RevealValue(s string) string {
	return b.enc.DecryptField(s)
}

// RevealRecords decrypts every record of a slice in place.
func RevealRecords[T Record](b *Boundary, recs []T) {
	for _, r := range recs {
		b.RevealRecord(r)
	}
}

func (b *Boundary) transform(obj map[string]interface{}, fn func(string) string) map[string]interface{} {
	if obj == nil {
		return nil
	}
	out := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		s, ok := v.(string)
		if ok && b.fields[k] {
			out[k] = fn(s)
			continue
		}
		out[k] = v
	}
	return out
}

func (b *Boundary) applyRecord(r Record, fn func(map[string]interface{}) map[string]interface{}) {
	ptrs := r.PIIFields()
	obj := make(map[string]interface{}, len(ptrs))
	for k, p := range ptrs {
		if p != nil {
			obj[k] = *p
		}
	}
	out := fn(obj)
	for k, p := range ptrs {
		if p == nil {
			continue
		}
		if s, ok := out[k].(string); ok {
			*p = s
		}
	}
}
