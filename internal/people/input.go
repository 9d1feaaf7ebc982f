package people

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/hr-directory/internal"
)

// fieldAliases maps alternate client keys to their canonical names. The
// canonical key wins when a body carries both.
var fieldAliases = map[string]string{
	"name":      "full_name",
	"startDate": "start_date",
	"location":  "timezone",
}

// requiredOnReplace lists the keys a full (PUT) update must carry.
var requiredOnReplace = []string{"full_name", "department", "start_date"}

// Field is a body key that may be absent, null, or set.
type Field[T any] struct {
	Present bool
	Value   *T
}

func (f Field[T]) apply(dst **T) {
	if f.Present {
		*dst = f.Value
	}
}

// PersonInput holds the writable keys found in a request body. Read-only and
// unknown keys are dropped during decoding.
type PersonInput struct {
	FullName       Field[string]
	AcdcEmail      Field[string]
	PersonalEmail  Field[string]
	Phone          Field[string]
	Department     Field[string]
	Subteam        Field[string]
	Position       Field[string]
	Status         Field[string]
	TimeCommitment Field[int]
	Timezone       Field[string]
	ReportsTo      Field[string]
	StartDate      Field[time.Time]
	EndDate        Field[time.Time]

	keys map[string]bool
}

// Has reports whether key was sent, after alias resolution.
func (in *PersonInput) Has(key string) bool {
	return in.keys[key]
}

// DecodePersonInput reads a JSON object body. Type errors are collected per
// field and returned together.
func DecodePersonInput(body io.Reader) (*PersonInput, *internal.AppError) {
	if body == nil {
		return nil, internal.NewValidationError("Request body is required", internal.ErrCodeInvalidRequestBody)
	}

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, internal.NewValidationError("Invalid request body", internal.ErrCodeInvalidRequestBody).WithCause(err)
	}
	if raw == nil {
		return nil, internal.NewValidationError("Request body must be a JSON object", internal.ErrCodeInvalidRequestBody)
	}

	for alias, canonical := range fieldAliases {
		if v, ok := raw[alias]; ok {
			if _, exists := raw[canonical]; !exists {
				raw[canonical] = v
			}
			delete(raw, alias)
		}
	}

	d := &decoder{raw: raw}
	in := &PersonInput{keys: make(map[string]bool, len(raw))}
	for k := range raw {
		in.keys[k] = true
	}

	in.FullName = d.requiredString("full_name")
	in.Department = d.requiredString("department")
	in.Status = d.requiredString("status")
	in.AcdcEmail = d.optionalString("acdc_email")
	in.PersonalEmail = d.optionalString("personal_email")
	in.Phone = d.optionalString("phone")
	in.Subteam = d.optionalString("subteam")
	in.Position = d.optionalString("position")
	in.Timezone = d.optionalString("timezone")
	in.ReportsTo = d.optionalString("reports_to")
	in.TimeCommitment = d.timeCommitment("time_commitment")
	in.StartDate = d.date("start_date", true)
	in.EndDate = d.date("end_date", false)

	if len(d.errs) > 0 {
		return nil, internal.NewValidationFieldErrors(d.errs)
	}
	return in, nil
}

// RequireKeys fails with a field error for each key that was not sent.
func (in *PersonInput) RequireKeys(keys ...string) *internal.AppError {
	var errs []internal.ValidationError
	for _, k := range keys {
		if !in.Has(k) {
			errs = append(errs, internal.ValidationError{Field: k, Message: "This field is required.", Code: string(internal.ErrCodeRequired)})
		}
	}
	if len(errs) > 0 {
		return internal.NewValidationFieldErrors(errs)
	}
	return nil
}

// ApplyTo copies every present key onto p. An explicit null on a required
// field leaves it empty so validation reports it.
func (in *PersonInput) ApplyTo(p *Person) {
	if in.FullName.Present {
		p.FullName = deref(in.FullName.Value)
	}
	if in.Department.Present {
		p.Department = deref(in.Department.Value)
	}
	if in.Status.Present {
		p.Status = deref(in.Status.Value)
	}
	if in.StartDate.Present {
		if in.StartDate.Value != nil {
			p.StartDate = *in.StartDate.Value
		} else {
			p.StartDate = time.Time{}
		}
	}
	in.AcdcEmail.apply(&p.AcdcEmail)
	in.PersonalEmail.apply(&p.PersonalEmail)
	in.Phone.apply(&p.Phone)
	in.Subteam.apply(&p.Subteam)
	in.Position.apply(&p.Position)
	in.Timezone.apply(&p.Timezone)
	in.ReportsTo.apply(&p.ReportsTo)
	in.TimeCommitment.apply(&p.TimeCommitment)
	in.EndDate.apply(&p.EndDate)
}

type decoder struct {
	raw  map[string]json.RawMessage
	errs []internal.ValidationError
}

func (d *decoder) fail(field, message string, code internal.ErrorCode) {
	d.errs = append(d.errs, internal.ValidationError{Field: field, Message: message, Code: string(code)})
}

func (d *decoder) lookup(key string) (json.RawMessage, bool, bool) {
	v, ok := d.raw[key]
	if !ok {
		return nil, false, false
	}
	isNull := bytes.Equal(bytes.TrimSpace(v), []byte("null"))
	return v, true, isNull
}

func (d *decoder) str(key string) (string, bool) {
	v := d.raw[key]
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		d.fail(key, "Not a valid string.", internal.ErrCodeValidationFailed)
		return "", false
	}
	return strings.TrimSpace(s), true
}

func (d *decoder) requiredString(key string) Field[string] {
	_, present, isNull := d.lookup(key)
	if !present {
		return Field[string]{}
	}
	if isNull {
		d.fail(key, "This field may not be null.", internal.ErrCodeRequired)
		return Field[string]{Present: true}
	}
	s, ok := d.str(key)
	if !ok {
		return Field[string]{}
	}
	return Field[string]{Present: true, Value: &s}
}

// optionalString treats null and blank strings alike: the field is cleared.
func (d *decoder) optionalString(key string) Field[string] {
	_, present, isNull := d.lookup(key)
	if !present {
		return Field[string]{}
	}
	if isNull {
		return Field[string]{Present: true}
	}
	s, ok := d.str(key)
	if !ok {
		return Field[string]{}
	}
	if s == "" {
		return Field[string]{Present: true}
	}
	return Field[string]{Present: true, Value: &s}
}

// timeCommitment accepts an integer, or a string that parses as one. Any
// other string becomes null; non-integral numbers are rejected.
func (d *decoder) timeCommitment(key string) Field[int] {
	v, present, isNull := d.lookup(key)
	if !present {
		return Field[int]{}
	}
	if isNull {
		return Field[int]{Present: true}
	}

	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return Field[int]{Present: true}
		}
		return Field[int]{Present: true, Value: &n}
	}

	var num json.Number
	if err := json.Unmarshal(v, &num); err != nil {
		d.fail(key, "A valid integer is required.", internal.ErrCodeInvalidInteger)
		return Field[int]{}
	}
	i64, err := num.Int64()
	if err != nil {
		d.fail(key, "A valid integer is required.", internal.ErrCodeInvalidInteger)
		return Field[int]{}
	}
	if i64 < -32768 || i64 > 32767 {
		d.fail(key, "Time commitment must be between 1 and 50 hours.", internal.ErrCodeOutOfRange)
		return Field[int]{}
	}
	n := int(i64)
	return Field[int]{Present: true, Value: &n}
}

func (d *decoder) date(key string, required bool) Field[time.Time] {
	_, present, isNull := d.lookup(key)
	if !present {
		return Field[time.Time]{}
	}
	if isNull {
		if required {
			d.fail(key, "This field may not be null.", internal.ErrCodeRequired)
		}
		return Field[time.Time]{Present: true}
	}
	s, ok := d.str(key)
	if !ok {
		return Field[time.Time]{}
	}
	if s == "" {
		if required {
			d.fail(key, "This field is required.", internal.ErrCodeRequired)
		}
		return Field[time.Time]{Present: true}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		d.fail(key, "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.", internal.ErrCodeInvalidDate)
		return Field[time.Time]{}
	}
	return Field[time.Time]{Present: true, Value: &t}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
