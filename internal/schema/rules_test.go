package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
}

func rule(kind Kind, required, nullable bool) Rule {
	return newRule(&Field{Name: "f", Kind: kind, Required: required, Nullable: nullable}, fixedClock)
}

type ruleCase struct {
	name    string
	rule    Rule
	value   interface{}
	wantErr string
}

func runRuleCases(t *testing.T, tests []ruleCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate(tt.value)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, "f", ve.Field)
			require.Equal(t, tt.wantErr, ve.Message)
		})
	}
}

func TestCharRule(t *testing.T) {
	runRuleCases(t, []ruleCase{
		{name: "required missing", rule: rule(KindChar, true, true), value: nil, wantErr: "f is required"},
		{name: "optional missing", rule: rule(KindChar, false, false), value: nil},
		{name: "not a string", rule: rule(KindChar, true, true), value: json.Number("1"), wantErr: "f must be a string"},
		{name: "empty non nullable", rule: rule(KindChar, true, false), value: "", wantErr: "f must be a non empty string"},
		{name: "empty nullable", rule: rule(KindChar, true, true), value: ""},
		{name: "value", rule: rule(KindChar, true, false), value: "online_score"},
	})
}

func TestArgumentsRule(t *testing.T) {
	runRuleCases(t, []ruleCase{
		{name: "required missing", rule: rule(KindArguments, true, true), value: nil, wantErr: "f is required"},
		{name: "list", rule: rule(KindArguments, true, true), value: []interface{}{}, wantErr: "f must be a dictionary"},
		{name: "string", rule: rule(KindArguments, true, true), value: "{}", wantErr: "f must be a dictionary"},
		{name: "empty non nullable", rule: rule(KindArguments, true, false), value: map[string]interface{}{}, wantErr: "f must be a non empty dictionary"},
		{name: "empty nullable", rule: rule(KindArguments, true, true), value: map[string]interface{}{}},
		{name: "value", rule: rule(KindArguments, true, false), value: map[string]interface{}{"a": 1}},
	})
}

func TestEmailRule(t *testing.T) {
	runRuleCases(t, []ruleCase{
		{name: "optional missing", rule: rule(KindEmail, false, true), value: nil},
		{name: "not a string", rule: rule(KindEmail, false, true), value: json.Number("5"), wantErr: "f must be a string"},
		{name: "no at sign", rule: rule(KindEmail, false, true), value: "stupnikov.otus.ru", wantErr: "f must be a valid email"},
		{name: "empty nullable", rule: rule(KindEmail, false, true), value: "", wantErr: "f must be a valid email"},
		{name: "valid", rule: rule(KindEmail, false, true), value: "stupnikov@otus.ru"},
	})
}

func TestPhoneRule(t *testing.T) {
	runRuleCases(t, []ruleCase{
		{name: "required missing", rule: rule(KindPhone, true, true), value: nil, wantErr: "f is required"},
		{name: "optional missing", rule: rule(KindPhone, false, true), value: nil},
		{name: "string valid", rule: rule(KindPhone, false, true), value: "79175002040"},
		{name: "number valid", rule: rule(KindPhone, false, true), value: json.Number("79175002040")},
		{name: "int valid", rule: rule(KindPhone, false, true), value: 79175002040},
		{name: "lower bound", rule: rule(KindPhone, false, true), value: json.Number("70000000000")},
		{name: "upper bound", rule: rule(KindPhone, false, true), value: json.Number("79999999999")},
		{name: "number too short", rule: rule(KindPhone, false, true), value: json.Number("7917500204"), wantErr: "f must be a valid phone number"},
		{name: "number too long", rule: rule(KindPhone, false, true), value: json.Number("791750020401"), wantErr: "f must be a valid phone number"},
		{name: "number wrong prefix", rule: rule(KindPhone, false, true), value: json.Number("89175002040"), wantErr: "f must be a valid phone number"},
		{name: "string too short", rule: rule(KindPhone, false, true), value: "7917500204", wantErr: "f must be a valid phone number"},
		{name: "string too long", rule: rule(KindPhone, false, true), value: "791750020400", wantErr: "f must be a valid phone number"},
		{name: "string wrong prefix", rule: rule(KindPhone, false, true), value: "89175002040", wantErr: "f must be a valid phone number"},
		{name: "float", rule: rule(KindPhone, false, true), value: json.Number("79175002040.5"), wantErr: "f must be a string or an integer"},
		{name: "bool", rule: rule(KindPhone, false, true), value: true, wantErr: "f must be a string or an integer"},
		{name: "zero non nullable", rule: rule(KindPhone, false, false), value: json.Number("0"), wantErr: "f must be a non empty valid phone number"},
		{name: "zero nullable", rule: rule(KindPhone, false, true), value: json.Number("0"), wantErr: "f must be a valid phone number"},
		{name: "empty non nullable", rule: rule(KindPhone, false, false), value: "", wantErr: "f must be a non empty valid phone number"},
	})
}

func TestDateRule(t *testing.T) {
	runRuleCases(t, []ruleCase{
		{name: "required missing", rule: rule(KindDate, true, true), value: nil, wantErr: "f is required"},
		{name: "optional missing", rule: rule(KindDate, false, true), value: nil},
		{name: "valid", rule: rule(KindDate, false, true), value: "20.07.2017"},
		{name: "leap day", rule: rule(KindDate, false, true), value: "29.02.2000"},
		{name: "impossible day", rule: rule(KindDate, false, true), value: "30.02.2000", wantErr: "f must be a valid date"},
		{name: "month out of range", rule: rule(KindDate, false, true), value: "01.13.2000", wantErr: "f must be a valid date"},
		{name: "iso layout", rule: rule(KindDate, false, true), value: "2017-07-20", wantErr: "f must be a valid date"},
		{name: "trailing text", rule: rule(KindDate, false, true), value: "20.07.2017x", wantErr: "f must be a valid date"},
		{name: "not a string", rule: rule(KindDate, false, true), value: json.Number("20072017"), wantErr: "f must be a valid date"},
		{name: "zero date non nullable", rule: rule(KindDate, false, false), value: "01.01.0001", wantErr: "f must be a non empty date"},
	})
}

func TestBirthdayRule(t *testing.T) {
	// fixedClock is in 2026, so the oldest accepted birth year is 1957.
	runRuleCases(t, []ruleCase{
		{name: "optional missing", rule: rule(KindBirthday, false, true), value: nil},
		{name: "recent", rule: rule(KindBirthday, false, true), value: "01.01.2000"},
		{name: "boundary year accepted", rule: rule(KindBirthday, false, true), value: "01.01.1957"},
		{name: "boundary year rejected", rule: rule(KindBirthday, false, true), value: "31.12.1956", wantErr: "f must be less than 70 years old"},
		{name: "very old", rule: rule(KindBirthday, false, true), value: "01.01.1890", wantErr: "f must be less than 70 years old"},
		{name: "invalid date first", rule: rule(KindBirthday, false, true), value: "30.02.1890", wantErr: "f must be a valid date"},
	})
}

func TestGenderRule(t *testing.T) {
	runRuleCases(t, []ruleCase{
		{name: "required missing", rule: rule(KindGender, true, true), value: nil, wantErr: "f is required"},
		{name: "optional missing", rule: rule(KindGender, false, true), value: nil},
		{name: "unknown", rule: rule(KindGender, false, true), value: json.Number("0")},
		{name: "male", rule: rule(KindGender, false, true), value: json.Number("1")},
		{name: "female", rule: rule(KindGender, false, true), value: 2},
		{name: "out of range", rule: rule(KindGender, false, true), value: json.Number("3"), wantErr: "f must be 0, 1 or 2"},
		{name: "negative", rule: rule(KindGender, false, true), value: json.Number("-1"), wantErr: "f must be 0, 1 or 2"},
		{name: "string", rule: rule(KindGender, false, true), value: "1", wantErr: "f must be an integer"},
		{name: "float", rule: rule(KindGender, false, true), value: json.Number("1.5"), wantErr: "f must be an integer"},
	})
}

func TestClientIDsRule(t *testing.T) {
	runRuleCases(t, []ruleCase{
		{name: "required missing", rule: rule(KindClientIDs, true, false), value: nil, wantErr: "f is required"},
		{name: "valid", rule: rule(KindClientIDs, true, false), value: []interface{}{json.Number("1"), json.Number("2")}},
		{name: "go ints", rule: rule(KindClientIDs, true, false), value: []int{1, 2, 3}},
		{name: "empty non nullable", rule: rule(KindClientIDs, true, false), value: []interface{}{}, wantErr: "f must be a non empty list of integers"},
		{name: "empty nullable", rule: rule(KindClientIDs, true, true), value: []interface{}{}},
		{name: "mixed", rule: rule(KindClientIDs, true, false), value: []interface{}{json.Number("1"), "2"}, wantErr: "f must be a list of integers"},
		{name: "not a list", rule: rule(KindClientIDs, true, false), value: map[string]interface{}{"1": 2}, wantErr: "f must be a list of integers"},
	})
}

func TestAsInt(t *testing.T) {
	n, ok := AsInt(json.Number("42"))
	require.True(t, ok)
	require.Equal(t, int64(42), n)

	_, ok = AsInt(json.Number("4.2"))
	require.False(t, ok)

	_, ok = AsInt(float64(42))
	require.False(t, ok)

	_, ok = AsInt(true)
	require.False(t, ok)
}
