package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var knownKeys = []KeyItem{
	{Label: "Age", Name: "age", DataType: DataTypeInteger, Operators: []Operator{Equal, Greater, GreaterEqual, Less, LessEqual}},
	{Label: "Name", Name: "name", DataType: DataTypeString},
	{Label: "Active", Name: "active", DataType: DataTypeBoolean, Operators: []Operator{Equal, NotEqual}},
}

func TestParseText(t *testing.T) {
	cases := []struct {
		text     string
		key      string
		operator Operator
		value    any
	}{
		{text: "age:>=30", key: "age", operator: GreaterEqual, value: int64(30)},
		{text: "age:<5", key: "age", operator: Less, value: int64(5)},
		{text: "name:!=bob", key: "name", operator: NotEqual, value: "bob"},
		{text: "name:!bob", key: "name", operator: NotContain, value: "bob"},
		{text: "name:$^b.*", key: "name", operator: Regex, value: "^b.*"},
		{text: "name:bob", key: "name", operator: Contain, value: "bob"},
		{text: "active:=true", key: "active", operator: Equal, value: true},
		{text: "region:=us:east", key: "region", operator: Equal, value: "us:east"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.text, func(t *testing.T) {
			item, err := ParseText(tc.text, knownKeys...)
			require.NoError(t, err)
			require.NotNil(t, item.Key)
			assert.Equal(t, tc.key, item.Key.Name)
			assert.Equal(t, tc.operator, item.Operator)
			assert.Equal(t, tc.value, item.Value.Name)
			assert.Equal(t, tc.text, item.String())
		})
	}
}

func TestParseText_FreeText(t *testing.T) {
	item, err := ParseText("  web server ")
	require.NoError(t, err)
	assert.Nil(t, item.Key)
	assert.Equal(t, Contain, item.Operator)
	assert.Equal(t, "web server", item.Value.Name)
	assert.Equal(t, "web server", item.String())
}

func TestParseText_Errors(t *testing.T) {
	_, err := ParseText("age:!3", knownKeys...)
	require.ErrorIs(t, err, ErrOperatorNotAllowed)

	_, err = ParseText("age:>=old", knownKeys...)
	require.ErrorIs(t, err, ErrInvalidQuery)

	_, err = ParseText(":x")
	require.ErrorIs(t, err, ErrInvalidQuery)

	_, err = ParseText("   ")
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestParseText_DoesNotAliasKnownKeys(t *testing.T) {
	keys := []KeyItem{{Name: "age", Operators: []Operator{Equal}}}
	item, err := ParseText("age:=1", keys...)
	require.NoError(t, err)
	item.Key.Operators[0] = Regex
	assert.Equal(t, Equal, keys[0].Operators[0])
}

func TestQueryItemValidate(t *testing.T) {
	key := &KeyItem{Name: "age", Operators: []Operator{Equal}}
	require.NoError(t, QueryItem{Key: key, Operator: Equal}.Validate())
	require.NoError(t, QueryItem{Key: key}.Validate())
	require.ErrorIs(t, QueryItem{Key: key, Operator: Regex}.Validate(), ErrOperatorNotAllowed)
	require.NoError(t, QueryItem{Key: &KeyItem{Name: "any"}, Operator: Regex}.Validate())
	require.ErrorIs(t, QueryItem{Operator: Operator(42)}.Validate(), ErrUnknownOperator)
	require.ErrorIs(t, QueryItem{Key: &KeyItem{Name: "x", DataType: "geo"}}.Validate(), ErrInvalidQuery)
}
