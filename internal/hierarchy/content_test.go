package hierarchy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentPreservesStructure(t *testing.T) {
	c, err := ParseContent([]byte(`{"question":"2+2?","answers":[3,4,5],"correct":1,"meta":{"shuffle":true,"hint":null}}`))
	require.NoError(t, err)

	assert.Equal(t, KindObject, c.Kind())
	assert.Equal(t, []string{"answers", "correct", "meta", "question"}, c.Keys())

	answers, ok := c.Field("answers")
	require.True(t, ok)
	assert.Equal(t, 3, answers.Len())
	second, ok := answers.Index(1)
	require.True(t, ok)
	n, ok := second.AsNumber()
	require.True(t, ok)
	assert.Equal(t, json.Number("4"), n)

	meta, _ := c.Field("meta")
	hint, ok := meta.Field("hint")
	require.True(t, ok)
	assert.True(t, hint.IsNull())
}

func TestContentMarshalIsCanonical(t *testing.T) {
	c, err := ParseContent([]byte(`{ "b": [1, "x"], "a": {"z": false} }`))
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"z":false},"b":[1,"x"]}`, string(data))
	assert.Equal(t, `{"a":{"z":false},"b":[1,"x"]}`, string(data))
}

func TestContentEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Content
		equal bool
	}{
		{"null", Null(), Content{}, true},
		{"numbers by value", Int(1), Number("1.0"), true},
		{"different numbers", Int(1), Int(2), false},
		{"exponent form", Number("1e3"), Int(1000), true},
		{"large integers", Number("9007199254740993"), Number("9007199254740992"), false},
		{"kind mismatch", String("1"), Int(1), false},
		{"arrays", Array(Int(1), String("a")), Array(Int(1), String("a")), true},
		{"array order", Array(Int(1), Int(2)), Array(Int(2), Int(1)), false},
		{"objects", Object(map[string]Content{"a": Bool(true)}), Object(map[string]Content{"a": Bool(true)}), true},
		{"object missing key", Object(map[string]Content{"a": Null()}), Object(map[string]Content{"b": Null()}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestContentConstructorsCopyInputs(t *testing.T) {
	fields := map[string]Content{"a": Int(1)}
	obj := Object(fields)
	fields["a"] = Int(2)
	fields["b"] = Int(3)

	v, _ := obj.Field("a")
	assert.True(t, v.Equal(Int(1)))
	assert.Equal(t, 1, obj.Len())

	items := []Content{String("x")}
	arr := Array(items...)
	items[0] = String("y")
	first, _ := arr.Index(0)
	s, _ := first.AsString()
	assert.Equal(t, "x", s)
}

func TestComponentContentNullRoundTrip(t *testing.T) {
	var comp Component
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","type":"text","display_name":"Intro","content":null,"order":0}`), &comp))
	assert.True(t, comp.Content.IsNull())

	data, err := json.Marshal(comp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","type":"text","display_name":"Intro","content":null,"order":0}`, string(data))
}

func TestFromValueRejectsUnsupportedTypes(t *testing.T) {
	_, err := FromValue(map[string]any{"when": struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `key "when"`)
}
