package docjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestToWire_StorageDocument(t *testing.T) {
	in := `{"_id":"AB12","TypeId":"note","RoleId":null,"UserId":"alice"}`
	got, err := ToWire(in)
	require.NoError(t, err)
	require.Equal(t, `{"id":"AB12","typeId":"note","roleId":null,"userId":"alice"}`, got)
	require.False(t, gjson.Get(got, "_id").Exists())
}

func TestToWire_UnwrapsISODate(t *testing.T) {
	in := `{"TimeModified": ISODate("2019-05-01T10:00:00Z"), "Text": "x"}`
	got, err := ToWire(in)
	require.NoError(t, err)
	require.Equal(t, `{"timeModified":"2019-05-01T10:00:00Z","text":"x"}`, got)
}

func TestToWire_NestedKeysAndIDs(t *testing.T) {
	in := `{"Lines":[{"Y":1,"Text":"a"},{"_id":"x","Y":2}],"Meta":{"Inner":{"_id":"y"}}}`
	got, err := ToWire(in)
	require.NoError(t, err)
	require.Equal(t, `{"lines":[{"y":1,"text":"a"},{"id":"x","y":2}],"meta":{"inner":{"id":"y"}}}`, got)
}

func TestToWire_ValuesAreNotRewritten(t *testing.T) {
	in := `{"Text":"\"Foo\": ISO-like but not a key","Tags":["Bar","_id"]}`
	got, err := ToWire(in)
	require.NoError(t, err)
	assert.Equal(t, `"Foo": ISO-like but not a key`, gjson.Get(got, "text").String())
	assert.Equal(t, []interface{}{"Bar", "_id"}, gjson.Get(got, "tags").Value())
}

func TestToWire_Idempotent(t *testing.T) {
	in := `{"_id":"1","TypeId":"note","Fragments":[{"Location":"1.2"}]}`
	once, err := ToWire(in)
	require.NoError(t, err)
	twice, err := ToWire(once)
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestRoundTrip_CasingOnly(t *testing.T) {
	in := `{"TypeId":"note","Nested":{"InnerKey":[{"DeepKey":1.5,"Flag":true}]},"Empty":{},"List":[]}`
	wire, err := ToWire(in)
	require.NoError(t, err)
	back, err := ToStorage(wire)
	require.NoError(t, err)
	require.Equal(t, in, back)
}

func TestToStorage_LeavesUnderscoreKeys(t *testing.T) {
	got, err := ToStorage(`{"id":"1","_t":"NotePart","typeId":"note"}`)
	require.NoError(t, err)
	require.Equal(t, `{"Id":"1","_t":"NotePart","TypeId":"note"}`, got)
}

func TestRewriteKeys_Malformed(t *testing.T) {
	_, err := ToWire(`{"TypeId":`)
	require.ErrorIs(t, err, ErrMalformedDocument)
}

func TestPrependKey(t *testing.T) {
	got, err := PrependKey(`{"typeId":"note"}`, "id", "abc")
	require.NoError(t, err)
	require.Equal(t, `{"id":"abc","typeId":"note"}`, got)

	got, err = PrependKey(` { } `, "id", "abc")
	require.NoError(t, err)
	require.Equal(t, `{"id":"abc"}`, got)

	_, err = PrependKey(`[1,2]`, "id", "abc")
	require.ErrorIs(t, err, ErrMalformedDocument)
}
