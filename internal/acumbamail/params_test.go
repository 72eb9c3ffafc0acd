package acumbamail_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/acumbamail-sync/internal/acumbamail"
)

func TestEncodeParams_NestedListsUseBracketIndex(t *testing.T) {
	values := acumbamail.EncodeParams("tok", acumbamail.Params{
		"lists": map[int]string{0: "L1"},
	})

	assert.Equal(t, "L1", values.Get("lists[0]"))
	assert.Empty(t, values.Get("lists"), "nested params must not be sent under the bare key")
	assert.Equal(t, "auth_token=tok&lists%5B0%5D=L1", values.Encode())
}

func TestEncodeParams_Scalars(t *testing.T) {
	values := acumbamail.EncodeParams("tok", acumbamail.Params{
		"name":     "Spring",
		"page":     2,
		"active":   true,
		"ratio":    0.5,
		"campaign": acumbamail.RemoteID("77"),
		"skipped":  nil,
	})

	assert.Equal(t, "Spring", values.Get("name"))
	assert.Equal(t, "2", values.Get("page"))
	assert.Equal(t, "true", values.Get("active"))
	assert.Equal(t, "0.5", values.Get("ratio"))
	assert.Equal(t, "77", values.Get("campaign"))
	_, present := values["skipped"]
	assert.False(t, present)
}

func TestEncodeParams_ObjectAndSliceShapes(t *testing.T) {
	values := acumbamail.EncodeParams("tok", acumbamail.Params{
		"merge_fields": map[string]string{"email": "a@b.dk", "first_name": "Ann"},
		"tags":         []string{"x", "y"},
		"lists":        map[string]any{"0": "L1", "1": 42},
	})

	assert.Equal(t, "a@b.dk", values.Get("merge_fields[email]"))
	assert.Equal(t, "Ann", values.Get("merge_fields[first_name]"))
	assert.Equal(t, "x", values.Get("tags[0]"))
	assert.Equal(t, "y", values.Get("tags[1]"))
	assert.Equal(t, "L1", values.Get("lists[0]"))
	assert.Equal(t, "42", values.Get("lists[1]"))
}

func TestEncodeParams_TokenCannotBeOverridden(t *testing.T) {
	values := acumbamail.EncodeParams("real", acumbamail.Params{"auth_token": "fake"})

	assert.Equal(t, []string{"real"}, values["auth_token"])
}
