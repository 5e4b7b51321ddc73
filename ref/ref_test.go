package ref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefStartsNilAndIsWritable(t *testing.T) {
	r := New[string]()
	assert.Equal(t, "", r.Current)
	r.Set("hello")
	assert.Equal(t, "hello", r.Current)
	r.Clear()
	assert.Equal(t, "", r.Current)
}

func TestIsRefBrand(t *testing.T) {
	r := New[int]()
	assert.True(t, IsRef(r))
	assert.False(t, IsRef(42))
}

func TestSetterAdapterRoundTrip(t *testing.T) {
	r := New[int]()
	var s Setter = r
	s.SetAny(7)
	assert.Equal(t, 7, r.Current)
	s.ClearAny()
	assert.Equal(t, 0, r.Current)
}

func TestSetterAdapterIgnoresWrongType(t *testing.T) {
	r := New[int]()
	var s Setter = r
	s.SetAny("not an int")
	assert.Equal(t, 0, r.Current)
}
