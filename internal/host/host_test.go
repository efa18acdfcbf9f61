package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubEditor struct{ Editor }

func TestAsTextEditor(t *testing.T) {
	ed := &stubEditor{}

	got, ok := AsTextEditor(TextEditorItem{Editor: ed})
	assert.True(t, ok)
	assert.Same(t, ed, got)

	got, ok = AsTextEditor(&TextEditorItem{Editor: ed})
	assert.True(t, ok)
	assert.Same(t, ed, got)

	_, ok = AsTextEditor(TextEditorItem{})
	assert.False(t, ok, "text editor item without editor")

	_, ok = AsTextEditor(OtherItem{Kind: "settings"})
	assert.False(t, ok)

	_, ok = AsTextEditor(nil)
	assert.False(t, ok)

	var nilItem *TextEditorItem
	_, ok = AsTextEditor(nilItem)
	assert.False(t, ok)
}

func TestDisposableFunc_RunsOnce(t *testing.T) {
	calls := 0
	d := DisposableFunc(func() { calls++ })
	d.Dispose()
	d.Dispose()
	assert.Equal(t, 1, calls)
}

func TestCompositeDisposable(t *testing.T) {
	var order []int
	var c CompositeDisposable
	c.Add(
		DisposableFunc(func() { order = append(order, 1) }),
		DisposableFunc(func() { order = append(order, 2) }),
		nil,
	)
	assert.Equal(t, 2, c.Len())

	c.Dispose()
	assert.Equal(t, []int{2, 1}, order)
	assert.True(t, c.Disposed())
	assert.Zero(t, c.Len())

	late := false
	c.Add(DisposableFunc(func() { late = true }))
	assert.True(t, late, "adding after dispose releases immediately")

	c.Dispose()
	assert.Equal(t, []int{2, 1}, order)
}
