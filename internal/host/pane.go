package host

// PaneItem is anything that can be shown in a workspace pane. The set of
// variants is closed: TextEditorItem and OtherItem.
type PaneItem interface {
	paneItem()
}

// TextEditorItem is a pane item that edits a buffer.
type TextEditorItem struct {
	Editor Editor
}

// OtherItem is any pane item without a text buffer (settings views, images,
// terminals).
type OtherItem struct {
	Kind string
}

func (TextEditorItem) paneItem() {}
func (OtherItem) paneItem()      {}

// AsTextEditor returns the editor behind item if it is a text editor.
func AsTextEditor(item PaneItem) (Editor, bool) {
	switch it := item.(type) {
	case TextEditorItem:
		return it.Editor, it.Editor != nil
	case *TextEditorItem:
		if it == nil {
			return nil, false
		}
		return it.Editor, it.Editor != nil
	default:
		return nil, false
	}
}
