package tweet

import "unicode/utf8"

// MaxTweetLength is the platform's per-post character limit.
const MaxTweetLength = 280

type Tweet struct {
	Content   string `json:"content"`
	CharCount int    `json:"char_count"`
}

func (t Tweet) Valid() bool {
	return t.Content != "" && t.CharCount <= MaxTweetLength
}

func (t Tweet) ToMap() map[string]any {
	return map[string]any{
		"content":    t.Content,
		"char_count": t.CharCount,
	}
}

// Thread is an ordered sequence of tweets meant to be published together.
type Thread struct {
	Items    []Tweet `json:"items"`
	IsThread bool    `json:"is_thread"`
}

// NewThread derives IsThread from the item count.
func NewThread(items []Tweet) Thread {
	return Thread{
		Items:    items,
		IsThread: len(items) > 1,
	}
}

func (th Thread) First() (Tweet, bool) {
	if len(th.Items) == 0 {
		return Tweet{}, false
	}
	return th.Items[0], true
}

// Valid reports whether the thread is publishable: at least one tweet,
// every tweet within the length limit.
func (th Thread) Valid() bool {
	if len(th.Items) == 0 {
		return false
	}
	for _, t := range th.Items {
		if !t.Valid() {
			return false
		}
	}
	return true
}

func (th Thread) ToMap() map[string]any {
	items := make([]map[string]any, 0, len(th.Items))
	for _, t := range th.Items {
		items = append(items, t.ToMap())
	}
	return map[string]any{
		"items":     items,
		"is_thread": th.IsThread,
	}
}

// ThreadFromMap rebuilds a thread from its ToMap representation. Unknown
// keys are ignored, numeric values may arrive as float64 from JSON.
func ThreadFromMap(data map[string]any) Thread {
	var rawItems []any
	switch v := data["items"].(type) {
	case []any:
		rawItems = v
	case []map[string]any:
		for _, m := range v {
			rawItems = append(rawItems, m)
		}
	}
	items := make([]Tweet, 0, len(rawItems))
	for _, raw := range rawItems {
		m, ok := mapValue(raw)
		if !ok {
			continue
		}
		content, _ := m["content"].(string)
		charCount, ok := intValue(m["char_count"])
		if !ok {
			charCount = utf8.RuneCountInString(content)
		}
		items = append(items, Tweet{Content: content, CharCount: charCount})
	}
	isThread, _ := data["is_thread"].(bool)
	return Thread{Items: items, IsThread: isThread}
}

func mapValue(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
