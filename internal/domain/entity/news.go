package entity

// NewsItem is one headline. Every field is optional; an absent value is the empty string.
// The struct is comparable, so two items are equal when all fields are equal.
type NewsItem struct {
	Source      string `json:"source,omitempty"`
	Author      string `json:"author,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

// DedupNews drops repeated items, keeping the first occurrence and the original order.
func DedupNews(items []NewsItem) []NewsItem {
	seen := make(map[NewsItem]struct{}, len(items))
	out := make([]NewsItem, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
