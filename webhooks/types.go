package webhooks

// WebhookEvent is the envelope Meta posts to the callback URL
type WebhookEvent struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one affected Instagram user in a webhook delivery
type Entry struct {
	ID      string   `json:"id"`
	Time    int64    `json:"time"`
	Changes []Change `json:"changes"`
}

// Change is one field notification within an entry
type Change struct {
	Field string      `json:"field"`
	Value interface{} `json:"value,omitempty"`
}
