package llm

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config selects the endpoint, credentials and model for one request.
// APIBase is the server root; "/v1" is appended.
type Config struct {
	APIBase string
	APIKey  string
	Model   string
}

// Complete reports whether every field is set.
func (c Config) Complete() bool {
	return c.APIBase != "" && c.APIKey != "" && c.Model != ""
}
