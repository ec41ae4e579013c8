package models

// ChatSender distinguishes the two sides of the chat transcript.
const (
	ChatSenderUser      = "user"
	ChatSenderAssistant = "Mentors"
)

// ChatMessage is one entry in a chat widget transcript.
type ChatMessage struct {
	ID     string `json:"id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// ChatCategories are the topic categories a visitor must pick from before
// free-form chat is enabled.
var ChatCategories = []string{
	"Course & Mock Info",
	"Study Abroad Info",
}
