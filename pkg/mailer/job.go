package mailer

// Job is the JSON payload put on the RabbitMQ notification queue. Email
// fields and push fields are both optional; the worker sends whichever
// channels are addressed.
type Job struct {
	To        string `json:"to,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Text      string `json:"text,omitempty"`
	HTML      string `json:"html,omitempty"`
	PushToken string `json:"push_token,omitempty"`
	PushTitle string `json:"push_title,omitempty"`
	PushBody  string `json:"push_body,omitempty"`
}
