package dto

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// Source identifies one article used to ground an answer.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// AskResponse is the body of a successful POST /ask.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
