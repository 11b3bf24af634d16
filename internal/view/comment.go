package view

import (
	"encoding/json"
	"time"
)

// CommentView renders a pull request comment that was posted, or would
// have been posted.
type CommentView interface {
	Render(repo string, pr int, body string, posted bool)
}

type commentHumanView struct {
	*HumanView
}

func (v *commentHumanView) Render(repo string, pr int, body string, posted bool) {
	if body == "" {
		v.Printf("%s#%d: nothing to comment\n", repo, pr)
		return
	}

	if posted {
		v.Printf("%s %s#%d\n\n", validLabel("Commented on"), repo, pr)
	}

	v.Println(body)
}

type commentJSONView struct {
	*JSONView
}

type commentJSONResult struct {
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Repository  string    `json:"repository"`
	PullRequest int       `json:"pull_request"`
	Posted      bool      `json:"posted"`
	Comment     string    `json:"comment"`
}

func (v *commentJSONView) Render(repo string, pr int, body string, posted bool) {
	out := commentJSONResult{
		Type:        "comment",
		Timestamp:   time.Now(),
		Repository:  repo,
		PullRequest: pr,
		Posted:      posted,
		Comment:     body,
	}

	if data, err := json.Marshal(out); err == nil {
		v.Println(string(data))
	}
}

func NewCommentView(v Viewer) CommentView {
	switch vt := v.(type) {
	case *HumanView:
		return &commentHumanView{HumanView: vt}
	case *JSONView:
		return &commentJSONView{JSONView: vt}
	default:
		panic("unknown view type")
	}
}
